package room

import (
	"fmt"

	"blackjack-server/pkg/playable"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is a member connected to a room via websockets
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan interface{}

	// Close receives the reason when the server wants the connection closed
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	dealer  *Dealer
	pitBoss *PitBoss

	member *Member
	room   *Room
}

// NewClient returns a new client object
func NewClient(conn *websocket.Conn, pitBoss *PitBoss, room *Room, member *Member) *Client {
	return &Client{
		send:    make(chan interface{}, 256),
		Close:   make(chan string, 1),
		Conn:    conn,
		dealer:  room.Dealer(),
		pitBoss: pitBoss,
		member:  member,
		room:    room,
	}
}

// Send send a message to the web client
// false is returned if the send buffer is full
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// SendChan returns a read-only channel
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

// Disconnect asks the write loop to close the connection
func (c *Client) Disconnect(reason string) {
	select {
	case c.Close <- reason:
	default:
	}
}

// Member returns the member the client is connected as
func (c *Client) Member() *Member {
	return c.member
}

// String returns a traceable identifier for the member and room
func (c *Client) String() string {
	return fmt.Sprintf("%s:%s", c.member.ID, c.room.ID)
}

// ReceivedMessage is called when the server receives a message from a connected client
func (c *Client) ReceivedMessage(msg *playable.PayloadIn) {
	if c.dealer == nil {
		logrus.WithField("msg", msg).Warn("received message, but dealer not found")
		return
	}

	c.dealer.ReceivedMessage(c, msg)
}
