package room

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"blackjack-server/pkg/blackjack"
	"blackjack-server/pkg/deck"
	"blackjack-server/pkg/history"
	"blackjack-server/pkg/playable"

	"github.com/sirupsen/logrus"
)

type state int

const (
	stateClientEvent state = iota
	stateGameEvent
)

// recordTimeout bounds how long archiving a round may hold up the run loop
const recordTimeout = 5 * time.Second

// Dealer runs the table of a single room
// Every call into the engine happens on the dealer's run loop
type Dealer struct {
	room      *Room
	logger    logrus.FieldLogger
	engine    *blackjack.Engine
	recorder  history.Recorder
	scheduler *Scheduler

	clients map[*Client]bool
	lock    sync.RWMutex

	// only touched from the run loop
	logMessages   []*playable.LogMessage
	archivedRound int

	roundInProgress atomic.Bool

	execInRunLoop chan func()
	stateChanged  chan state
	close         chan bool
	closeOnce     sync.Once
	done          chan struct{}
}

// NewDealer creates a new dealer for the room
// This is called while the room registry is locked, so it needs to return quickly
func NewDealer(logger logrus.FieldLogger, room *Room, engine *blackjack.Engine, recorder history.Recorder, scheduler *Scheduler) *Dealer {
	return &Dealer{
		room:          room,
		logger:        logger.WithField("roomId", room.ID),
		engine:        engine,
		recorder:      recorder,
		scheduler:     scheduler,
		clients:       make(map[*Client]bool),
		logMessages:   make([]*playable.LogMessage, 0, logMessageLimit),
		execInRunLoop: make(chan func(), 256),
		stateChanged:  make(chan state, 256),
		close:         make(chan bool),
		done:          make(chan struct{}),
	}
}

// Clients will return a slice of connected (at the time) clients
func (d *Dealer) Clients() []*Client {
	d.lock.RLock()
	defer d.lock.RUnlock()

	clients := make([]*Client, 0, len(d.clients))
	for client := range d.clients {
		clients = append(clients, client)
	}

	return clients
}

// StartShift starts the run loop
func (d *Dealer) StartShift() {
	go d.runLoop()
}

// EndShift stops the run loop and cancels a pending restart
// It is safe to call more than once
func (d *Dealer) EndShift() {
	d.closeOnce.Do(func() {
		close(d.close)
	})
}

// Done is closed once the run loop has exited
func (d *Dealer) Done() <-chan struct{} {
	return d.done
}

func (d *Dealer) runLoop() {
	d.logger.Debug("creating dealer run loop")
	defer close(d.done)

	for {
		select {
		case s := <-d.stateChanged:
			switch s {
			case stateClientEvent:
				d.sendClientState()
			case stateGameEvent:
				d.sendGameData()
			}
		case fn := <-d.execInRunLoop:
			fn()
		case messages := <-d.engine.LogChan():
			d.addLogMessages(messages)
			d.broadcast(&playable.Response{
				Key:  "logs",
				Data: messages,
			})
		case <-d.close:
			d.scheduler.Cancel()
			d.logger.Debug("terminating dealer run loop")
			return
		}
	}
}

// queue runs fn on the run loop. It is dropped if the dealer already shut down
func (d *Dealer) queue(fn func()) {
	select {
	case d.execInRunLoop <- fn:
	case <-d.close:
	}
}

func (d *Dealer) notify(s state) {
	select {
	case d.stateChanged <- s:
	case <-d.close:
	}
}

// exec runs fn on the run loop and waits for its result
func (d *Dealer) exec(fn func() error) error {
	errCh := make(chan error, 1)
	select {
	case d.execInRunLoop <- func() { errCh <- fn() }:
	case <-d.close:
		return ErrRoomClosed
	}

	select {
	case err := <-errCh:
		return err
	case <-d.done:
		return ErrRoomClosed
	}
}

// AddClient adds a client
// This method must return quickly
func (d *Dealer) AddClient(client *Client) {
	d.lock.Lock()
	d.clients[client] = true
	d.lock.Unlock()

	d.notify(stateClientEvent)
	d.queue(func() {
		d.sendPlayerState(client, "")
		if len(d.logMessages) > 0 {
			client.Send(&playable.Response{
				Key:  "logs",
				Data: d.logMessages,
			})
		}
	})
}

// RemoveClient removes a client
// This method must return quickly
func (d *Dealer) RemoveClient(client *Client) {
	d.lock.Lock()
	delete(d.clients, client)
	d.lock.Unlock()

	d.notify(stateClientEvent)
}

// RoundInProgress returns true while a round is being played
func (d *Dealer) RoundInProgress() bool {
	return d.roundInProgress.Load()
}

// StartGame deals a round to everyone seated
func (d *Dealer) StartGame(memberID string) error {
	return d.exec(func() error {
		return d.startGame(memberID)
	})
}

// Hit draws a card for the member
func (d *Dealer) Hit(memberID string) (*deck.Card, error) {
	var card *deck.Card
	err := d.exec(func() error {
		res, err := d.action(memberID, &playable.PayloadIn{Action: "hit"})
		if err != nil {
			return err
		}

		card, _ = res.Data.(*deck.Card)
		return nil
	})

	return card, err
}

// Stand holds the member's hand
func (d *Dealer) Stand(memberID string) error {
	return d.exec(func() error {
		_, err := d.action(memberID, &playable.PayloadIn{Action: "stand"})
		return err
	})
}

// PlayerState returns the table as seen by the member
func (d *Dealer) PlayerState(memberID string) (*playable.Response, error) {
	var res *playable.Response
	err := d.exec(func() error {
		var err error
		res, err = d.engine.GetPlayerState(memberID)
		return err
	})

	return res, err
}

// Rounds returns the archived rounds of the room, newest first
func (d *Dealer) Rounds(ctx context.Context, limit int) ([]*history.Round, error) {
	return d.recorder.Rounds(ctx, d.room.ID, limit)
}

// RosterChanged is called after a member joins
// A round in progress is played out with its original roster
func (d *Dealer) RosterChanged() {
	d.notify(stateClientEvent)
}

// MemberLeft withdraws the member from a round in progress and announces the new roster
func (d *Dealer) MemberLeft(memberID string) {
	d.queue(func() {
		if d.engine.State() != blackjack.StateInProgress {
			return
		}

		if err := d.engine.Withdraw(memberID); err != nil {
			if !errors.Is(err, blackjack.ErrInvalidParticipant) {
				d.logger.WithError(err).WithField("memberId", memberID).Error("could not withdraw member")
			}

			return
		}

		d.gameChanged()
	})

	d.notify(stateClientEvent)
}

// ReceivedMessage is called when a client sends a message to the server
func (d *Dealer) ReceivedMessage(c *Client, msg *playable.PayloadIn) {
	switch msg.Action {
	case "startGame":
		d.queue(func() {
			if err := d.startGame(c.member.ID); err != nil {
				c.Send(newErrorResponse(msg.Context, err))
				return
			}

			c.Send(playable.OK(msg.Context))
		})
	case "requestGameState":
		d.queue(func() {
			d.sendPlayerState(c, msg.Context)
		})
	case "leave":
		if err := c.pitBoss.LeaveRoom(d.room.ID, c.member.ID); err != nil {
			c.Send(newErrorResponse(msg.Context, err))
			return
		}

		reason, ok := msg.AdditionalData.GetString("reason")
		if !ok || reason == "" {
			reason = "left room"
		}

		c.Send(playable.OK(msg.Context))
		c.Disconnect(reason)
	default:
		d.queue(func() {
			res, err := d.action(c.member.ID, msg)
			if err != nil {
				d.logger.WithError(err).WithField("client", c.String()).Debug("could not perform action")
				c.Send(newErrorResponse(msg.Context, err))
				return
			}

			if res != nil {
				res.Context = msg.Context
				c.Send(res)
			}
		})
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) startGame(memberID string) error {
	if !d.room.IsMember(memberID) {
		return ErrNotMember
	}

	if d.engine.State() == blackjack.StateInProgress {
		return blackjack.ErrRoundInProgress
	}

	return d.startRound()
}

// startRound deals to the current roster
// A roster that did not change since the last round is dealt with StartNextRound
// NOTE: must only be called from the run loop
func (d *Dealer) startRound() error {
	roster := d.room.Seats()
	if len(roster) == 0 {
		return blackjack.ErrNoParticipants
	}

	d.scheduler.Cancel()

	var err error
	if d.engine.Round() > 0 && sameRoster(roster, d.engine.Roster()) {
		err = d.engine.StartNextRound()
	} else {
		err = d.engine.StartRound(roster)
	}

	if err != nil {
		return err
	}

	d.gameChanged()
	return nil
}

// NOTE: must only be called from the run loop
func (d *Dealer) restart() {
	if d.engine.State() == blackjack.StateInProgress {
		// someone already started the next round
		return
	}

	if err := d.startRound(); err != nil {
		if errors.Is(err, blackjack.ErrNoParticipants) {
			d.logger.Debug("nobody is seated, skipping restart")
			return
		}

		d.logger.WithError(err).Error("could not restart round")
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) action(memberID string, msg *playable.PayloadIn) (*playable.Response, error) {
	res, updateState, err := d.engine.Action(memberID, msg)
	if err != nil {
		return nil, err
	}

	if updateState {
		d.gameChanged()
	}

	return res, nil
}

// gameChanged broadcasts the table and wraps up a finished round
// NOTE: must only be called from the run loop
func (d *Dealer) gameChanged() {
	d.roundInProgress.Store(d.engine.State() == blackjack.StateInProgress)
	d.sendGameData()

	result := d.engine.Result()
	if result == nil || result.Round == d.archivedRound {
		return
	}

	d.archivedRound = result.Round
	d.archive(result)
	d.scheduleRestart()
}

// NOTE: must only be called from the run loop
func (d *Dealer) archive(result *blackjack.RoundResult) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := d.recorder.RecordRound(ctx, history.NewRound(d.room.ID, result)); err != nil {
		d.logger.WithError(err).WithField("round", result.Round).Error("could not archive round")
	}
}

type roundScheduled struct {
	Round int       `json:"round"`
	Start time.Time `json:"start"`
}

// NOTE: must only be called from the run loop
func (d *Dealer) scheduleRestart() {
	delay := d.engine.RestartDelay()
	d.scheduler.Schedule(delay, func() {
		d.queue(d.restart)
	})

	start, _ := d.scheduler.When()
	d.logger.WithField("start", start).Debug("next round scheduled")
	d.broadcast(&playable.Response{
		Key:  "roundScheduled",
		Data: roundScheduled{Round: d.engine.Round() + 1, Start: start},
	})
}

// NOTE: must only be called from the run loop
func (d *Dealer) sendGameData() {
	for _, client := range d.Clients() {
		d.sendPlayerState(client, "")
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) sendPlayerState(client *Client, ctx string) {
	if d.engine.Round() == 0 {
		return
	}

	data, err := d.engine.GetPlayerState(client.member.ID)
	if err != nil {
		d.logger.WithError(err).Error("could not get player state")
		return
	}

	data.Context = ctx
	client.Send(data)
}

func (d *Dealer) sendClientState() {
	connected := make(map[string]bool)
	clients := d.Clients()
	for _, client := range clients {
		connected[client.member.ID] = true
	}

	members := d.room.Members()
	state := make([]*clientStateMember, len(members))
	for i, m := range members {
		state[i] = &clientStateMember{
			Member:      m,
			Seat:        i,
			IsConnected: connected[m.ID],
		}
	}

	res := &playable.Response{
		Key:  "clientState",
		Data: state,
	}

	for _, client := range clients {
		client.Send(res)
	}
}

func (d *Dealer) broadcast(res *playable.Response) {
	for _, client := range d.Clients() {
		if !client.Send(res) {
			d.logger.WithField("client", client.String()).Warn("client send buffer full, dropping message")
		}
	}
}

func sameRoster(a, b []blackjack.Seat) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
