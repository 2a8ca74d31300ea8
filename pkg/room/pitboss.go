package room

import (
	"errors"
	"sort"
	"sync"

	"blackjack-server/pkg/blackjack"
	"blackjack-server/pkg/history"
	"blackjack-server/pkg/token"

	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"
)

// roomIDLength is the length of a room ID
const roomIDLength = 8

// Options configure every room created by the pit boss
type Options struct {
	// MaxSeats is the number of members a room can seat. Default: 7
	MaxSeats int
	// Game configures each room's engine
	Game blackjack.Options
	// Recorder archives finished rounds. Default: in memory
	Recorder history.Recorder
	// Clock drives the restart timers. Default: the real clock
	Clock quartz.Clock
}

// DefaultOptions returns the default room options
func DefaultOptions() Options {
	return Options{
		MaxSeats: 7,
		Game:     blackjack.DefaultOptions(),
	}
}

// forgetter is implemented by recorders that can drop a room's rounds
type forgetter interface {
	Forget(roomID string)
}

// PitBoss is the registry of open rooms
// It is responsible for dispatching clients to the dealer of their room
type PitBoss struct {
	options Options
	logger  logrus.FieldLogger

	mu    sync.RWMutex
	rooms map[string]*Room

	connect    chan *Client
	disconnect chan *Client
	close      chan bool
	closeOnce  sync.Once
}

// NewPitBoss returns a new registry
func NewPitBoss(logger logrus.FieldLogger, opts Options) *PitBoss {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if opts.MaxSeats <= 0 {
		opts.MaxSeats = DefaultOptions().MaxSeats
	}

	if opts.Recorder == nil {
		opts.Recorder = history.NewMemoryRecorder(100)
	}

	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}

	return &PitBoss{
		options:    opts,
		logger:     logger,
		rooms:      make(map[string]*Room),
		connect:    make(chan *Client, 256),
		disconnect: make(chan *Client, 256),
		close:      make(chan bool),
	}
}

// StartShift starts the PitBoss run loop
func (p *PitBoss) StartShift() {
	go p.runLoop()
}

// EndShift closes every room and stops the run loop
func (p *PitBoss) EndShift() {
	p.closeOnce.Do(func() {
		close(p.close)

		p.mu.Lock()
		defer p.mu.Unlock()
		for id, r := range p.rooms {
			r.dealer.EndShift()
			delete(p.rooms, id)
		}
	})
}

func (p *PitBoss) runLoop() {
	for {
		select {
		case client := <-p.connect:
			p.logger.WithField("client", client.String()).Debug("client connected")
			client.room.dealer.AddClient(client)
		case client := <-p.disconnect:
			p.logger.WithField("client", client.String()).Debug("client disconnected")
			client.room.dealer.RemoveClient(client)
		case <-p.close:
			return
		}
	}
}

// ClientConnected is called when a client connects to the server
func (p *PitBoss) ClientConnected(client *Client) {
	p.connect <- client
}

// ClientDisconnected is called when a client disconnects from the server
func (p *PitBoss) ClientDisconnected(client *Client) {
	p.disconnect <- client
}

// CreateRoom opens a room and seats its creator
// An empty passcode creates a room anyone can join
func (p *PitBoss) CreateRoom(name, nickname, passcode string) (*Room, *Member, error) {
	id, err := p.newRoomID()
	if err != nil {
		return nil, nil, err
	}

	if name == "" {
		name = nickname + "'s table"
	}

	r, err := newRoom(id, name, passcode, p.options.MaxSeats)
	if err != nil {
		return nil, nil, err
	}

	member, err := r.addMember(nickname)
	if err != nil {
		return nil, nil, err
	}

	logger := p.logger.WithField("roomId", id)
	engine, err := blackjack.NewEngine(logger, p.options.Game)
	if err != nil {
		return nil, nil, err
	}

	r.dealer = NewDealer(p.logger, r, engine, p.options.Recorder, NewScheduler(p.options.Clock))
	r.dealer.StartShift()

	p.mu.Lock()
	p.rooms[id] = r
	p.mu.Unlock()

	logger.WithField("name", name).Info("room created")
	return r, member, nil
}

func (p *PitBoss) newRoomID() (string, error) {
	for i := 0; i < 5; i++ {
		id, err := token.Generate(roomIDLength)
		if err != nil {
			return "", err
		}

		p.mu.RLock()
		_, taken := p.rooms[id]
		p.mu.RUnlock()

		if !taken {
			return id, nil
		}
	}

	return "", errors.New("could not generate a unique room ID")
}

// JoinRoom seats a new member
func (p *PitBoss) JoinRoom(roomID, nickname, passcode string) (*Room, *Member, error) {
	r, err := p.GetRoom(roomID)
	if err != nil {
		return nil, nil, err
	}

	if err := r.checkPasscode(passcode); err != nil {
		return nil, nil, err
	}

	member, err := r.addMember(nickname)
	if err != nil {
		return nil, nil, err
	}

	r.dealer.RosterChanged()
	return r, member, nil
}

// LeaveRoom removes the member from the room
// A member leaving during a round forfeits their bet. The room is closed once nobody is left
// It must not be called from the dealer's run loop
func (p *PitBoss) LeaveRoom(roomID, memberID string) error {
	r, err := p.GetRoom(roomID)
	if err != nil {
		return err
	}

	remaining, err := r.removeMember(memberID)
	if err != nil {
		return err
	}

	if remaining > 0 {
		r.dealer.MemberLeft(memberID)
		return nil
	}

	p.mu.Lock()
	delete(p.rooms, roomID)
	p.mu.Unlock()

	r.dealer.EndShift()
	<-r.dealer.Done()

	// nobody can reach the history of a closed room
	if f, ok := p.options.Recorder.(forgetter); ok {
		f.Forget(roomID)
	}

	p.logger.WithField("roomId", roomID).Info("room closed")
	return nil
}

// GetRoom returns the open room with the ID
func (p *PitBoss) GetRoom(roomID string) (*Room, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	r, found := p.rooms[roomID]
	if !found {
		return nil, ErrRoomNotFound
	}

	return r, nil
}

// ListRooms returns every open room, oldest first
func (p *PitBoss) ListRooms() []*Summary {
	p.mu.RLock()
	rooms := make([]*Room, 0, len(p.rooms))
	for _, r := range p.rooms {
		rooms = append(rooms, r)
	}
	p.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Created.Equal(rooms[j].Created) {
			return rooms[i].ID < rooms[j].ID
		}

		return rooms[i].Created.Before(rooms[j].Created)
	})

	summaries := make([]*Summary, len(rooms))
	for i, r := range rooms {
		summaries[i] = r.Summary()
	}

	return summaries
}
