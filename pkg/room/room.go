package room

import (
	"sync"
	"time"

	"blackjack-server/pkg/blackjack"

	"github.com/google/uuid"
	"github.com/synacor/argon2id"
)

// Member is someone seated at a room
type Member struct {
	ID       string    `json:"id"`
	Nickname string    `json:"nickname"`
	Joined   time.Time `json:"joined"`
}

// Room is a blackjack table and the members seated at it
type Room struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`

	passcodeHash string
	maxSeats     int

	mu      sync.RWMutex
	members []*Member
	closed  bool

	dealer *Dealer
}

// Summary is the public listing of a room
type Summary struct {
	RoomID          string    `json:"roomId"`
	Name            string    `json:"name"`
	PlayersCount    int       `json:"playersCount"`
	SeatsLeft       int       `json:"seatsLeft"`
	HasPasscode     bool      `json:"hasPasscode"`
	RoundInProgress bool      `json:"roundInProgress"`
	Created         time.Time `json:"created"`
}

func newRoom(id, name, passcode string, maxSeats int) (*Room, error) {
	r := &Room{
		ID:       id,
		Name:     name,
		Created:  time.Now().UTC(),
		maxSeats: maxSeats,
		members:  make([]*Member, 0, maxSeats),
	}

	if passcode != "" {
		hash, err := argon2id.DefaultHashPassword(passcode)
		if err != nil {
			return nil, err
		}

		r.passcodeHash = hash
	}

	return r, nil
}

// Dealer returns the dealer running the room's table
func (r *Room) Dealer() *Dealer {
	return r.dealer
}

// HasPasscode returns true if joining requires a passcode
func (r *Room) HasPasscode() bool {
	return r.passcodeHash != ""
}

func (r *Room) checkPasscode(passcode string) error {
	if r.passcodeHash == "" {
		return nil
	}

	if err := argon2id.Compare(r.passcodeHash, passcode); err != nil {
		return ErrInvalidPasscode
	}

	return nil
}

func (r *Room) addMember(nickname string) (*Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRoomNotFound
	}

	if len(r.members) >= r.maxSeats {
		return nil, ErrRoomFull
	}

	m := &Member{
		ID:       uuid.New().String(),
		Nickname: nickname,
		Joined:   time.Now().UTC(),
	}

	r.members = append(r.members, m)
	return m, nil
}

// removeMember returns the number of members still seated
// The room is marked closed once the last member leaves
func (r *Room) removeMember(memberID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, m := range r.members {
		if m.ID == memberID {
			r.members = append(r.members[:i], r.members[i+1:]...)
			if len(r.members) == 0 {
				r.closed = true
			}

			return len(r.members), nil
		}
	}

	return len(r.members), ErrNotMember
}

// Members returns the members in seat order
func (r *Room) Members() []*Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]*Member, len(r.members))
	for i, m := range r.members {
		mCopy := *m
		members[i] = &mCopy
	}

	return members
}

// Member returns the member with the ID
func (r *Room) Member(memberID string) (*Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.members {
		if m.ID == memberID {
			mCopy := *m
			return &mCopy, true
		}
	}

	return nil, false
}

// IsMember returns true if the member is seated
func (r *Room) IsMember(memberID string) bool {
	_, found := r.Member(memberID)
	return found
}

// Seats returns the roster handed to the engine when a round is dealt
func (r *Room) Seats() []blackjack.Seat {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seats := make([]blackjack.Seat, len(r.members))
	for i, m := range r.members {
		seats[i] = blackjack.Seat{ID: m.ID, DisplayName: m.Nickname}
	}

	return seats
}

// Summary returns the public listing of the room
func (r *Room) Summary() *Summary {
	r.mu.RLock()
	count := len(r.members)
	r.mu.RUnlock()

	roundInProgress := false
	if r.dealer != nil {
		roundInProgress = r.dealer.RoundInProgress()
	}

	return &Summary{
		RoomID:          r.ID,
		Name:            r.Name,
		PlayersCount:    count,
		SeatsLeft:       r.maxSeats - count,
		HasPasscode:     r.HasPasscode(),
		RoundInProgress: roundInProgress,
		Created:         r.Created,
	}
}
