package mux

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"blackjack-server/internal/jwt"
	"blackjack-server/internal/util"
	"blackjack-server/pkg/blackjack"
	"blackjack-server/pkg/deck"
	"blackjack-server/pkg/history"
	"blackjack-server/pkg/room"
)

var validNicknameRx = regexp.MustCompile(`^[\p{L}\p{N} ]{0,40}\z`)
var statusOK = map[string]string{
	"status": "OK",
}

var errInvalidNickname = errors.New("nickname must only contain letters, numbers, and spaces, and be 40 characters or less")

type postRoomPayload struct {
	Nickname string `json:"nickname"`
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
	Token    string `json:"token"`
}

type joinRoomPayload struct {
	Nickname string `json:"nickname"`
	Passcode string `json:"passcode"`
}

type seatResponse struct {
	RoomID        string `json:"roomId"`
	ParticipantID string `json:"participantId"`
	Nickname      string `json:"nickname"`
	AccessToken   string `json:"accessToken"`
}

type getRoomIDResponse struct {
	*room.Summary
	Members []*room.Member      `json:"members"`
	Game    *blackjack.Response `json:"game"`
}

type hitResponse struct {
	Card *deck.Card `json:"card"`
}

func nickname(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !validNicknameRx.MatchString(name) {
		return "", errInvalidNickname
	}

	if name == "" {
		return util.GetRandomName(), nil
	}

	return name, nil
}

func (m *Mux) getRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, m.pitBoss.ListRooms())
	}
}

func (m *Mux) postRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postRoomPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if err := m.recaptcha.Verify(pp.Token); err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		name, err := nickname(pp.Nickname)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		if len(pp.Name) > 40 {
			writeJSONError(w, http.StatusBadRequest, errors.New("room name must be 40 characters or less"))
			return
		}

		if !m.cooldown.allow(remoteAddr(r)) {
			writeJSONError(w, http.StatusTooManyRequests, errors.New("please wait before creating another room"))
			return
		}

		rm, member, err := m.pitBoss.CreateRoom(pp.Name, name, pp.Passcode)
		if err != nil {
			writeRoomError(w, err)
			return
		}

		m.writeSeat(w, rm, member)
	}
}

func (m *Mux) postRoomIDJoin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp joinRoomPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		name, err := nickname(pp.Nickname)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		rm, member, err := m.pitBoss.JoinRoom(roomIDVar(r), name, pp.Passcode)
		if err != nil {
			writeRoomError(w, err)
			return
		}

		m.writeSeat(w, rm, member)
	}
}

func (m *Mux) writeSeat(w http.ResponseWriter, rm *room.Room, member *room.Member) {
	signed, err := jwt.Sign(rm.ID, member.ID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, seatResponse{
		RoomID:        rm.ID,
		ParticipantID: member.ID,
		Nickname:      member.Nickname,
		AccessToken:   signed,
	})
}

func (m *Mux) getRoomID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, member := roomFromContext(r)

		res, err := rm.Dealer().PlayerState(member.ID)
		if err != nil {
			writeRoomError(w, err)
			return
		}

		game, _ := res.Data.(*blackjack.Response)
		writeJSON(w, http.StatusOK, getRoomIDResponse{
			Summary: rm.Summary(),
			Members: rm.Members(),
			Game:    game,
		})
	}
}

func (m *Mux) postRoomIDStart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, member := roomFromContext(r)
		if err := rm.Dealer().StartGame(member.ID); err != nil {
			writeRoomError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, statusOK)
	}
}

func (m *Mux) postRoomIDHit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, member := roomFromContext(r)
		card, err := rm.Dealer().Hit(member.ID)
		if err != nil {
			writeRoomError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, hitResponse{Card: card})
	}
}

func (m *Mux) postRoomIDStand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, member := roomFromContext(r)
		if err := rm.Dealer().Stand(member.ID); err != nil {
			writeRoomError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, statusOK)
	}
}

// postRoomIDLeave gives up the seat. A bet placed in a round in progress is forfeited
func (m *Mux) postRoomIDLeave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, member := roomFromContext(r)
		if err := m.pitBoss.LeaveRoom(rm.ID, member.ID); err != nil {
			writeRoomError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, statusOK)
	}
}

func (m *Mux) getRoomIDHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := parseRowsOption(r, history.DefaultLimit)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		rm, _ := roomFromContext(r)
		rounds, err := rm.Dealer().Rounds(r.Context(), rows)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, rounds)
	}
}

// cooldown tracks the last room created by each remote address
type cooldown struct {
	delay time.Duration
	now   func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

func newCooldown(delay time.Duration) *cooldown {
	return &cooldown{
		delay: delay,
		now:   time.Now,
		last:  make(map[string]time.Time),
	}
}

// allow records the attempt and returns false if the address is still cooling down
func (c *cooldown) allow(addr string) bool {
	if c.delay <= 0 {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if at, found := c.last[addr]; found && now.Sub(at) < c.delay {
		return false
	}

	for a, at := range c.last {
		if now.Sub(at) >= c.delay {
			delete(c.last, a)
		}
	}

	c.last[addr] = now
	return true
}
