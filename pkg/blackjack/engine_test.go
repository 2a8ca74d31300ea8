package blackjack

import (
	"testing"

	"blackjack-server/internal/rng"
	"blackjack-server/pkg/deck"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	e, err := NewEngine(logrus.StandardLogger(), DefaultOptions())
	assert.NoError(t, err)
	assert.Equal(t, StateNotStarted, e.State())
	assert.Equal(t, "", e.CurrentTurn())
	assert.Equal(t, []string{}, e.Winners())
	assert.Nil(t, e.Result())
	assert.Empty(t, e.ProjectState())

	opts := DefaultOptions()
	opts.Stake = 0
	e, err = NewEngine(logrus.StandardLogger(), opts)
	assert.Nil(t, e)
	assert.EqualError(t, err, "stake must be > 0")

	opts = DefaultOptions()
	opts.StartingChips = -1
	_, err = NewEngine(logrus.StandardLogger(), opts)
	assert.EqualError(t, err, "starting chips cannot be negative")
}

func TestEngine_StartRound(t *testing.T) {
	a := assert.New(t)

	e := newTestEngine(t, "10c,9d,5c,8d", "a", "b")
	a.Equal(StateInProgress, e.State())
	a.Equal(1, e.Round())
	a.Equal(20, e.Pot())
	a.Equal("a", e.CurrentTurn())
	a.Equal([]Seat{{ID: "a", DisplayName: "Player a"}, {ID: "b", DisplayName: "Player b"}}, e.Roster())

	// card 1 goes around the table before card 2
	a.Equal("10c,5c", e.participants[0].hand.String())
	a.Equal("9d,8d", e.participants[1].hand.String())

	for _, p := range e.participants {
		a.Equal(90, p.balance)
		a.Equal(10, p.bet)
	}

	a.Equal(0, e.deck.CardsLeft())
}

func TestEngine_StartRound_errors(t *testing.T) {
	e, err := NewEngine(logrus.StandardLogger(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, ErrNoParticipants, e.StartRound(nil))
	assert.Equal(t, ErrDuplicateParticipant, e.StartRound(seats("a", "b", "a")))
	assert.Equal(t, ErrInvalidParticipant, e.StartRound([]Seat{{ID: ""}}))
	assert.Equal(t, 0, e.Round())
	assert.Equal(t, StateNotStarted, e.State())

	// not enough cards to deal everyone two
	stackDeck(e, "2c,3c,4c")
	assert.Equal(t, ErrDeckEmpty, e.StartRound(seats("a", "b")))
	assert.Equal(t, 0, e.Round())
	assert.Empty(t, e.Roster())

	stackDeck(e, "2c,3c,4c,5c")
	assert.NoError(t, e.StartRound(seats("a", "b")))
	assert.Equal(t, ErrRoundInProgress, e.StartRound(seats("a", "b")))
	assert.Equal(t, ErrRoundInProgress, e.StartNextRound())
}

func TestEngine_bustAndStand(t *testing.T) {
	a := assert.New(t)

	// a: 10,5 = 15, b: 10,8 = 18, a hits 10 and busts
	e := newTestEngine(t, "10c,10d,5c,8d,10h", "a", "b")

	card, err := e.RequestHit("a")
	a.NoError(err)
	a.Equal("10h", deck.CardToString(card))
	a.True(e.participants[0].IsBusted())
	a.Equal(25, e.participants[0].Score())
	a.Equal("b", e.CurrentTurn())

	a.NoError(e.RequestStand("b"))
	a.True(e.IsRoundOver())
	a.Equal([]string{"b"}, e.Winners())

	balance, _ := e.Balance("a")
	a.Equal(90, balance)
	balance, _ = e.Balance("b")
	a.Equal(110, balance)

	result := e.Result()
	a.Equal(20, result.Pot)
	a.Equal(20, result.Share)
	a.Equal(0, result.Forfeited)
	a.Equal(-10, result.Participants[0].Net())
	a.Equal(10, result.Participants[1].Net())
	a.True(result.Participants[0].Busted)
}

func TestEngine_allIn(t *testing.T) {
	a := assert.New(t)

	e, err := NewEngine(logrus.StandardLogger(), DefaultOptions())
	require.NoError(t, err)
	e.idToParticipant["a"] = NewParticipant("a", "A", 5)

	// a: 13,7 = 20, b: 10,8 = 18
	stackDeck(e, "13c,10d,7c,8d")
	require.NoError(t, e.StartRound(seats("a", "b")))

	a.Equal(5, e.participants[0].bet)
	a.Equal(0, e.participants[0].balance)
	a.Equal(10, e.participants[1].bet)
	a.Equal(15, e.Pot())

	a.NoError(e.RequestStand("a"))
	a.NoError(e.RequestStand("b"))

	balance, _ := e.Balance("a")
	a.Equal(15, balance)
	balance, _ = e.Balance("b")
	a.Equal(90, balance)
}

func TestEngine_brokeParticipantStillPlays(t *testing.T) {
	a := assert.New(t)

	e, err := NewEngine(logrus.StandardLogger(), DefaultOptions())
	require.NoError(t, err)
	e.idToParticipant["a"] = NewParticipant("a", "A", 0)

	stackDeck(e, "13c,10d,7c,8d")
	require.NoError(t, e.StartRound(seats("a", "b")))
	a.Equal(0, e.participants[0].bet)
	a.Equal("a", e.CurrentTurn())

	a.NoError(e.RequestStand("a"))
	a.NoError(e.RequestStand("b"))

	// a wins a pot it put nothing into
	balance, _ := e.Balance("a")
	a.Equal(10, balance)
}

func TestEngine_tie(t *testing.T) {
	a := assert.New(t)

	// a: 13,12 = 20, b: 10,11 = 20
	e := newTestEngine(t, "13c,10d,12c,11d", "a", "b")
	a.NoError(e.RequestStand("a"))
	a.NoError(e.RequestStand("b"))

	a.Equal([]string{"a", "b"}, e.Winners())
	a.Equal(10, e.Result().Share)

	balance, _ := e.Balance("a")
	a.Equal(100, balance)
	balance, _ = e.Balance("b")
	a.Equal(100, balance)
}

func TestEngine_tieRemainderIsForfeited(t *testing.T) {
	a := assert.New(t)

	e, err := NewEngine(logrus.StandardLogger(), DefaultOptions())
	require.NoError(t, err)
	e.idToParticipant["a"] = NewParticipant("a", "A", 5)

	// a: 20, b: 20, c: 10,2 = 12 then busts
	stackDeck(e, "13c,10d,10h,12c,11d,2h,13h")
	require.NoError(t, e.StartRound(seats("a", "b", "c")))
	a.Equal(25, e.Pot())

	a.NoError(e.RequestStand("a"))
	a.NoError(e.RequestStand("b"))
	_, err = e.RequestHit("c")
	a.NoError(err)
	a.True(e.IsRoundOver())

	result := e.Result()
	a.Equal([]string{"a", "b"}, result.Winners)
	a.Equal(12, result.Share)
	a.Equal(1, result.Forfeited)

	balance, _ := e.Balance("a")
	a.Equal(12, balance)
	balance, _ = e.Balance("b")
	a.Equal(102, balance)
	balance, _ = e.Balance("c")
	a.Equal(90, balance)
	a.Equal(205-1, totalChips(e))
}

func TestEngine_everyoneBusts(t *testing.T) {
	a := assert.New(t)

	e := newTestEngine(t, "10c,10d,5c,6d,10h,10s", "a", "b")
	_, err := e.RequestHit("a")
	a.NoError(err)
	_, err = e.RequestHit("b")
	a.NoError(err)

	a.True(e.IsRoundOver())
	a.Equal([]string{}, e.Winners())
	a.Equal(20, e.Result().Forfeited)
	a.Equal(180, totalChips(e))
}

func TestEngine_outOfTurn(t *testing.T) {
	a := assert.New(t)

	e := newTestEngine(t, "10c,10d,5c,8d,10h", "a", "b")
	before := e.ProjectState()
	cardsLeft := e.deck.CardsLeft()

	_, err := e.RequestHit("b")
	a.Equal(ErrNotYourTurn, err)
	a.Equal(ErrNotYourTurn, e.RequestStand("b"))
	_, err = e.RequestHit("nobody")
	a.Equal(ErrNotYourTurn, err)

	a.Equal(before, e.ProjectState())
	a.Equal(cardsLeft, e.deck.CardsLeft())
	a.Equal("a", e.CurrentTurn())
}

func TestEngine_actionsAfterRoundOver(t *testing.T) {
	e := newTestEngine(t, "10c,10d,5c,8d", "a", "b")
	assert.NoError(t, e.RequestStand("a"))
	assert.NoError(t, e.RequestStand("b"))

	_, err := e.RequestHit("a")
	assert.Equal(t, ErrRoundNotActive, err)
	assert.Equal(t, ErrRoundNotActive, e.RequestStand("b"))

	e, err = NewEngine(logrus.StandardLogger(), DefaultOptions())
	require.NoError(t, err)
	_, err = e.RequestHit("a")
	assert.Equal(t, ErrRoundNotActive, err)
}

func TestEngine_heldParticipantCannotAct(t *testing.T) {
	a := assert.New(t)

	e := newTestEngine(t, "10c,10d,10h,5c,8d,2h", "a", "b", "c")
	a.NoError(e.RequestStand("a"))
	a.Equal(ErrNotYourTurn, e.RequestStand("a"))
	_, err := e.RequestHit("a")
	a.Equal(ErrNotYourTurn, err)
	a.Equal("b", e.CurrentTurn())
}

func TestEngine_deckEmptyOnHit(t *testing.T) {
	a := assert.New(t)

	e := newTestEngine(t, "10c,10d,5c,8d", "a", "b")
	before := e.ProjectState()

	_, err := e.RequestHit("a")
	a.Equal(ErrDeckEmpty, err)
	a.Equal(before, e.ProjectState())
	a.Equal("a", e.CurrentTurn())
	a.Equal(StateInProgress, e.State())
}

func TestEngine_advanceTurnIsIdempotent(t *testing.T) {
	a := assert.New(t)

	e := newTestEngine(t, "10c,10d,5c,8d", "a", "b")
	a.NoError(e.RequestStand("a"))
	a.NoError(e.RequestStand("b"))

	result := e.Result()
	chips := totalChips(e)

	e.advanceTurn()
	e.advanceTurn()

	a.Same(result, e.Result())
	a.Equal(chips, totalChips(e))
	a.Equal(StateOver, e.State())
}

func TestEngine_turnStaysUntilBustOrStand(t *testing.T) {
	a := assert.New(t)

	e := newTestEngine(t, "2c,2d,2h,3c,3d,3h,4c,4d,4h", "a", "b", "c")
	a.NoError(e.RequestStand("a"))
	a.Equal("b", e.CurrentTurn())

	_, err := e.RequestHit("b")
	a.NoError(err)
	a.Equal("b", e.CurrentTurn())
	_, err = e.RequestHit("b")
	a.NoError(err)
	a.Equal(13, e.participants[1].Score())
	a.NoError(e.RequestStand("b"))
	a.Equal("c", e.CurrentTurn())

	_, err = e.RequestHit("c")
	a.NoError(err)
	a.False(e.IsRoundOver())
	a.NoError(e.RequestStand("c"))

	a.True(e.IsRoundOver())
	a.Equal("", e.CurrentTurn())
	a.Equal([]string{"b"}, e.Winners())
}

func TestEngine_StartNextRound(t *testing.T) {
	a := assert.New(t)

	e := newTestEngine(t, "10c,10d,5c,8d", "a", "b")
	a.NoError(e.RequestStand("a"))
	a.NoError(e.RequestStand("b"))

	a.NoError(e.StartNextRound())
	a.Equal(2, e.Round())
	a.Equal(StateInProgress, e.State())
	a.Nil(e.Result())
	a.Equal([]string{}, e.Winners())

	balance, _ := e.Balance("a")
	a.Equal(80, balance)
	balance, _ = e.Balance("b")
	a.Equal(100, balance)

	for _, p := range e.participants {
		a.Len(p.hand, 2)
		a.False(p.busted)
		a.False(p.held)
	}

	e, err := NewEngine(logrus.StandardLogger(), DefaultOptions())
	require.NoError(t, err)
	a.Equal(ErrNoParticipants, e.StartNextRound())
}

func TestEngine_StartRound_keepsReturningBalances(t *testing.T) {
	a := assert.New(t)

	e := newTestEngine(t, "10c,10d,5c,8d", "a", "b")
	a.NoError(e.RequestStand("a"))
	a.NoError(e.RequestStand("b"))

	a.NoError(e.StartRound([]Seat{{ID: "b", DisplayName: "Bee"}, {ID: "c", DisplayName: "Cee"}}))
	a.Equal([]Seat{{ID: "b", DisplayName: "Bee"}, {ID: "c", DisplayName: "Cee"}}, e.Roster())

	balance, _ := e.Balance("b")
	a.Equal(100, balance)
	balance, _ = e.Balance("c")
	a.Equal(90, balance)

	_, found := e.Balance("a")
	a.False(found)
}

func TestEngine_logs(t *testing.T) {
	a := assert.New(t)

	logger, hook := test.NewNullLogger()
	e, err := NewEngine(logger, DefaultOptions())
	require.NoError(t, err)

	stackDeck(e, "10c,10d,5c,8d,10h")
	require.NoError(t, e.StartRound(seats("a", "b")))
	_, err = e.RequestHit("a")
	a.NoError(err)
	a.NoError(e.RequestStand("b"))

	a.Equal("round over", hook.LastEntry().Message)
	a.Equal(20, hook.LastEntry().Data["pot"])

	var messages []string
	for len(e.LogChan()) > 0 {
		for _, msg := range <-e.LogChan() {
			messages = append(messages, msg.Message)
		}
	}

	a.Equal([]string{
		"{} bet 10",
		"{} bet 10",
		"Round 1 dealt with a pot of 20",
		"{} hit and drew 10♥ for 25",
		"{} busted",
		"{} stood on 18",
		"{} won the pot of 20 with 18",
	}, messages)
}

func TestEngine_logChanNeverBlocks(t *testing.T) {
	e := newTestEngine(t, "10c,10d,5c,8d", "a", "b")

	for i := 0; i < 300; i++ {
		_ = e.RequestStand("a")
		_ = e.RequestStand("b")
		assert.NoError(t, e.StartNextRound())
	}

	assert.Equal(t, cap(e.logChan), len(e.logChan))
}

// TestEngine_randomRounds plays seeded rounds where everyone hits below 17
func TestEngine_randomRounds(t *testing.T) {
	opts := DefaultOptions()
	opts.Generator = rng.NewSeeded(42)

	e, err := NewEngine(logrus.StandardLogger(), opts)
	require.NoError(t, err)
	require.NoError(t, e.StartRound(seats("a", "b", "c", "d", "e", "f", "g")))

	forfeited := 0
	for round := 0; round < 500; round++ {
		bets := 0
		for _, p := range e.participants {
			bets += p.bet
			require.True(t, p.balance >= 0)
		}
		require.Equal(t, bets, e.Pot())

		for !e.IsRoundOver() {
			current := e.CurrentTurn()
			p := e.idToParticipant[current]
			if p.Score() < 17 {
				_, err := e.RequestHit(current)
				require.NoError(t, err)
			} else {
				require.NoError(t, e.RequestStand(current))
			}
		}

		result := e.Result()
		paid := result.Share * len(result.Winners)
		require.Equal(t, result.Pot, paid+result.Forfeited)
		for _, w := range result.Winners {
			require.True(t, e.idToParticipant[w].Score() <= Blackjack)
		}

		forfeited += result.Forfeited
		require.Equal(t, 700, totalChips(e)+forfeited)
		require.NoError(t, e.StartNextRound())
	}
}

func TestEngine_Withdraw(t *testing.T) {
	a := assert.New(t)

	// a: 10,10 = 20, b: 10,8 = 18, c: 9,7 = 16
	e := newTestEngine(t, "10c,10d,9c,10h,8d,7c", "a", "b", "c")
	a.Equal("a", e.CurrentTurn())

	// the current participant leaves, a would have won
	a.NoError(e.Withdraw("a"))
	a.True(e.participants[0].IsBusted())
	a.Equal("b", e.CurrentTurn())
	a.Equal(30, e.Pot())

	// someone waiting for their turn leaves
	a.NoError(e.Withdraw("c"))
	a.Equal("b", e.CurrentTurn())
	a.False(e.IsRoundOver())

	a.NoError(e.Withdraw("c"))
	a.Equal(ErrInvalidParticipant, e.Withdraw("nobody"))

	a.NoError(e.RequestStand("b"))
	a.True(e.IsRoundOver())
	a.Equal([]string{"b"}, e.Winners())

	balance, _ := e.Balance("a")
	a.Equal(90, balance)
	balance, _ = e.Balance("b")
	a.Equal(120, balance)
	balance, _ = e.Balance("c")
	a.Equal(90, balance)
	a.Equal(300, totalChips(e))

	a.Equal(ErrRoundNotActive, e.Withdraw("b"))
}

func TestEngine_Withdraw_lastToAct(t *testing.T) {
	a := assert.New(t)

	e := newTestEngine(t, "10c,10d,9c,8d", "a", "b")
	a.NoError(e.RequestStand("a"))

	a.NoError(e.Withdraw("b"))
	a.True(e.IsRoundOver())
	a.Equal([]string{"a"}, e.Winners())
	a.True(e.Result().Participants[1].Busted)

	balance, _ := e.Balance("a")
	a.Equal(110, balance)
}
