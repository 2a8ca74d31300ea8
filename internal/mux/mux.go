package mux

import (
	"context"
	"net/http"
	"strings"
	"time"

	"blackjack-server/internal/jwt"
	"blackjack-server/pkg/room"

	gmux "github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type ctxKey int

const (
	ctxRoomKey ctxKey = iota
	ctxMemberKey
	ctxTokenRoomKey
	ctxTokenMemberKey
)

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	config    Config
	version   string
	logger    logrus.FieldLogger
	recaptcha recaptcha
	pitBoss   *room.PitBoss
	cooldown  *cooldown

	// store for testing purposes
	authRouter *gmux.Router
}

// Config configures the HTTP handlers
type Config struct {
	// RoomCreateDelay is the minimum duration between two room create events from a single remote address
	RoomCreateDelay time.Duration

	// RecaptchaSecret enables recaptcha verification of room creation when set
	RecaptchaSecret string
}

// NewMux returns a new HTTP mux
// The pit boss must already be on shift
func NewMux(logger logrus.FieldLogger, version string, pitBoss *room.PitBoss, cfg Config) *Mux {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	this := &Mux{
		Router:    gmux.NewRouter(),
		config:    cfg,
		version:   version,
		logger:    logger,
		pitBoss:   pitBoss,
		cooldown:  newCooldown(cfg.RoomCreateDelay),
		recaptcha: newRecaptcha(logger, cfg.RecaptchaSecret),
	}

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
		r.Methods(http.MethodGet).Path("/room").Handler(this.getRoom())
		r.Methods(http.MethodPost).Path("/room").Handler(this.postRoom())
		r.Methods(http.MethodPost).Path("/room/{id:[A-Za-z0-9_-]+}/join").Handler(this.postRoomIDJoin())
	}

	// requires bearer authorization
	{
		r := this.authRouter

		rr := r.PathPrefix("/room/{id:[A-Za-z0-9_-]+}").Subrouter()
		rr.Use(this.roomMiddleware)

		rr.Methods(http.MethodGet).Path("").Handler(this.getRoomID())
		rr.Methods(http.MethodGet).Path("/ws").Handler(this.getRoomIDWS())
		rr.Methods(http.MethodGet).Path("/history").Handler(this.getRoomIDHistory())
		rr.Methods(http.MethodPost).Path("/start").Handler(this.postRoomIDStart())
		rr.Methods(http.MethodPost).Path("/hit").Handler(this.postRoomIDHit())
		rr.Methods(http.MethodPost).Path("/stand").Handler(this.postRoomIDStand())
		rr.Methods(http.MethodPost).Path("/leave").Handler(this.postRoomIDLeave())
	}

	return this
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		roomID, memberID, err := jwt.ValidMember(token)
		if err != nil {
			m.logger.WithError(err).Debug("invalid access token")
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxTokenRoomKey, roomID)
		newCtx = context.WithValue(newCtx, ctxTokenMemberKey, memberID)
		w.Header().Set("Blackjack-MemberID", memberID)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// roomMiddleware requires authMiddleware to execute first
// The access token must have been issued for the room in the path
func (m *Mux) roomMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		roomID := gmux.Vars(r)["id"]
		if r.Context().Value(ctxTokenRoomKey).(string) != roomID {
			writeJSONError(w, http.StatusForbidden, nil)
			return
		}

		rm, err := m.pitBoss.GetRoom(roomID)
		if err != nil {
			writeRoomError(w, err)
			return
		}

		member, found := rm.Member(r.Context().Value(ctxTokenMemberKey).(string))
		if !found {
			writeRoomError(w, room.ErrNotMember)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxRoomKey, rm)
		newCtx = context.WithValue(newCtx, ctxMemberKey, member)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

func roomFromContext(r *http.Request) (*room.Room, *room.Member) {
	return r.Context().Value(ctxRoomKey).(*room.Room), r.Context().Value(ctxMemberKey).(*room.Member)
}
