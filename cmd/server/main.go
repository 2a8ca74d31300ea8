package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"blackjack-server/internal/config"
	"blackjack-server/internal/jwt"
	"blackjack-server/internal/mux"
	"blackjack-server/internal/rng"
	"blackjack-server/pkg/blackjack"
	"blackjack-server/pkg/db"
	"blackjack-server/pkg/history"
	"blackjack-server/pkg/room"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10
const shutdownTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")

func main() {
	flag.Parse()
	setupLogger()

	cfg := config.Instance()

	// fail fast
	if err := jwt.LoadKeys(); err != nil {
		logrus.WithError(err).Fatal("could not load jwt keys")
	}

	pitBoss := room.NewPitBoss(logrus.StandardLogger(), roomOptions(cfg))
	pitBoss.StartShift()
	defer pitBoss.EndShift()

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	m := mux.NewMux(logrus.StandardLogger(), Version, pitBoss, mux.Config{
		RoomCreateDelay: cfg.RoomCreateCooldown(),
		RecaptchaSecret: cfg.RecaptchaSecret,
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(c.Handler(m)),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logrus.Info("shutting down")
		if err := srv.Shutdown(ctx); err != nil {
			logrus.WithError(err).Error("could not shut down cleanly")
		}
	}()

	logrus.WithField("addr", srv.Addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Fatal("server stopped")
	}
}

// roomOptions archives rounds in postgres when a DSN is configured
func roomOptions(cfg config.Config) room.Options {
	game := blackjack.DefaultOptions()
	game.Stake = cfg.Game.Stake
	game.StartingChips = cfg.Game.StartingChips
	game.RestartDelay = cfg.RestartDelay()
	game.Generator = rng.FromName(cfg.Game.Shuffle)

	opts := room.DefaultOptions()
	opts.MaxSeats = cfg.Game.MaxSeats
	opts.Game = game

	if cfg.PGDSN == "" {
		logrus.Warn("no postgres DSN configured, round history is kept in memory")
		return opts
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, cfg.PGDSN)
	if err != nil {
		logrus.WithError(err).Fatal("could not open database")
	}

	// run the db migrations
	if err := db.Migrate(dbh, cfg.MigrationsPath); err != nil {
		logrus.WithError(err).Fatal("could not run migrations")
	}

	opts.Recorder = history.NewPostgresRecorder(dbh)
	return opts
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(config.Instance().Log.Format) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
