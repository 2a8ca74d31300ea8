package main

import (
	"context"
	"database/sql"
	"time"

	"blackjack-server/internal/config"
	"blackjack-server/pkg/db"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Instance()
	if cfg.PGDSN == "" {
		logrus.Fatal("pgDsn is not configured")
	}

	dbh := waitForDB(cfg.PGDSN)
	defer dbh.Close()

	if err := db.Migrate(dbh, cfg.MigrationsPath); err != nil {
		logrus.WithError(err).Fatal("could not run migrations")
	}

	logrus.Info("migrations complete")
}

func waitForDB(dsn string) *sql.DB {
	timeout := time.NewTimer(time.Second * 10)
	defer timeout.Stop()

	for {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		dbh, err := db.Open(ctx, dsn)
		cancel()

		if err == nil {
			return dbh
		}

		select {
		case <-timeout.C:
			logrus.WithError(err).Fatal("could not connect to database")
		case <-time.After(time.Millisecond * 500):
		}
	}
}
