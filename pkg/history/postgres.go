package history

import (
	"context"
	"database/sql"
	"encoding/json"

	"blackjack-server/pkg/db"

	"github.com/lib/pq"
)

// PostgresRecorder stores rounds in the `rounds` table
type PostgresRecorder struct {
	db *sql.DB
}

// NewPostgresRecorder returns a recorder backed by postgres
func NewPostgresRecorder(db *sql.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

const roundsColumns = `id, room_id, round, deck_hash, pot, forfeited, winners, participants, ended`

// RecordRound inserts the round
func (p *PostgresRecorder) RecordRound(ctx context.Context, round *Round) error {
	participants, err := json.Marshal(round.Participants)
	if err != nil {
		return err
	}

	const query = `
INSERT INTO rounds (room_id, round, deck_hash, pot, forfeited, winners, participants)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, ended`

	row := p.db.QueryRowContext(ctx, query,
		round.RoomID,
		round.Round,
		round.DeckHash,
		round.Pot,
		round.Forfeited,
		pq.Array(round.Winners),
		participants,
	)

	return row.Scan(&round.ID, &round.Ended)
}

// Rounds returns the newest rounds of the room
func (p *PostgresRecorder) Rounds(ctx context.Context, roomID string, limit int) ([]*Round, error) {
	const query = `
SELECT ` + roundsColumns + `
FROM rounds
WHERE room_id = $1
ORDER BY id DESC
LIMIT $2`

	rows, err := p.db.QueryContext(ctx, query, roomID, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]*Round, 0)
	for rows.Next() {
		round, err := roundByRow(rows)
		if err != nil {
			return nil, err
		}

		rounds = append(rounds, round)
	}

	return rounds, rows.Err()
}

func roundByRow(row db.Scanner) (*Round, error) {
	var r Round
	var participants []byte
	if err := row.Scan(
		&r.ID,
		&r.RoomID,
		&r.Round,
		&r.DeckHash,
		&r.Pot,
		&r.Forfeited,
		pq.Array(&r.Winners),
		&participants,
		&r.Ended,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(participants, &r.Participants); err != nil {
		return nil, err
	}

	if r.Winners == nil {
		r.Winners = []string{}
	}

	return &r, nil
}
