package persist

import (
	"context"
	"fmt"

	"github.com/apocgo/server/internal/core/event"
	"github.com/apocgo/server/internal/world"
	"github.com/jackc/pgx/v5"
)

// MessageRepo archives the in-game message log.
type MessageRepo struct {
	archive *Archive
}

func NewMessageRepo(a *Archive) *MessageRepo {
	return &MessageRepo{archive: a}
}

// AppendMessages writes a batch of messages with a single round trip.
func (r *MessageRepo) AppendMessages(ctx context.Context, msgs []world.EventMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range msgs {
		batch.Queue(
			`INSERT INTO message_archive (game_ticks, kind, text, loc_x, loc_y, loc_z)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			int64(m.Time.Ticks()), int16(m.Kind), m.Text,
			m.Location.X, m.Location.Y, m.Location.Z,
		)
	}
	if err := r.archive.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("append messages: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit archived messages, oldest first.
func (r *MessageRepo) RecentMessages(ctx context.Context, limit int) ([]world.EventMessage, error) {
	rows, err := r.archive.pool.Query(ctx,
		`SELECT game_ticks, kind, text, loc_x, loc_y, loc_z FROM (
			SELECT id, game_ticks, kind, text, loc_x, loc_y, loc_z
			FROM message_archive ORDER BY id DESC LIMIT $1
		 ) recent ORDER BY id ASC`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []world.EventMessage
	for rows.Next() {
		var (
			ticks   int64
			kind    int16
			text    string
			x, y, z int
		)
		if err := rows.Scan(&ticks, &kind, &text, &x, &y, &z); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, world.EventMessage{
			Time:     world.NewGameTime(uint64(ticks)),
			Kind:     event.Kind(kind),
			Text:     text,
			Location: event.Location{X: x, Y: y, Z: z},
		})
	}
	return out, rows.Err()
}
