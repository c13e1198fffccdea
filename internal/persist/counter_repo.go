package persist

import (
	"context"
	"fmt"
)

// CounterRepo stores the object id counters so ids stay unique across
// restarts.
type CounterRepo struct {
	archive *Archive
}

func NewCounterRepo(a *Archive) *CounterRepo {
	return &CounterRepo{archive: a}
}

// LoadCounters returns every stored prefix counter.
func (r *CounterRepo) LoadCounters(ctx context.Context) (map[string]uint64, error) {
	rows, err := r.archive.pool.Query(ctx, `SELECT prefix, next_value FROM id_counters`)
	if err != nil {
		return nil, fmt.Errorf("query id counters: %w", err)
	}
	defer rows.Close()

	out := make(map[string]uint64)
	for rows.Next() {
		var prefix string
		var next int64
		if err := rows.Scan(&prefix, &next); err != nil {
			return nil, fmt.Errorf("scan id counter: %w", err)
		}
		out[prefix] = uint64(next)
	}
	return out, rows.Err()
}

// SaveCounters upserts the snapshot in one transaction. A stored counter
// is never lowered.
func (r *CounterRepo) SaveCounters(ctx context.Context, counters map[string]uint64) error {
	tx, err := r.archive.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("counters begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for prefix, next := range counters {
		if _, err := tx.Exec(ctx,
			`INSERT INTO id_counters (prefix, next_value) VALUES ($1, $2)
			 ON CONFLICT (prefix) DO UPDATE
			 SET next_value = GREATEST(id_counters.next_value, EXCLUDED.next_value),
			     updated_at = now()`,
			prefix, int64(next),
		); err != nil {
			return fmt.Errorf("upsert counter %s: %w", prefix, err)
		}
	}

	return tx.Commit(ctx)
}
