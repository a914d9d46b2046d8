package mysql

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"fmt"

	"travel_planner/internal/domain"
)

const maxQueryLen = 1024

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// LogMiss counts one more fallback answer for text.
func (r *Repo) LogMiss(ctx context.Context, chatID int64, text string) error {
	if rs := []rune(text); len(rs) > maxQueryLen {
		text = string(rs[:maxQueryLen])
	}
	sum := sha1.Sum([]byte(text))
	if _, err := r.db.ExecContext(ctx, upsertMissSQL, sum[:], text, chatID); err != nil {
		return fmt.Errorf("upsert miss: %w", err)
	}
	return nil
}

func (r *Repo) TopMisses(ctx context.Context, limit int) ([]domain.MissStat, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, topMissesSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query misses: %w", err)
	}
	defer rows.Close()

	out := make([]domain.MissStat, 0, limit)
	for rows.Next() {
		var m domain.MissStat
		if err := rows.Scan(&m.Text, &m.Count, &m.LastChat, &m.LastSeen); err != nil {
			return nil, fmt.Errorf("scan miss: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
