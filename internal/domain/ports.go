package domain

import (
	"context"
	"errors"
)

// ErrMissStoreDown is returned when no miss store is configured.
var ErrMissStoreDown = errors.New("miss store not configured")

// Preprocessor turns raw text into entities and keywords.
type Preprocessor interface {
	Analyze(text string) Analysis
}

// Rand is the randomness used for tip sampling and fallback choice.
type Rand interface {
	IntN(n int) int
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// MissRepository records messages nothing in the knowledge base matched.
type MissRepository interface {
	LogMiss(ctx context.Context, chatID int64, text string) error
	TopMisses(ctx context.Context, limit int) ([]MissStat, error)
}
