package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"travel_planner/internal/domain"
)

// ConversationService answers one incoming message: normalize, preprocess,
// select. Preprocessing results are cached; fallback answers are recorded in
// the miss store when one is configured.
type ConversationService struct {
	nlp      domain.Preprocessor
	sel      *Responder
	cache    domain.Cache
	cacheTTL time.Duration
	misses   domain.MissRepository
}

// NewConversationService wires the service. cache and misses may be nil.
func NewConversationService(p domain.Preprocessor, sel *Responder, c domain.Cache, ttl time.Duration, m domain.MissRepository) *ConversationService {
	return &ConversationService{nlp: p, sel: sel, cache: c, cacheTTL: ttl, misses: m}
}

func (s *ConversationService) Reply(ctx context.Context, chatID int64, raw string) domain.Reply {
	text := domain.Lower(raw)
	an := s.analyze(ctx, raw)

	rep := s.sel.Select(domain.Query{Text: text, Entities: an.Entities, Keywords: an.Keywords})
	log.Debug().
		Int64("chat_id", chatID).
		Strs("entities", an.Entities).
		Strs("keywords", an.Keywords).
		Str("branch", string(rep.Branch)).
		Msg("reply selected")

	if rep.Branch == domain.BranchFallback && s.misses != nil {
		if q := strings.TrimSpace(text); q != "" {
			if err := s.misses.LogMiss(ctx, chatID, q); err != nil {
				log.Warn().Err(err).Int64("chat_id", chatID).Msg("log miss failed")
			}
		}
	}
	return rep
}

// TopMisses lists the most frequent unmatched messages.
func (s *ConversationService) TopMisses(ctx context.Context, limit int) ([]domain.MissStat, error) {
	if s.misses == nil {
		return nil, domain.ErrMissStoreDown
	}
	return s.misses.TopMisses(ctx, limit)
}

func (s *ConversationService) analyze(ctx context.Context, raw string) domain.Analysis {
	if s.cache == nil {
		return s.nlp.Analyze(raw)
	}
	key := analysisKey(raw)
	var an domain.Analysis
	if ok, err := s.cache.Get(ctx, key, &an); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("analysis cache get failed")
	} else if ok {
		return an
	}
	an = s.nlp.Analyze(raw)
	if err := s.cache.Set(ctx, key, an, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("analysis cache set failed")
	}
	return an
}

func analysisKey(raw string) string {
	sum := sha1.Sum([]byte(raw))
	return "nlp:" + hex.EncodeToString(sum[:])
}
