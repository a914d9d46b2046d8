// Package bootstrap builds the conversation stack shared by the bot and API
// processes from configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"travel_planner/internal/adapters/memcache"
	redisad "travel_planner/internal/adapters/redis"
	"travel_planner/internal/app"
	"travel_planner/internal/domain"
	"travel_planner/internal/knowledge"
	"travel_planner/internal/nlp"
	"travel_planner/internal/shared"
	mysqlrepo "travel_planner/internal/storage/mysql"
)

type Deps struct {
	KB   *domain.Knowledge
	Conv *app.ConversationService

	closers []func() error
}

// Close releases the cache and database connections.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}

// Build loads the knowledge base and wires preprocessing, selection, the
// analysis cache and the optional miss store.
func Build(ctx context.Context, cfg shared.Config) (*Deps, error) {
	kb, err := knowledge.Load(cfg.KnowledgeFile)
	if err != nil {
		return nil, fmt.Errorf("knowledge: %w", err)
	}
	d := &Deps{KB: kb}

	cache := newCache(ctx, cfg, d)

	var misses domain.MissRepository
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("sql.Open: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			_ = db.Close()
			d.Close()
			return nil, fmt.Errorf("db.Ping: %w", err)
		}
		log.Info().Msg("database connection ok")
		d.closers = append(d.closers, db.Close)
		misses = mysqlrepo.New(db)
	} else {
		log.Info().Msg("MYSQL_DSN is empty, unmatched queries are not recorded")
	}

	sel := app.NewResponder(kb, app.NewRand(cfg.RandomSeed))
	d.Conv = app.NewConversationService(nlp.FromKnowledge(kb), sel, cache, cfg.CacheTTL, misses)

	log.Info().
		Int("destinations", len(kb.Destinations)).
		Int("categories", len(kb.Categories)).
		Int("tips", len(kb.Tips)).
		Str("cache", cfg.CacheBackend).
		Bool("miss_store", misses != nil).
		Msg("conversation stack ready")
	return d, nil
}

func newCache(ctx context.Context, cfg shared.Config, d *Deps) domain.Cache {
	if cfg.CacheBackend == "redis" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			// cache errors are tolerated per request; keep going
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		}
		d.closers = append(d.closers, rc.Close)
		return rc
	}
	return memcache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
}
