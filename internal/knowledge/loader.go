// Package knowledge loads the static travel knowledge base.
package knowledge

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"travel_planner/internal/domain"
)

//go:embed knowledge.yaml
var embedded []byte

// MinTips is the smallest tip list the tips reply can sample from.
const MinTips = 3

// Default returns the built-in knowledge base.
func Default() (*domain.Knowledge, error) {
	return Parse(embedded)
}

// Load reads a YAML knowledge base from path, or the built-in one when path is empty.
func Load(path string) (*domain.Knowledge, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}
	kb, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Info().
		Str("path", path).
		Int("destinations", len(kb.Destinations)).
		Int("categories", len(kb.Categories)).
		Int("tips", len(kb.Tips)).
		Msg("knowledge base loaded")
	return kb, nil
}

// Parse decodes and validates a YAML knowledge base.
func Parse(b []byte) (*domain.Knowledge, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var kb domain.Knowledge
	if err := dec.Decode(&kb); err != nil {
		return nil, fmt.Errorf("decode knowledge: %w", err)
	}
	if err := Validate(&kb); err != nil {
		return nil, err
	}
	return &kb, nil
}

// Validate checks the invariants the selector relies on.
func Validate(kb *domain.Knowledge) error {
	var errs []error

	seen := make(map[string]bool, len(kb.Destinations))
	for i, d := range kb.Destinations {
		if err := checkKey(d.Key); err != nil {
			errs = append(errs, fmt.Errorf("destination #%d: %w", i, err))
			continue
		}
		if seen[d.Key] {
			errs = append(errs, fmt.Errorf("destination %q: duplicate key", d.Key))
		}
		seen[d.Key] = true
		if strings.TrimSpace(d.Description) == "" {
			errs = append(errs, fmt.Errorf("destination %q: empty description", d.Key))
		}
		if strings.TrimSpace(d.BestTime) == "" {
			errs = append(errs, fmt.Errorf("destination %q: empty best_time", d.Key))
		}
	}

	seen = make(map[string]bool, len(kb.Categories))
	for i, c := range kb.Categories {
		if err := checkKey(c.Key); err != nil {
			errs = append(errs, fmt.Errorf("category #%d: %w", i, err))
			continue
		}
		if seen[c.Key] {
			errs = append(errs, fmt.Errorf("category %q: duplicate key", c.Key))
		}
		seen[c.Key] = true
		if len(c.Destinations) == 0 {
			errs = append(errs, fmt.Errorf("category %q: no destinations", c.Key))
		}
	}

	if len(kb.Tips) < MinTips {
		errs = append(errs, fmt.Errorf("need at least %d tips, got %d", MinTips, len(kb.Tips)))
	}
	return errors.Join(errs...)
}

func checkKey(k string) error {
	switch {
	case strings.TrimSpace(k) == "":
		return errors.New("empty key")
	case k != domain.Lower(k):
		return fmt.Errorf("key %q must be lower-case", k)
	}
	return nil
}
