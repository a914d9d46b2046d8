package domain

import "time"

// Branch names the selector rule that produced a reply.
type Branch string

const (
	BranchDestination   Branch = "destination"
	BranchCategory      Branch = "category"
	BranchAccommodation Branch = "accommodation"
	BranchTips          Branch = "tips"
	BranchFallback      Branch = "fallback"
)

// Analysis is what the preprocessor derives from a message.
type Analysis struct {
	Entities []string `json:"entities"`
	Keywords []string `json:"keywords"`
}

// Query is the selector input. Text must already be lower-cased.
type Query struct {
	Text     string
	Entities []string // not consulted by any rule
	Keywords []string
}

type Reply struct {
	Branch Branch `json:"branch"`
	Text   string `json:"reply"`
}

// MissStat aggregates fallback answers for one normalized text.
type MissStat struct {
	Text     string    `json:"text"`
	Count    int64     `json:"count"`
	LastChat int64     `json:"last_chat_id"`
	LastSeen time.Time `json:"last_seen"`
}
