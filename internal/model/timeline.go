package model

import "time"

// EventType classifies a timeline event.
type EventType string

const (
	EventDisappearance EventType = "disappearance"
	EventCorpseFound   EventType = "corpse_found"
	EventHomicide      EventType = "homicide"
	EventOther         EventType = "other"
)

// IsDeath reports whether this event type describes a death.
func (t EventType) IsDeath() bool {
	return t == EventCorpseFound || t == EventHomicide
}

// Event is one dated occurrence attributed to a resolved person.
type Event struct {
	RecordID string      `json:"record_id"`
	Dataset  DatasetKind `json:"dataset"`
	Type     EventType   `json:"type"`
	Date     time.Time   `json:"date"`
	Name     string      `json:"name,omitempty"`
	Location string      `json:"location,omitempty"`
}

// Strength labels how strongly a disappearance→death pair suggests a single
// continuous case.
type Strength string

const (
	StrengthStrong       Strength = "strong"       // death within 30 days, nothing in between
	StrengthModerate     Strength = "moderate"     // death within 90 days, nothing in between
	StrengthWeak         Strength = "weak"         // more than 90 days, nothing in between
	StrengthInconclusive Strength = "inconclusive" // an intervening event breaks the continuity assumption
)

// CorrelatedPair links a disappearance event to a later death event for the
// same person.
type CorrelatedPair struct {
	PersonKey   string   `json:"person_key"`
	Source      Event    `json:"disappearance"`
	Death       Event    `json:"death"`
	ElapsedDays int      `json:"elapsed_days"`
	Intervening bool     `json:"intervening"` // another event falls strictly between the two dates
	Strength    Strength `json:"strength"`
}

// CaseTimeline is the ordered event history attributed to one resolved
// identity. Pairs are always recomputed from Events; they are never mutated
// independently of the event list.
type CaseTimeline struct {
	PersonKey string           `json:"person_key"`
	Name      string           `json:"name,omitempty"`
	Events    []Event          `json:"events"`
	Pairs     []CorrelatedPair `json:"pairs,omitempty"`
}

// Review is the advisory annotation produced by the optional LLM review
// stage. It is layered on top of the deterministic engine's output and the
// core never depends on it.
type Review struct {
	PersonKey string    `json:"person_key"`
	SourceID  string    `json:"source_id"`
	DeathID   string    `json:"death_id"`
	Verdict   Verdict   `json:"verdict"`
	Reasoning string    `json:"reasoning,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Verdict is the reviewer's non-authoritative second opinion.
type Verdict string

const (
	VerdictCorroborated Verdict = "corroborated"
	VerdictRefuted      Verdict = "refuted"
	VerdictInconclusive Verdict = "inconclusive"
)
