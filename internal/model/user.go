package model

import "time"

// ReadingTime is a user's preferred article length.
type ReadingTime string

const (
	ReadingTimeShort  ReadingTime = "short"
	ReadingTimeMedium ReadingTime = "medium"
	ReadingTimeLong   ReadingTime = "long"
)

// UserPreferences holds a user's topic and source preferences. The pipeline
// only reads this; it is owned and mutated by the settings surface.
type UserPreferences struct {
	ID                    string      `json:"id"`
	DisplayName           string      `json:"display_name,omitempty"`
	Topics                []string    `json:"topics"`
	Sources               []string    `json:"sources"`
	ReadingTimePreference ReadingTime `json:"reading_time_preference"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// InteractionType classifies a user's engagement with a segment.
type InteractionType string

const (
	InteractionView    InteractionType = "view"
	InteractionClick   InteractionType = "click"
	InteractionSave    InteractionType = "save"
	InteractionShare   InteractionType = "share"
	InteractionDismiss InteractionType = "dismiss"
)

// AllInteractionTypes returns every valid interaction type.
func AllInteractionTypes() []InteractionType {
	return []InteractionType{
		InteractionView,
		InteractionClick,
		InteractionSave,
		InteractionShare,
		InteractionDismiss,
	}
}

// ValidInteractionType reports whether t is a known interaction type.
func ValidInteractionType(t InteractionType) bool {
	for _, known := range AllInteractionTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// UserInteraction is an append-only engagement event. The pipeline never
// updates or deletes these.
type UserInteraction struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	SegmentID       string          `json:"segment_id"`
	Type            InteractionType `json:"interaction_type"`
	DurationSeconds *int            `json:"duration_seconds,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// UserSegmentScore is the personalization score for one (user, segment)
// pair. Keyed on (UserID, SegmentID); recomputation replaces the row.
type UserSegmentScore struct {
	UserID    string    `json:"user_id"`
	SegmentID string    `json:"segment_id"`
	Score     float64   `json:"score"` // in [0,1]
	UpdatedAt time.Time `json:"updated_at"`
}
