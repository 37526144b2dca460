package model

import (
	"strings"
	"time"
)

// WatchItem is a symbol the user follows.
type WatchItem struct {
	Symbol  string    `json:"ticker"`
	AddedAt time.Time `json:"added_at"`
}

// AlertCondition says on which side of the target an alert fires.
type AlertCondition string

const (
	ConditionAbove AlertCondition = "above"
	ConditionBelow AlertCondition = "below"
)

// ParseCondition normalises user input into an AlertCondition.
func ParseCondition(s string) (AlertCondition, bool) {
	switch AlertCondition(strings.ToLower(strings.TrimSpace(s))) {
	case ConditionAbove:
		return ConditionAbove, true
	case ConditionBelow:
		return ConditionBelow, true
	}
	return "", false
}

// Alert is a price alert on one symbol.
type Alert struct {
	ID          int64          `json:"id"`
	Symbol      string         `json:"ticker"`
	TargetPrice float64        `json:"target_price"`
	Condition   AlertCondition `json:"condition"`
	Contact     string         `json:"contact,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	Triggered   bool           `json:"triggered"`
	TriggeredAt *time.Time     `json:"triggered_at,omitempty"`
}

// NormalizeSymbol upper-cases and trims a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
