package model

// EventType classifies a bulk event-log record by the activity it represents.
type EventType string

const (
	EventTypeStar   EventType = "star"   // WatchEvent in the archive.
	EventTypeCommit EventType = "commit" // PushEvent in the archive.
	EventTypeOther  EventType = "other"
)

// Label is the binary trending outcome of a FeatureRow. A row carries
// LabelPlaceholder from collection until its lookback window closes.
type Label int

const (
	LabelPlaceholder Label = -1
	LabelNotTrending Label = 0
	LabelTrending    Label = 1
)

// String returns a human-readable name for the label.
func (l Label) String() string {
	switch l {
	case LabelPlaceholder:
		return "placeholder"
	case LabelNotTrending:
		return "not_trending"
	case LabelTrending:
		return "trending"
	default:
		return "unknown"
	}
}

// IsResolved reports whether the label holds a final 0/1 outcome.
func (l Label) IsResolved() bool {
	return l == LabelNotTrending || l == LabelTrending
}

