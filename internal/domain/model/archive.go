package model

// ArchiveEvent is one bulk event-log record reduced to the fields the
// pipeline uses. Hour is the UTC hour-of-day file the record came from.
type ArchiveEvent struct {
	RepoName string
	Type     EventType
	Hour     int
}

// HourCounts holds the star and commit events seen for one repository in one hour.
type HourCounts struct {
	Stars   int
	Commits int
}

// RawCounts maps an hour-of-day to the event counts observed in that hour.
type RawCounts map[int]HourCounts

// Add records one event in the given hour. Events other than stars and
// commits are ignored.
func (rc RawCounts) Add(hour int, typ EventType) {
	c := rc[hour]
	switch typ {
	case EventTypeStar:
		c.Stars++
	case EventTypeCommit:
		c.Commits++
	default:
		return
	}
	rc[hour] = c
}

// Velocity is a 24-hour activity estimate extrapolated from sampled hours.
type Velocity struct {
	StarVelocity    int
	CommitFrequency int
}
