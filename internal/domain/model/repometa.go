package model

import "time"

// UnknownLanguage is recorded when the metadata provider reports no language.
const UnknownLanguage = "Unknown"

// CandidateRepo is a repository nominated as a trending candidate on a day.
type CandidateRepo struct {
	RepoName string
	Day      time.Time
	Rank     int // 1-based position in the source's list.
}

// RepoMetadata is the live metadata of a repository from the GitHub API.
type RepoMetadata struct {
	FullName   string
	StarsTotal int
	ForksTotal int
	Language   string
	CreatedAt  time.Time
}

// DaysOldAt returns the repository age in whole days at the given day.
// A zero CreatedAt, or one after the day, yields 0.
func (m RepoMetadata) DaysOldAt(day time.Time) int {
	if m.CreatedAt.IsZero() {
		return 0
	}
	days := int(day.Sub(m.CreatedAt.UTC()).Hours() / 24)
	return max(days, 0)
}

// TrendingEntry is one parsed row of the live trending listing.
type TrendingEntry struct {
	Owner       string
	Name        string
	Description string
	Language    string
	Stars       int
	Forks       int
	StarsToday  int
}

// FullName returns the owner/name identity of the entry.
func (e TrendingEntry) FullName() string {
	return e.Owner + "/" + e.Name
}

// HistoryDay summarizes the candidate list recorded for one day.
type HistoryDay struct {
	Day        time.Time
	Source     string
	Candidates int
}
