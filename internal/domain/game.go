package domain

import "time"

// KeyPrefix namespaces every key this service writes to the KV store.
const KeyPrefix = "semantle:"

// DateLayout is the calendar date format used in keys, logs and the API.
const DateLayout = "2006-01-02"

// Unranked is the rank of a word outside the proximity ranking.
const Unranked = -1

// DefaultRankingSize is the number of nearest words kept per secret.
const DefaultRankingSize = 1000

// Assignment is a secret word bound to a calendar date.
type Assignment struct {
	Word        string
	Date        time.Time
	SolverCount int
}

// Score is the outcome of a single guess.
// Known is false when the guess is not in the vocabulary; Similarity is then meaningless.
type Score struct {
	Guess       string
	Similarity  float64
	Known       bool
	Rank        int
	SolverCount *int
	Egg         string
}

// Ranked reports whether the guess landed inside the proximity ranking.
func (s Score) Ranked() bool { return s.Rank != Unranked }

// Neighbor is a ranking word with its similarity to the secret.
type Neighbor struct {
	Word       string
	Similarity float64
	Rank       int
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
