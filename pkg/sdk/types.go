package semantle

import "time"

// Unranked is the rank of a guess outside the daily ranking.
const Unranked = -1

// Score is the outcome of one guess.
type Score struct {
	Guess      string
	Similarity float64
	// Known is false for words outside the vocabulary; Similarity is then zero.
	Known bool
	// Rank is 1..K inside the ranking (K is the secret itself), Unranked otherwise.
	Rank int
	// SolverCount is set only when the guess hit the secret.
	SolverCount *int
	Egg         string
}

// Neighbor is one ranking word of a past day.
type Neighbor struct {
	Word       string
	Similarity float64
	Rank       int
}

// Summary is the headline of a day.
type Summary struct {
	Date            time.Time
	GameNumber      int
	Nearest         float64
	Tenth           float64
	Last            float64
	YesterdaySecret string
}

// Preview is a staged ranking waiting for Schedule.
type Preview struct {
	Date       time.Time
	GameNumber int
	Words      []string // nearest first, the secret itself at index 0
}
