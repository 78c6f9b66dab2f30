package domain

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors: caller-correctable, never retried automatically.
var (
	// ErrNotInVocabulary signals a secret candidate missing from the model.
	ErrNotInVocabulary = errors.New("word is not in the model")
	// ErrDateAssigned signals a date that already has a secret.
	ErrDateAssigned = errors.New("there is already a secret for this date")
	// ErrWordUsed signals a word that was already a secret on some date.
	ErrWordUsed = errors.New("word was already a secret")
	// ErrNoSecret signals a date without an assigned secret.
	ErrNoSecret = errors.New("no secret found")
	// ErrRankingNotPopulated signals a ranking read before it was committed.
	ErrRankingNotPopulated = errors.New("ranking not populated yet")
	// ErrRankingNotBuilt signals a populate call without a staged ranking.
	ErrRankingNotBuilt = errors.New("ranking not built")
	// ErrVocabularyTooSmall signals a vocabulary smaller than the ranking size.
	ErrVocabularyTooSmall = errors.New("vocabulary smaller than ranking size")
	// ErrInvalidGuess signals an empty or malformed guess.
	ErrInvalidGuess = errors.New("invalid guess")
)

var (
	// ErrUnknownWord signals a guess absent from the vocabulary. Scoring still proceeds.
	ErrUnknownWord = errors.New("unknown word")
	// ErrRankingIncomplete signals a committed ranking shorter than expected.
	ErrRankingIncomplete = errors.New("ranking incomplete")
	// ErrRateLimited signals a throttled caller.
	ErrRateLimited = errors.New("rate limited")
)

// WordUsedError wraps ErrWordUsed with the date the word was secret on.
type WordUsedError struct {
	Word string
	Date time.Time
}

func (e *WordUsedError) Error() string {
	return fmt.Sprintf("%s: %q on %s", ErrWordUsed.Error(), e.Word, e.Date.Format(DateLayout))
}

func (e *WordUsedError) Unwrap() error { return ErrWordUsed }

// NewWordUsed creates a word-used validation error.
func NewWordUsed(word string, date time.Time) error {
	return &WordUsedError{Word: word, Date: date}
}
