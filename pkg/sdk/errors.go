package semantle

import "github.com/kailas-cloud/semantle/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotInVocabulary     = domain.ErrNotInVocabulary
	ErrDateAssigned        = domain.ErrDateAssigned
	ErrWordUsed            = domain.ErrWordUsed
	ErrNoSecret            = domain.ErrNoSecret
	ErrRankingNotPopulated = domain.ErrRankingNotPopulated
	ErrRankingNotBuilt     = domain.ErrRankingNotBuilt
	ErrRankingIncomplete   = domain.ErrRankingIncomplete
	ErrVocabularyTooSmall  = domain.ErrVocabularyTooSmall
	ErrInvalidGuess        = domain.ErrInvalidGuess
)
