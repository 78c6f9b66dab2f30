// Package vocab holds the in-memory word-embedding vocabulary.
//
// A Vocabulary is built once at startup and is read-only afterwards, so every
// method is safe for concurrent use without locking.
package vocab

import (
	"fmt"
	"iter"

	"github.com/kailas-cloud/semantle/internal/domain/vector"
)

// Entry is a single word with its embedding.
type Entry struct {
	Word   string
	Vector []float32
}

// Vocabulary is an immutable word -> vector table.
type Vocabulary struct {
	index  map[string]int
	words  []string
	vecs   [][]float32
	dim    int
	filter vector.Filter
}

// New builds a vocabulary from entries, keeping their order (frequency order in word2vec files).
// Words rejected by filter and repeated words are skipped. All vectors must share one dimension.
func New(entries []Entry, filter vector.Filter) (*Vocabulary, error) {
	if filter == nil {
		filter = vector.AnyFilter
	}
	v := &Vocabulary{
		index:  make(map[string]int, len(entries)),
		words:  make([]string, 0, len(entries)),
		vecs:   make([][]float32, 0, len(entries)),
		filter: filter,
	}
	for _, e := range entries {
		if !filter(e.Word) {
			continue
		}
		if _, dup := v.index[e.Word]; dup {
			continue
		}
		if v.dim == 0 {
			v.dim = len(e.Vector)
		}
		if len(e.Vector) != v.dim || v.dim == 0 {
			return nil, fmt.Errorf("word %q: dimension %d, expected %d", e.Word, len(e.Vector), v.dim)
		}
		v.index[e.Word] = len(v.words)
		v.words = append(v.words, e.Word)
		v.vecs = append(v.vecs, e.Vector)
	}
	return v, nil
}

// Vector returns the embedding of word. Words rejected by the filter short-circuit to false.
func (v *Vocabulary) Vector(word string) ([]float32, bool) {
	if !v.filter(word) {
		return nil, false
	}
	i, ok := v.index[word]
	if !ok {
		return nil, false
	}
	return v.vecs[i], true
}

// Contains reports whether word is a scorable vocabulary member.
func (v *Vocabulary) Contains(word string) bool {
	_, ok := v.Vector(word)
	return ok
}

// Similarity scores two vectors.
func (v *Vocabulary) Similarity(a, b []float32) float64 {
	return vector.Similarity(a, b)
}

// Similarities scores many words against one vector. Unknown words are omitted.
func (v *Vocabulary) Similarities(vec []float32, words []string) map[string]float64 {
	out := make(map[string]float64, len(words))
	for _, w := range words {
		wv, ok := v.Vector(w)
		if !ok {
			continue
		}
		out[w] = vector.Similarity(vec, wv)
	}
	return out
}

// All iterates the whole vocabulary in load order. Each call starts a fresh pass.
func (v *Vocabulary) All() iter.Seq2[string, []float32] {
	return func(yield func(string, []float32) bool) {
		for i, w := range v.words {
			if !yield(w, v.vecs[i]) {
				return
			}
		}
	}
}

// Entries returns the vocabulary in load order. Vectors are shared, not copied.
func (v *Vocabulary) Entries() []Entry {
	out := make([]Entry, len(v.words))
	for i, w := range v.words {
		out[i] = Entry{Word: w, Vector: v.vecs[i]}
	}
	return out
}

// Head returns up to n words in load order.
func (v *Vocabulary) Head(n int) []string {
	if n <= 0 || n > len(v.words) {
		n = len(v.words)
	}
	out := make([]string, n)
	copy(out, v.words[:n])
	return out
}

// Len returns the number of words.
func (v *Vocabulary) Len() int { return len(v.words) }

// Dim returns the vector dimension.
func (v *Vocabulary) Dim() int { return v.dim }
