// Package vector holds the embedding math shared by every vocabulary backend.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Zero-length or zero-norm vectors yield 0. Vectors of different dimensions are compared
// over their common prefix.
func Cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := range n {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Similarity is the cosine similarity scaled to a percentage and rounded to 2 decimals.
func Similarity(a, b []float32) float64 {
	return Round2(Cosine(a, b) * 100)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Filter decides whether a word is a plausible vocabulary member.
type Filter func(word string) bool

// AcceptAll keeps every word, single letters included.
func AcceptAll(string) bool { return true }

// AnyFilter accepts every word longer than one character.
func AnyFilter(word string) bool {
	return utf8.RuneCountInString(word) > 1
}

// HebrewFilter accepts words of two or more letters from א..ת.
func HebrewFilter(word string) bool {
	if utf8.RuneCountInString(word) <= 1 {
		return false
	}
	for _, r := range word {
		if r < 'א' || r > 'ת' {
			return false
		}
	}
	return true
}

// FilterByName resolves a configured filter name.
func FilterByName(name string) (Filter, error) {
	switch name {
	case "", "hebrew":
		return HebrewFilter, nil
	case "any":
		return AnyFilter, nil
	default:
		return nil, fmt.Errorf("unknown vocabulary filter %q", name)
	}
}

// Encode serializes a vector as little-endian float32 bytes.
func Encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode parses little-endian float32 bytes.
func Decode(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
