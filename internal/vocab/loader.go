package vocab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kailas-cloud/semantle/internal/domain/vector"
)

const maxLineBytes = 1 << 20

// Load parses the word2vec text format: one "word v1 v2 ... vD" per line,
// with an optional leading "count dim" header line.
func Load(r io.Reader, filter vector.Filter) (*Vocabulary, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var entries []Entry
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if lineNo == 1 && isHeader(fields) {
			n, _ := strconv.Atoi(fields[0])
			entries = make([]Entry, 0, n)
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected word and vector", lineNo)
		}
		vec := make([]float32, len(fields)-1)
		for i, f := range fields[1:] {
			x, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: parse component %d: %w", lineNo, i, err)
			}
			vec[i] = float32(x)
		}
		entries = append(entries, Entry{Word: fields[0], Vector: vec})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vectors: %w", err)
	}

	v, err := New(entries, filter)
	if err != nil {
		return nil, fmt.Errorf("build vocabulary: %w", err)
	}
	return v, nil
}

// LoadFile opens path and parses it with Load.
func LoadFile(path string, filter vector.Filter) (*Vocabulary, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open vectors %s: %w", path, err)
	}
	defer f.Close()
	return Load(f, filter)
}

func isHeader(fields []string) bool {
	if len(fields) != 2 {
		return false
	}
	_, err1 := strconv.Atoi(fields[0])
	_, err2 := strconv.Atoi(fields[1])
	return err1 == nil && err2 == nil
}
