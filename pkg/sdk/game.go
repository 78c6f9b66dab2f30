package semantle

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/semantle/internal/domain"
)

// Guess scores word against today's secret. Words outside the vocabulary are
// not an error: they come back with Known=false.
func (c *Client) Guess(ctx context.Context, word string) (s Score, err error) {
	start := time.Now()
	defer func() { c.obs.observe("guess", start, err, "rank", s.Rank) }()

	score, err := c.game.Distance(ctx, word, c.Today())
	if err != nil {
		return Score{}, fmt.Errorf("guess: %w", err)
	}
	return Score{
		Guess:       score.Guess,
		Similarity:  score.Similarity,
		Known:       score.Known,
		Rank:        score.Rank,
		SolverCount: score.SolverCount,
		Egg:         score.Egg,
	}, nil
}

// Closest returns the n nearest words of the game played daysAgo days ago,
// nearest first. daysAgo must be at least 1: today's ranking is the answer.
func (c *Client) Closest(ctx context.Context, daysAgo, n int) (out []Neighbor, err error) {
	start := time.Now()
	defer func() { c.obs.observe("closest", start, err) }()

	if daysAgo < 1 {
		return nil, fmt.Errorf("closest: days ago must be at least 1, got %d", daysAgo)
	}
	neighbors, err := c.game.Closest(ctx, c.Today().AddDate(0, 0, -daysAgo), n)
	if err != nil {
		return nil, fmt.Errorf("closest: %w", err)
	}
	out = make([]Neighbor, len(neighbors))
	for i, nb := range neighbors {
		out[i] = Neighbor{Word: nb.Word, Similarity: nb.Similarity, Rank: nb.Rank}
	}
	return out, nil
}

// Summary returns today's headline.
func (c *Client) Summary(ctx context.Context) (sum Summary, err error) {
	start := time.Now()
	defer func() { c.obs.observe("summary", start, err) }()

	s, err := c.game.Summary(ctx, c.Today())
	if err != nil {
		return Summary{}, fmt.Errorf("summary: %w", err)
	}
	return Summary(s), nil
}

// Preview builds the ranking of candidate for the next open date and stages it.
func (c *Client) Preview(ctx context.Context, candidate string, force bool) (p Preview, err error) {
	start := time.Now()
	defer func() { c.obs.observe("preview", start, err, "candidate", candidate) }()

	pr, err := c.admin.Preview(ctx, candidate, force)
	if err != nil {
		return Preview{}, fmt.Errorf("preview: %w", err)
	}
	return Preview(pr), nil
}

// Schedule commits a previewed secret with its clues. Returns the date it was scheduled on.
func (c *Client) Schedule(ctx context.Context, secret string, clues []string, force bool) (date time.Time, err error) {
	start := time.Now()
	defer func() { c.obs.observe("schedule", start, err, "date", domain.FormatDate(date)) }()

	date, err = c.admin.Commit(ctx, secret, clues, force)
	if err != nil {
		return time.Time{}, fmt.Errorf("schedule: %w", err)
	}
	return date, nil
}
