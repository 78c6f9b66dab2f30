package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// VocabularySizer reports how many words the loaded model holds.
type VocabularySizer interface {
	Len() int
}
