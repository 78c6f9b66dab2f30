// Package semantle embeds the daily semantic word game in a Go program,
// without going through the HTTP API.
//
// The client connects to the same Valkey/Redis store and SQLite registry as
// the server, loads the vocabulary once and then scores guesses in-process:
//
//	client, _ := semantle.New(ctx,
//	    semantle.WithValkey("localhost:6379", ""),
//	    semantle.WithRegistry("semantle.db"),
//	)
//	defer client.Close()
//
//	score, _ := client.Guess(ctx, "שלום")
//	fmt.Println(score.Similarity, score.Rank)
//
// Scheduling secrets goes through Preview followed by Schedule:
//
//	p, _ := client.Preview(ctx, "שמש", false)
//	_, _ = client.Schedule(ctx, "שמש", []string{"חם"}, false)
package semantle
