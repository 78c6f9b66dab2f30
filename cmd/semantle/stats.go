package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semantle/internal/domain"
	adminuc "github.com/kailas-cloud/semantle/internal/usecase/admin"
)

func dayStatsCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "day-stats",
		Short: "Show the secret, ranking and solver count of a day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := domain.ParseDate(date)
			if err != nil {
				return fmt.Errorf("bad date %q: should be of the format YYYY-MM-DD", date)
			}
			a, err := newApp(cmd.Context(), "cli")
			if err != nil {
				return err
			}
			defer a.close()

			st, err := a.admin.DayStats(cmd.Context(), d)
			if err != nil {
				return err
			}
			printDayStats(cmd.OutOrStdout(), st)
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date of the game, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func printDayStats(out io.Writer, st adminuc.DayStats) {
	_, _ = fmt.Fprintf(out, "date:         %s (game #%d)\n", domain.FormatDate(st.Date), st.GameNumber)
	_, _ = fmt.Fprintf(out, "secret:       %s\n", st.Secret)
	_, _ = fmt.Fprintf(out, "ranking:      %d words (complete: %t)\n", st.RankingSize, st.Complete)
	_, _ = fmt.Fprintf(out, "clues:        %d\n", st.Clues)
	_, _ = fmt.Fprintf(out, "solvers:      %d\n", st.SolverCount)
}

func rankingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rankings",
		Short: "List committed rankings still held in the KV store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), "cli")
			if err != nil {
				return err
			}
			defer a.close()

			keys, err := a.rankings.Keys(cmd.Context())
			if err != nil {
				return err
			}
			for _, k := range keys {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

// repairer is what repair-rankings needs from the wired app.
type repairer interface {
	Secrets(ctx context.Context, includeFuture bool) ([]domain.Assignment, error)
	DayStats(ctx context.Context, date time.Time) (adminuc.DayStats, error)
	PreviewOn(ctx context.Context, candidate string, date time.Time, force bool) (adminuc.Preview, error)
	CommitOn(ctx context.Context, secret string, date time.Time, clues []string, force bool) error
}

type clueReader interface {
	Clues(ctx context.Context, date time.Time) ([]string, error)
}

func repairRankingsCmd() *cobra.Command {
	var dryRun bool
	var since string
	cmd := &cobra.Command{
		Use:   "repair-rankings",
		Short: "Rebuild missing or incomplete rankings of scheduled secrets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var from time.Time
			if since != "" {
				d, err := domain.ParseDate(since)
				if err != nil {
					return fmt.Errorf("bad date %q: should be of the format YYYY-MM-DD", since)
				}
				from = d
			}
			a, err := newApp(cmd.Context(), "cli")
			if err != nil {
				return err
			}
			defer a.close()

			repaired, err := repairRankings(cmd.Context(), a.admin, a.secrets, from, dryRun, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			a.logger.Info("Repair finished", zap.Int("repaired", repaired), zap.Bool("dry_run", dryRun))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only report what would be rebuilt")
	cmd.Flags().StringVar(&since, "since", "", "Skip dates before this one, YYYY-MM-DD")
	return cmd
}

func repairRankings(
	ctx context.Context, r repairer, clues clueReader, from time.Time, dryRun bool, out io.Writer,
) (int, error) {
	list, err := r.Secrets(ctx, true)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, as := range list {
		if as.Date.Before(from) {
			continue
		}
		st, err := r.DayStats(ctx, as.Date)
		if err != nil && !errors.Is(err, domain.ErrNoSecret) {
			return repaired, err
		}
		if st.Complete {
			continue
		}

		date := domain.FormatDate(as.Date)
		if dryRun {
			_, _ = fmt.Fprintf(out, "%s %s: %d words, would rebuild\n", date, as.Word, st.RankingSize)
			continue
		}

		dayClues, err := clues.Clues(ctx, as.Date)
		if err != nil {
			return repaired, err
		}
		// force: the date and word are already taken by this very assignment
		if _, err := r.PreviewOn(ctx, as.Word, as.Date, true); err != nil {
			return repaired, err
		}
		if err := r.CommitOn(ctx, as.Word, as.Date, dayClues, true); err != nil {
			return repaired, err
		}
		repaired++
		_, _ = fmt.Fprintf(out, "%s %s: rebuilt\n", date, as.Word)
	}
	return repaired, nil
}
