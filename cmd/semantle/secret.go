package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/semantle/internal/domain"
	adminuc "github.com/kailas-cloud/semantle/internal/usecase/admin"
)

// previewBands are the rank offsets printed when reviewing a candidate.
var previewBands = []int{1, 50, 100, 300, 550, 750}

type setSecretOptions struct {
	secret    string
	date      string
	clues     []string
	force     bool
	yes       bool
	topSample int
}

func setSecretCmd() *cobra.Command {
	var opts setSecretOptions
	cmd := &cobra.Command{
		Use:   "set-secret",
		Short: "Preview and schedule a secret word",
		Long: "Builds the proximity ranking of a secret, prints a sample of it and, once confirmed, " +
			"stores the ranking and assigns the secret. Without --date the first date with no secret is used. " +
			"Without --secret a random unused word is proposed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), "cli")
			if err != nil {
				return err
			}
			defer a.close()
			return runSetSecret(cmd.Context(), a.admin, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&opts.secret, "secret", "s", "", "Secret to set (default: random unused word)")
	cmd.Flags().StringVarP(&opts.date, "date", "d", "", "Date of the secret, YYYY-MM-DD (default: next open date)")
	cmd.Flags().StringSliceVarP(&opts.clues, "clues", "c", nil, "Hot clues, comma separated")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Allow rewriting dates or reusing secrets. Use with caution!")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Commit without asking for confirmation")
	cmd.Flags().IntVar(&opts.topSample, "top-sample", adminuc.DefaultTopSample, "Random secrets are drawn from the n most frequent words")
	return cmd
}

// scheduler is the admin surface set-secret drives.
type scheduler interface {
	NextDate(ctx context.Context) (time.Time, error)
	PreviewOn(ctx context.Context, candidate string, date time.Time, force bool) (adminuc.Preview, error)
	CommitOn(ctx context.Context, secret string, date time.Time, clues []string, force bool) error
	Candidates(ctx context.Context, n, topSample int) ([]string, error)
}

func runSetSecret(ctx context.Context, s scheduler, opts setSecretOptions, in io.Reader, out io.Writer) error {
	var date time.Time
	var err error
	if opts.date != "" {
		date, err = domain.ParseDate(opts.date)
		if err != nil {
			return fmt.Errorf("bad date %q: should be of the format YYYY-MM-DD", opts.date)
		}
	} else {
		date, err = s.NextDate(ctx)
		if err != nil {
			return err
		}
	}

	secret := opts.secret
	if secret == "" {
		picked, err := s.Candidates(ctx, 1, opts.topSample)
		if err != nil {
			return fmt.Errorf("pick random secret: %w", err)
		}
		if len(picked) == 0 {
			return fmt.Errorf("no unused words among the top %d", opts.topSample)
		}
		secret = picked[0]
	}

	p, err := s.PreviewOn(ctx, secret, date, opts.force)
	if err != nil {
		return err
	}
	printPreview(out, secret, p)

	if !opts.yes && !confirm(in, out, "Populate? [y/N] > ") {
		_, _ = fmt.Fprintln(out, "Aborted.")
		return nil
	}
	if err := s.CommitOn(ctx, secret, date, opts.clues, opts.force); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Set %q with clues %q on %s (game #%d)\n",
		secret, opts.clues, domain.FormatDate(p.Date), p.GameNumber)
	return nil
}

func printPreview(out io.Writer, secret string, p adminuc.Preview) {
	_, _ = fmt.Fprintf(out, "%s for %s (game #%d)\n", secret, domain.FormatDate(p.Date), p.GameNumber)
	if len(p.Words) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out, strings.Join(lo.Slice(p.Words, 1, 11), ", "))
	for _, start := range previewBands {
		for i := start; i < start+10 && i < len(p.Words); i++ {
			_, _ = fmt.Fprintf(out, "%d: %s\n", i, p.Words[i])
		}
	}
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
