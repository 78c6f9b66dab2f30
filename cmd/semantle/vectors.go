package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semantle/internal/domain/vector"
	vectorrepo "github.com/kailas-cloud/semantle/internal/repository/vectors"
	"github.com/kailas-cloud/semantle/internal/vocab"
)

func importVectorsCmd() *cobra.Command {
	var path, filterName string
	cmd := &cobra.Command{
		Use:   "import-vectors",
		Short: "Load a word2vec text file into the KV store",
		Long: "Replaces the stored vocabulary with the words of a word2vec text file " +
			"(\"word v1 ... vD\" per line, optional \"count dim\" header). Word order is kept.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), "cli")
			if err != nil {
				return err
			}
			defer a.close()

			if path == "" {
				path = a.cfg.Model.Path
			}
			if path == "" {
				return fmt.Errorf("no vectors file: pass --path or set model.path")
			}
			if filterName == "" {
				filterName = a.cfg.Model.Filter
			}
			filter, err := vector.FilterByName(filterName)
			if err != nil {
				return err
			}

			v, err := vocab.LoadFile(path, filter)
			if err != nil {
				return err
			}
			a.logger.Info("Vectors parsed", zap.String("path", path), zap.Int("words", v.Len()), zap.Int("dim", v.Dim()))

			repo := vectorrepo.New(a.kv, a.cfg.Model.ImportBatchSize, a.logger)
			n, err := repo.Import(cmd.Context(), v.Entries())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d words\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "word2vec text file (default: model.path)")
	cmd.Flags().StringVar(&filterName, "filter", "", "Word filter: hebrew or any (default: model.filter)")
	return cmd
}
