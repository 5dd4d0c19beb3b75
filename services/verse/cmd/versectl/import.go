package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bibleapi/pkg/store"
	"bibleapi/services/verse/internal/importer"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var (
		meta  importer.Metadata
		batch int
	)
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import Zefania XML seeds (plain, .gz or .xz), replacing existing translations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 && meta.Identifier != "" {
				return errors.New("--identifier applies to a single file")
			}
			st, err := opts.openStore(store.WithAutoMigrate(), store.WithBatchSize(batch))
			if err != nil {
				return err
			}
			defer st.Close()

			imp := importer.New(st)
			for _, path := range args {
				res, err := imp.ImportFile(cmd.Context(), path, meta)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d verses in %d books (%s)\n",
					res.Translation.Identifier, res.Verses, res.Books, res.Translation.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&meta.Identifier, "identifier", "", "translation identifier, overrides the seed")
	cmd.Flags().StringVar(&meta.Name, "name", "", "translation name, overrides the seed")
	cmd.Flags().StringVar(&meta.Language, "language", "", "language name, e.g. English")
	cmd.Flags().StringVar(&meta.LanguageCode, "language-code", "", "ISO 639 language code, e.g. eng")
	cmd.Flags().StringVar(&meta.License, "license", "", "license note shown with each passage")
	cmd.Flags().IntVar(&batch, "batch", 500, "verse rows per insert statement")
	return cmd
}
