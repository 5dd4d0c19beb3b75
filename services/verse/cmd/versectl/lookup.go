package main

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"bibleapi/services/verse/internal/app"
)

type queryFlags struct {
	translation  string
	verseNumbers bool
}

func (f *queryFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.translation, "translation", "t", "", "translation identifier (default from config)")
	cmd.Flags().BoolVar(&f.verseNumbers, "verse-numbers", false, "prefix each verse with its number")
}

func newLookupCmd(opts *rootOptions) *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:     "lookup <reference>",
		Short:   "Resolve a reference and print the passage as JSON",
		Example: "  versectl lookup john 3:16-18 --translation WEB",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, app.Request{
				Reference:    strings.Join(args, " "),
				Translation:  flags.translation,
				VerseNumbers: flags.verseNumbers,
			}, 0)
		},
	}
	flags.bind(cmd)
	return cmd
}

func newRandomCmd(opts *rootOptions) *cobra.Command {
	var (
		flags queryFlags
		seed  uint64
	)
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Print a random verse as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, opts, app.Request{
				Translation:  flags.translation,
				VerseNumbers: flags.verseNumbers,
				RandomSet:    true,
				Random:       app.RandomVerse,
			}, seed)
		},
	}
	flags.bind(cmd)
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for reproducible draws (0 draws from the global source)")
	return cmd
}

// runQuery resolves req against the configured store. Not-found results
// become command errors carrying the service's error message.
func runQuery(cmd *cobra.Command, opts *rootOptions, req app.Request, seed uint64) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	cfg := app.Config{Store: st, DefaultTranslation: opts.defaultTranslation()}
	if seed != 0 {
		cfg.Rand = app.NewSeededRand(seed)
	}
	engine, err := app.New(cfg)
	if err != nil {
		st.Close()
		return err
	}
	defer st.Close()

	res, err := engine.Resolve(cmd.Context(), req)
	if err != nil {
		return err
	}
	found, ok := res.(app.Found)
	if !ok {
		msg, _ := app.ErrorMessage(res)
		return errors.New(msg)
	}
	return printJSON(cmd.OutOrStdout(), found.Passage)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
