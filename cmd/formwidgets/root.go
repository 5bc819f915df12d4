package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// app carries state shared by every subcommand.
type app struct {
	out     io.Writer
	errOut  io.Writer
	verbose bool
	logger  *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{
		out:    out,
		errOut: errOut,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	root := &cobra.Command{
		Use:   "formwidgets",
		Short: "Render and fill schema-driven forms",
		Long: `formwidgets renders forms described by a schema and UI schema as HTML,
prompts for them in the terminal, or serves them with live suggestions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newRenderCmd(a),
		newPromptCmd(a),
		newServeCmd(a),
	)
	return root
}

// sourceFlags configure where autocomplete suggestions come from.
type sourceFlags struct {
	suggestURL string
	redisAddr  string
}

func (f *sourceFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.suggestURL, "suggest-url", "", "HTTP endpoint for suggestions; {kind} is replaced by the autocomplete type")
	cmd.Flags().StringVar(&f.redisAddr, "redis", "", "Redis address used to cache suggestions")
}

// formFlags locate the form definition and its UI schema.
type formFlags struct {
	form      string
	component string
	uiDir     string
	values    string
}

func (f *formFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.form, "form", "f", "", "Form definition (YAML/JSON form or OpenAPI document)")
	cmd.Flags().StringVarP(&f.component, "component", "c", "", "OpenAPI component schema to build the form from")
	cmd.Flags().StringVar(&f.uiDir, "ui-dir", "", "Directory of UI schema documents")
	cmd.Flags().StringVar(&f.values, "values", "", "YAML/JSON file with prefilled values")
}
