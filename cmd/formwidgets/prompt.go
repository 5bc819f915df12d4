package main

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwidgets/pkg/render"
	"github.com/goliatone/go-formwidgets/pkg/renderers/tui"
)

type promptFlags struct {
	formFlags
	sourceFlags
	format   string
	attempts int
}

func newPromptCmd(a *app) *cobra.Command {
	flags := &promptFlags{}
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Fill a form interactively in the terminal",
		Example: `  formwidgets prompt --form shipping.yaml --format pretty
  formwidgets prompt --suggest-url https://example.com/options/{kind}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			form, err := resolveForm(ctx, flags.formFlags)
			if err != nil {
				return err
			}
			values, err := loadValues(flags.values)
			if err != nil {
				return err
			}
			store, err := loadUISchemas(flags.uiDir)
			if err != nil {
				return err
			}
			fetcher, cleanup, err := buildFetcher(flags.sourceFlags, a.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			renderer, err := tui.New(
				tui.WithOutputFormat(tui.OutputFormat(flags.format)),
				tui.WithFetcher(fetcher),
				tui.WithUISchemas(store),
				tui.WithMaxAttempts(flags.attempts),
				tui.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}
			out, err := renderer.Render(ctx, form, render.RenderOptions{Values: values})
			if err != nil {
				return err
			}
			if !bytes.HasSuffix(out, []byte("\n")) {
				out = append(out, '\n')
			}
			_, err = a.out.Write(out)
			return err
		},
	}
	flags.formFlags.bind(cmd)
	flags.sourceFlags.bind(cmd)
	cmd.Flags().StringVar(&flags.format, "format", string(tui.OutputFormatJSON), "Output format: json, form or pretty")
	cmd.Flags().IntVar(&flags.attempts, "attempts", 5, "Re-prompts allowed per field before giving up")
	return cmd
}
