package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwidgets/pkg/orchestrator"
	"github.com/goliatone/go-formwidgets/pkg/render"
	"github.com/goliatone/go-formwidgets/pkg/renderers/vanilla"
)

type renderFlags struct {
	formFlags
	sourceFlags
	theme          string
	variant        string
	templates      string
	output         string
	preset         string
	noInlineStyles bool
}

func newRenderCmd(a *app) *cobra.Command {
	flags := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a form as HTML",
		Example: `  formwidgets render --form shipping.yaml --ui-dir ui/ --output shipping.html
  formwidgets render --form api.yaml --component Order --theme acme.yaml --variant dark`,
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
			themeCfg, err := loadTheme(flags.theme, flags.variant)
			if err != nil {
				return err
			}
			fetcher, cleanup, err := buildFetcher(flags.sourceFlags, a.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			renderer, err := vanilla.New(
				vanilla.WithFetcher(fetcher),
				vanilla.WithUISchemas(store),
				vanilla.WithTemplatesDir(flags.templates),
				vanilla.WithInlineStyles(!flags.noInlineStyles),
				vanilla.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}
			registry := render.NewRegistry()
			registry.MustRegister(renderer)
			options := []orchestrator.Option{
				orchestrator.WithRegistry(registry),
				orchestrator.WithLogger(a.logger),
			}
			if flags.preset != "" {
				preset, err := orchestrator.NewPresetTransformerFromFS(os.DirFS(filepath.Dir(flags.preset)), filepath.Base(flags.preset))
				if err != nil {
					return err
				}
				options = append(options, orchestrator.WithTransformer(preset))
			}

			html, err := orchestrator.New(options...).Generate(ctx, orchestrator.Request{
				Form: &form,
				RenderOptions: render.RenderOptions{
					Values: values,
					Theme:  themeCfg,
				},
			})
			if err != nil {
				return err
			}

			if flags.output == "" || flags.output == "-" {
				_, err = a.out.Write(html)
				return err
			}
			if err := os.WriteFile(flags.output, html, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", flags.output, err)
			}
			a.logger.Info("rendered form", "form", form.ID, "output", flags.output, "bytes", len(html))
			return nil
		},
	}
	flags.formFlags.bind(cmd)
	flags.sourceFlags.bind(cmd)
	cmd.Flags().StringVar(&flags.theme, "theme", "", "Theme manifest (YAML/JSON)")
	cmd.Flags().StringVar(&flags.variant, "variant", "", "Theme variant")
	cmd.Flags().StringVar(&flags.templates, "templates", "", "Directory of override templates")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write HTML to this file instead of stdout")
	cmd.Flags().StringVar(&flags.preset, "preset", "", "YAML/JSON preset that relabels fields and patches ui hints")
	cmd.Flags().BoolVar(&flags.noInlineStyles, "no-inline-styles", false, "Omit the embedded stylesheet")
	return cmd
}
