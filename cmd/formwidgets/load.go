package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formwidgets/components/timezones"
	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/model"
	rendertemplate "github.com/goliatone/go-formwidgets/pkg/render/template"
	"github.com/goliatone/go-formwidgets/pkg/schema"
	"github.com/goliatone/go-formwidgets/pkg/suggest"
	"github.com/goliatone/go-formwidgets/pkg/uischema"
)

// resolveForm loads the form named by the flags, or the built-in demo form
// when none is given.
func resolveForm(ctx context.Context, flags formFlags) (model.Form, error) {
	if strings.TrimSpace(flags.form) == "" {
		return demoForm(), nil
	}
	return loadForm(ctx, flags.form, flags.component)
}

// loadForm reads a form definition. OpenAPI documents (detected by their
// top-level "openapi" key) need the component schema name; anything else is
// decoded as a model.Form.
func loadForm(ctx context.Context, path, component string) (model.Form, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Form{}, fmt.Errorf("read form: %w", err)
	}

	var head map[string]any
	if err := yaml.Unmarshal(raw, &head); err != nil {
		return model.Form{}, fmt.Errorf("parse form %s: %w", path, err)
	}
	if _, ok := head["openapi"]; ok {
		if component == "" {
			return model.Form{}, fmt.Errorf("%s is an OpenAPI document; pass --component", path)
		}
		return schema.LoadForm(ctx, raw, component, schema.LoadOptions{})
	}

	var form model.Form
	if err := yaml.Unmarshal(raw, &form); err != nil {
		return model.Form{}, fmt.Errorf("decode form %s: %w", path, err)
	}
	if form.ID == "" {
		form.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return form, nil
}

func loadValues(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode values %s: %w", path, err)
	}
	return values, nil
}

func loadUISchemas(dir string) (*uischema.Store, error) {
	if dir == "" {
		return nil, nil
	}
	store, err := uischema.LoadFS(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("load ui schemas from %s: %w", dir, err)
	}
	return store, nil
}

type themeAssets struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

type themeVariant struct {
	Tokens    map[string]string `yaml:"tokens"`
	Templates map[string]string `yaml:"templates"`
	Assets    themeAssets       `yaml:"assets"`
}

type themeFile struct {
	Name      string                  `yaml:"name"`
	Version   string                  `yaml:"version"`
	Tokens    map[string]string       `yaml:"tokens"`
	Templates map[string]string       `yaml:"templates"`
	Assets    themeAssets             `yaml:"assets"`
	Variants  map[string]themeVariant `yaml:"variants"`
}

// loadTheme reads a go-theme manifest from YAML/JSON and flattens the
// selected variant into renderer configuration.
func loadTheme(path, variant string) (*theme.RendererConfig, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme: %w", err)
	}
	var file themeFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode theme %s: %w", path, err)
	}

	manifest := &theme.Manifest{
		Name:      file.Name,
		Version:   file.Version,
		Tokens:    file.Tokens,
		Templates: file.Templates,
		Assets:    theme.Assets{Prefix: file.Assets.Prefix, Files: file.Assets.Files},
	}
	if len(file.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(file.Variants))
		for name, v := range file.Variants {
			manifest.Variants[name] = theme.Variant{
				Tokens:    v.Tokens,
				Templates: v.Templates,
				Assets:    theme.Assets{Prefix: v.Assets.Prefix, Files: v.Assets.Files},
			}
		}
	}
	registry := theme.NewRegistry()
	if err := registry.Register(manifest); err != nil {
		return nil, fmt.Errorf("register theme %s: %w", path, err)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("theme %q has no variant %q", manifest.Name, variant)
		}
	}

	selection := &theme.Selection{Theme: manifest.Name, Variant: variant, Manifest: manifest}
	return rendertemplate.RendererConfigFromSelection(selection, nil), nil
}

// buildFetcher routes timezone fields to the embedded zone list and every
// other kind to --suggest-url, optionally behind a redis cache. The returned
// func releases the redis client.
func buildFetcher(flags sourceFlags, logger *slog.Logger) (choice.Fetcher, func(), error) {
	router := suggest.NewRouter()
	if err := timezones.New(timezones.WithLabel(timezones.OffsetLabel)).RegisterSource(router); err != nil {
		return nil, nil, err
	}
	if flags.suggestURL != "" {
		remote, err := suggest.NewHTTPSource(flags.suggestURL, suggest.WithHTTPLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		router.SetFallback(remote)
	}

	if flags.redisAddr == "" {
		return router, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: flags.redisAddr})
	cached, err := suggest.NewCachedSource(router, client, suggest.WithCacheLogger(logger))
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return cached, func() { _ = client.Close() }, nil
}
