package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwidgets/components/timezones"
	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/option"
	"github.com/goliatone/go-formwidgets/pkg/render"
	"github.com/goliatone/go-formwidgets/pkg/renderers/vanilla"
	"github.com/goliatone/go-formwidgets/pkg/suggest"
	"github.com/goliatone/go-formwidgets/pkg/uischema"
	"github.com/goliatone/go-formwidgets/pkg/widgets"
)

const shutdownTimeout = 5 * time.Second

type serveFlags struct {
	formFlags
	sourceFlags
	addr string
}

func newServeCmd(a *app) *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a form over HTTP with live suggestions",
		Long: `Serves the form at /, accepts submissions on POST /, answers autocomplete
lookups on /api/options/{kind} and exposes suggestion metrics on /metrics.`,
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

			handler, err := newServer(serverConfig{
				form:     form,
				values:   values,
				store:    store,
				fetcher:  fetcher,
				registry: prometheus.NewRegistry(),
				logger:   a.logger,
			})
			if err != nil {
				return err
			}
			return listen(ctx, a.logger, &http.Server{
				Addr:              flags.addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			})
		},
	}
	flags.formFlags.bind(cmd)
	flags.sourceFlags.bind(cmd)
	cmd.Flags().StringVar(&flags.addr, "addr", ":8080", "Address to listen on")
	return cmd
}

// listen runs srv until it fails, ctx ends or the process is signalled,
// then drains outstanding requests.
func listen(ctx context.Context, logger *slog.Logger, srv *http.Server) error {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("serving form", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case sig := <-shutdown:
		logger.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("shutting down", "reason", ctx.Err())
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		logger.Warn("graceful shutdown incomplete", "timeout", shutdownTimeout, "error", err)
		return srv.Close()
	}
	return nil
}

type serverConfig struct {
	form     model.Form
	values   map[string]any
	store    *uischema.Store
	fetcher  choice.Fetcher
	registry *prometheus.Registry
	logger   *slog.Logger
}

type formServer struct {
	cfg      serverConfig
	renderer *vanilla.Renderer
	widgets  *widgets.Registry
}

func newServer(cfg serverConfig) (http.Handler, error) {
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.registry == nil {
		cfg.registry = prometheus.NewRegistry()
	}
	observer, err := choice.NewPrometheusObserver(cfg.registry)
	if err != nil {
		return nil, err
	}
	registry := widgets.NewRegistry()
	renderer, err := vanilla.New(
		vanilla.WithFetcher(cfg.fetcher),
		vanilla.WithObserver(observer),
		vanilla.WithUISchemas(cfg.store),
		vanilla.WithWidgets(registry),
		vanilla.WithLogger(cfg.logger),
	)
	if err != nil {
		return nil, err
	}
	s := &formServer{cfg: cfg, renderer: renderer, widgets: registry}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.show)
	r.Post("/", s.submit)
	r.Method(http.MethodGet, "/api/options/{"+suggest.KindParam+"}", suggest.Handler(cfg.fetcher, cfg.logger))
	if _, err := timezones.New().RegisterRoutes(r, ""); err != nil {
		return nil, err
	}
	r.Handle("/metrics", promhttp.HandlerFor(cfg.registry, promhttp.HandlerOpts{}))
	r.Handle("/formwidgets/*", http.StripPrefix("/formwidgets/", http.FileServer(http.FS(vanilla.AssetsFS()))))
	return r, nil
}

func (s *formServer) show(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, s.cfg.values, nil)
}

// submit maps the posted controls back to field values: select indices go
// through the select resolver, autocomplete text is matched against the
// offered options, objects arrive JSON encoded and scalars are
// coerced to their schema type. Invalid entries re-render the form.
func (s *formServer) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	form, err := render.Prepare(s.cfg.form, s.decorators()...)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	values := map[string]any{}
	problems := map[string][]string{}
	for _, field := range form.Fields {
		posted, ok := r.PostForm[render.FieldID(field.Name)]
		if !ok {
			continue
		}
		value, err := s.decode(r.Context(), form, field, posted)
		if err != nil {
			problems[field.Name] = append(problems[field.Name], err.Error())
			continue
		}
		if value != nil {
			values[field.Name] = value
		}
	}
	for _, field := range form.Fields {
		if !field.Required || len(problems[field.Name]) > 0 {
			continue
		}
		if value, ok := values[field.Name]; !ok || isBlank(value) {
			problems[field.Name] = append(problems[field.Name], "is required")
		}
	}

	if len(problems) > 0 {
		s.cfg.logger.Debug("rejected submission", "form", form.ID, "fields", len(problems))
		s.write(w, r, http.StatusUnprocessableEntity, values, problems)
		return
	}
	s.cfg.logger.Info("accepted submission", "form", form.ID, "request_id", middleware.GetReqID(r.Context()))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": values})
}

func (s *formServer) decode(ctx context.Context, form model.Form, field model.Field, posted []string) (any, error) {
	switch field.Widget {
	case widgets.WidgetSelect:
		props, err := render.WidgetProps(form, field, render.RenderOptions{}, s.defaults())
		if err != nil {
			return nil, err
		}
		sel := choice.NewSelect(props, model.Handlers{})
		if !props.Multiple {
			return sel.Change(posted[0]), nil
		}
		picked, _ := sel.Change(posted).([]any)
		out := make([]any, 0, len(picked))
		for _, value := range picked {
			if value != nil {
				out = append(out, value)
			}
		}
		return out, nil
	case widgets.WidgetAutocomplete:
		props, err := render.WidgetProps(form, field, render.RenderOptions{}, s.defaults())
		if err != nil {
			return nil, err
		}
		return s.decodeAutocomplete(ctx, props, posted[0])
	case widgets.WidgetObject:
		if strings.TrimSpace(posted[0]) == "" {
			return nil, nil
		}
		var nested map[string]any
		if err := json.Unmarshal([]byte(posted[0]), &nested); err != nil {
			return nil, errors.New("must be a JSON object")
		}
		return nested, nil
	}

	if field.Multiple() {
		out := make([]any, 0, len(posted))
		for _, entry := range posted {
			for _, part := range strings.Split(entry, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
		return out, nil
	}
	text := strings.TrimSpace(posted[0])
	if text == "" {
		return nil, nil
	}
	switch field.Schema.Type {
	case model.FieldTypeInteger:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, errors.New("must be a whole number")
		}
		return n, nil
	case model.FieldTypeNumber:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, errors.New("must be a number")
		}
		return n, nil
	case model.FieldTypeBoolean:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, errors.New("must be true or false")
		}
		return b, nil
	}
	return text, nil
}

// decodeAutocomplete maps the text an autocomplete input posts back (the
// rendered display label, a bare value or free text) to the domain value.
func (s *formServer) decodeAutocomplete(ctx context.Context, props model.WidgetProps, posted string) (any, error) {
	text := strings.TrimSpace(posted)
	if text == "" {
		return nil, nil
	}
	opts := []choice.AutocompleteOption{choice.WithContext(ctx), choice.WithLogger(s.cfg.logger)}
	if s.cfg.fetcher != nil {
		opts = append(opts, choice.WithFetcher(s.cfg.fetcher))
	}
	ac := choice.NewAutocomplete(props, model.Handlers{}, opts...)
	defer ac.Close()

	idx, disabled := ac.Match(text)
	if idx == option.NoIndex && !props.Options.HasEnumOptions() && s.cfg.fetcher != nil {
		if err := ac.Input(text); err != nil {
			return nil, err
		}
		ac.Wait()
		idx, disabled = ac.Match(text)
	}
	switch {
	case disabled:
		return nil, errors.New("is not available")
	case idx != option.NoIndex:
		return ac.Select(idx), nil
	case ac.FreeInput():
		return text, nil
	}
	return nil, errors.New("is not one of the offered options")
}

func (s *formServer) write(w http.ResponseWriter, r *http.Request, status int, values map[string]any, problems map[string][]string) {
	html, err := s.renderer.Render(r.Context(), s.cfg.form, render.RenderOptions{
		Values: values,
		Errors: problems,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(html)
}

func (s *formServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.cfg.logger.Error("render form", "error", err, "request_id", middleware.GetReqID(r.Context()))
	http.Error(w, "form unavailable", http.StatusInternalServerError)
}

func (s *formServer) decorators() []model.Decorator {
	if s.cfg.store != nil {
		return []model.Decorator{s.cfg.store, s.widgets}
	}
	return []model.Decorator{s.widgets}
}

func (s *formServer) defaults() map[string]any {
	return render.Defaults(s.cfg.store.Defaults())
}

func isBlank(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case []any:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	}
	return false
}
