package suggest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/option"
)

// KindParam is the route parameter (or query parameter when the route has
// none) naming the autocomplete kind.
const KindParam = "kind"

type payload struct {
	Data []option.Option `json:"data"`
}

// Handler serves suggestions from source as {"data":[...]}, the shape
// HTTPSource reads by default. Mount it on a chi route carrying a {kind}
// parameter, e.g. /api/options/{kind}; the typed text arrives as ?q=.
func Handler(source choice.Fetcher, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = discardLogger()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		kind := strings.TrimSpace(chi.URLParam(r, KindParam))
		if kind == "" {
			kind = strings.TrimSpace(r.URL.Query().Get(KindParam))
		}
		if source == nil || kind == "" {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		results, err := source.Fetch(r.Context(), kind, r.URL.Query().Get("q"))
		switch {
		case errors.Is(err, ErrUnknownKind):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		case err != nil:
			logger.Warn("suggest: fetch failed", "kind", kind, "error", err)
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}
		if results == nil {
			results = []option.Option{}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		if err := json.NewEncoder(w).Encode(payload{Data: results}); err != nil {
			logger.Debug("suggest: write response", "error", err)
		}
	})
}
