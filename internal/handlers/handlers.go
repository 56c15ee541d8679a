package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	domainerrors "foodgram/internal/errors"
	applog "foodgram/internal/log"
	"foodgram/internal/recipes"
	"foodgram/internal/relations"
	"foodgram/internal/shopping"
	"foodgram/internal/validation"
)

// Settings carries the recipe rules the handlers apply.
type Settings struct {
	MaxValue           int
	ShoppingListHeader string
}

var (
	sessionManager *scs.SessionManager
	database       *gorm.DB

	composer           *recipes.Composer
	catalog            *recipes.Catalog
	toggles            *relations.Service
	aggregator         *shopping.Aggregator
	payloads           *validation.Validator
	shoppingListHeader string
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, db *gorm.DB, settings Settings) {
	sessionManager = sm
	database = db
	shoppingListHeader = settings.ShoppingListHeader
	payloads = validation.New()

	if db == nil {
		composer, catalog, toggles, aggregator = nil, nil, nil, nil
		return
	}
	composer = recipes.NewComposer(db, settings.MaxValue)
	catalog = recipes.NewCatalog(db)
	toggles = relations.NewService(db)
	aggregator = shopping.NewAggregator(db)
}

func available(w http.ResponseWriter, r *http.Request) bool {
	if database == nil || catalog == nil {
		applog.Debug(r.Context(), "request without database", "path", r.URL.Path)
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeError renders err as {"code", "error", "details"} with the status of
// its domain code. Unknown errors are reported as INTERNAL.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		domainErr = domainerrors.Internal("internal error", err)
	}
	status := domainErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		applog.Error(r.Context(), "request failed", "error", err, "path", r.URL.Path)
	} else {
		applog.Debug(r.Context(), "request rejected", "code", domainErr.Code, "path", r.URL.Path)
	}
	writeJSON(w, status, domainErr)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, 10<<20)).Decode(dst); err != nil {
		return domainerrors.Validation("invalid JSON payload", map[string]string{"body": err.Error()})
	}
	return nil
}

// pathID reads a positive integer URL parameter. Malformed ids cannot name
// an existing row and are reported as NOT_FOUND.
func pathID(r *http.Request, name string) (uint, error) {
	value, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || value == 0 {
		return 0, domainerrors.NotFound("not found")
	}
	return uint(value), nil
}
