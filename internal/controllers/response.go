package controllers

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"zoblogs/internal/protocol"
	"zoblogs/internal/providers"
	"zoblogs/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type errorResponse struct {
	Error    string   `json:"error"`
	Kind     string   `json:"kind,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service and protocol errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, logger providers.Logger, r *http.Request, err error) {
	var confirm *services.ConfirmationError
	var perr *protocol.Error

	switch {
	case errors.As(err, &confirm):
		writeJSON(w, http.StatusConflict, errorResponse{Error: services.ErrConfirmationRequired.Error(), Warnings: confirm.Warnings})
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrAmountOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrCoinNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrCreationDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &perr):
		logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: perr.Kind.Message(), Kind: string(perr.Kind)})
	case errors.Is(err, services.ErrUpstream):
		logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, err)
		writeError(w, http.StatusBadGateway, "Upstream service unavailable")
	default:
		logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	return json.NewDecoder(r.Body).Decode(dst)
}

// serveFromCacheOrCompute answers from cache or runs compute. A result is
// cached only when compute marks it complete and no invalidation happened
// while it ran.
func serveFromCacheOrCompute(w http.ResponseWriter, cache providers.CacheProviderInterface, cacheKey string, compute func() (any, bool, error)) {
	if data, ok := cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	gen := cache.Generation()
	result, complete, err := compute()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if complete {
		cache.SetIfGeneration(cacheKey, gson, gen)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}
