package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/yhlin/chipmon/internal/enrich"
	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/internal/watchlist"
	"github.com/yhlin/chipmon/pkg/logger"
)

// Runner runs one enrichment batch.
type Runner interface {
	Run(ctx context.Context, target time.Time, list *watchlist.Watchlist) ([]enrich.Record, error)
}

// EnrichHandler handles enrichment API endpoints
type EnrichHandler struct {
	runner Runner
	list   *watchlist.Watchlist
	store  *RunStore
	logger *logger.Logger
}

// NewEnrichHandler creates a new enrichment handler
func NewEnrichHandler(runner Runner, list *watchlist.Watchlist, store *RunStore, log *logger.Logger) *EnrichHandler {
	return &EnrichHandler{
		runner: runner,
		list:   list,
		store:  store,
		logger: log,
	}
}

// TriggerRequest represents an enrichment trigger request
type TriggerRequest struct {
	Date string `json:"date"` // Optional: YYYY-MM-DD, defaults to the last trading day
}

// TriggerResponse represents an enrichment trigger response
type TriggerResponse struct {
	Status  string `json:"status"`
	Date    string `json:"date"`
	Records int    `json:"records"`
}

// Trigger runs enrichment for a date and stores the result
// POST /api/enrich/run
func (h *EnrichHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req TriggerRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	target := market.LastTradingDay(time.Now())
	if req.Date != "" {
		parsed, err := time.Parse(market.ISOLayout, req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date format (expected YYYY-MM-DD)")
			return
		}
		target = parsed
	}

	h.logger.WithField("date", target.Format(market.ISOLayout)).Info("Enrichment triggered via API")

	records, err := h.runner.Run(ctx, target, h.list)
	if err != nil {
		h.logger.WithError(err).Error("Enrichment run failed")
		respondError(w, http.StatusInternalServerError, "Enrichment run failed")
		return
	}

	dateKey := target.Format(market.ISOLayout)
	h.store.Put(dateKey, records)

	respondJSON(w, http.StatusOK, TriggerResponse{
		Status:  "ok",
		Date:    dateKey,
		Records: len(records),
	})
}

// RunResponse represents one stored run
type RunResponse struct {
	Date    string          `json:"date"`
	Records []enrich.Record `json:"records"`
}

// GetRun returns a stored run by date
// GET /api/enrich/runs/{date}
func (h *EnrichHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]

	records, ok := h.store.Get(date)
	if !ok {
		respondError(w, http.StatusNotFound, "No run for date "+date)
		return
	}

	respondJSON(w, http.StatusOK, RunResponse{Date: date, Records: records})
}

// GetLatest returns the most recent stored run
// GET /api/enrich/latest
func (h *EnrichHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	date, records, ok := h.store.Latest()
	if !ok {
		respondError(w, http.StatusNotFound, "No runs stored yet")
		return
	}

	respondJSON(w, http.StatusOK, RunResponse{Date: date, Records: records})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
