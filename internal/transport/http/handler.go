package httptransport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dataguard/internal/audit"
	"dataguard/internal/domain"
	"dataguard/internal/pipeline"
	"dataguard/internal/quality"
	"dataguard/internal/storage"
)

// Handler is the thin HTTP layer over the quality core: dataset ingestion in,
// quality reports and the flag audit trail out. Report rendering to HTML/PDF
// belongs to external consumers of these endpoints.
type Handler struct {
	store      storage.DatasetStore
	trail      *audit.Trail
	aggregator *quality.Aggregator
	pipeline   *pipeline.Pipeline
	logger     *slog.Logger
}

func NewHandler(
	store storage.DatasetStore,
	trail *audit.Trail,
	aggregator *quality.Aggregator,
	pl *pipeline.Pipeline,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		store:      store,
		trail:      trail,
		aggregator: aggregator,
		pipeline:   pl,
		logger:     logger,
	}
}

// ingestRequest is a dataset already parsed into typed records; the core
// never reads raw files.
type ingestRequest struct {
	Source     string           `json:"source"`
	IngestedAt time.Time        `json:"ingested_at"`
	Records    []map[string]any `json:"records"`
}

// HandleIngest accepts one parsed dataset version for a domain.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	d := domain.Domain(chi.URLParam(r, "domain"))
	if !d.Valid() {
		writeError(w, http.StatusNotFound, "unknown domain")
		return
	}
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed dataset payload")
		return
	}
	if req.IngestedAt.IsZero() {
		req.IngestedAt = time.Now()
	}

	records := make([]*domain.Record, 0, len(req.Records))
	for i, fields := range req.Records {
		records = append(records, domain.NewRecord(d, i, req.IngestedAt, fields))
	}
	ds := domain.NewDataset(d, req.Source, req.IngestedAt, records)

	if err := h.store.Put(r.Context(), ds); err != nil {
		h.logger.ErrorContext(r.Context(), "dataset ingest failed", "domain", d, "error", err)
		writeError(w, http.StatusInternalServerError, "store failure")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"domain":      d,
		"version":     ds.Version(),
		"records":     len(ds.Records),
		"ingested_at": ds.IngestedAt,
	})
}

// HandleRun executes a full pipeline pass over the latest version of every
// ingested domain and persists the finalized datasets.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	datasets := make(map[domain.Domain]*domain.Dataset)
	for _, d := range []domain.Domain{domain.DomainCustomer, domain.DomainProduct, domain.DomainSale, domain.DomainLogistics} {
		ds, err := h.store.Latest(ctx, d)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			h.logger.ErrorContext(ctx, "load dataset failed", "domain", d, "error", err)
			writeError(w, http.StatusInternalServerError, "store failure")
			return
		}
		datasets[d] = ds
	}
	if len(datasets) == 0 {
		writeError(w, http.StatusConflict, "no datasets ingested")
		return
	}

	result, err := h.pipeline.Run(ctx, datasets)
	if err != nil {
		h.logger.ErrorContext(ctx, "pipeline run failed", "error", err)
		writeError(w, http.StatusInternalServerError, "pipeline failure")
		return
	}

	for _, ds := range result.Datasets {
		if err := h.store.Put(ctx, ds); err != nil {
			h.logger.ErrorContext(ctx, "persist finalized dataset failed", "domain", ds.Domain, "error", err)
			writeError(w, http.StatusInternalServerError, "store failure")
			return
		}
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleReport recomputes the consolidated report from the latest datasets.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	datasets := make(map[domain.Domain]*domain.Dataset)
	for _, d := range []domain.Domain{domain.DomainCustomer, domain.DomainProduct, domain.DomainSale, domain.DomainLogistics} {
		ds, err := h.store.Latest(ctx, d)
		if err != nil {
			continue
		}
		datasets[d] = ds
	}
	writeJSON(w, http.StatusOK, h.aggregator.Compile(datasets))
}

// HandleDomainReport recomputes metrics for one domain's latest dataset.
func (h *Handler) HandleDomainReport(w http.ResponseWriter, r *http.Request) {
	d := domain.Domain(chi.URLParam(r, "domain"))
	if !d.Valid() {
		writeError(w, http.StatusNotFound, "unknown domain")
		return
	}
	ds, err := h.store.Latest(r.Context(), d)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no dataset for domain")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store failure")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version": ds.Version(),
		"metrics": h.aggregator.Aggregate(ds),
	})
}

// HandleFlags exposes the append-only audit trail for one domain.
func (h *Handler) HandleFlags(w http.ResponseWriter, r *http.Request) {
	d := domain.Domain(chi.URLParam(r, "domain"))
	if !d.Valid() {
		writeError(w, http.StatusNotFound, "unknown domain")
		return
	}
	entries, err := h.trail.List(r.Context(), d)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store failure")
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
