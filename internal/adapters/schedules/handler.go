// Package schedules exposes schedule generation, the run archive, and
// asynchronous exports over HTTP. It is the only package that speaks JSON
// and CSV to clients; the engine stays transport-agnostic.
package schedules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mazecore/internal/adapters/roster"
	"mazecore/internal/core"
	"mazecore/pkg/domain"
)

// ScheduleService is the slice of the core service the handler depends on.
type ScheduleService interface {
	Generate(ctx context.Context, animals []domain.Animal, cfg domain.ScheduleConfig) (domain.ScheduleRun, error)
	Run(ctx context.Context, id string) (domain.ScheduleRun, bool, error)
	Runs(ctx context.Context) ([]domain.ScheduleRun, error)
}

// Handler provides HTTP access to roster parsing, schedule runs, and exports.
type Handler struct {
	Service ScheduleService
	Exports ExportScheduler
}

// NewHandler constructs a schedules HTTP handler.
func NewHandler(service ScheduleService) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeError(w, http.StatusInternalServerError, "schedule service not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/api/v1/roster/parse":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleParseRoster(w, r)
	case path == "/api/v1/schedules":
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case strings.HasPrefix(path, "/api/v1/schedules/exports/"):
		if h.Exports == nil {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleExportGet(w, strings.TrimPrefix(path, "/api/v1/schedules/exports/"))
	case strings.HasPrefix(path, "/api/v1/schedules/"):
		h.handleRun(w, r, strings.TrimPrefix(path, "/api/v1/schedules/"))
	default:
		http.NotFound(w, r)
	}
}

type parseRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleParseRoster(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid roster payload")
		return
	}
	animals := roster.Parse(req.Text)
	writeJSON(w, http.StatusOK, map[string]any{"animals": animals, "count": len(animals)})
}

type createRequest struct {
	Text    string                `json:"text"`
	Animals []domain.Animal       `json:"animals"`
	Config  domain.ScheduleConfig `json:"config"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid schedule request payload")
		return
	}
	animals := req.Animals
	if strings.TrimSpace(req.Text) != "" {
		if len(animals) > 0 {
			writeError(w, http.StatusBadRequest, "provide either text or animals, not both")
			return
		}
		animals = roster.Parse(req.Text)
	}

	run, err := h.Service.Generate(r.Context(), animals, req.Config)
	if err != nil {
		var cfgErr core.ConfigError
		var rosterErr core.RosterError
		switch {
		case errors.As(err, &cfgErr):
			writeError(w, http.StatusUnprocessableEntity, cfgErr.Error())
		case errors.As(err, &rosterErr):
			writeError(w, http.StatusUnprocessableEntity, rosterErr.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"run": run})
}

// runSummary is the listing projection of an archived run; full day tables
// are only returned by the single-run endpoint.
type runSummary struct {
	ID        string                `json:"id"`
	CreatedAt time.Time             `json:"created_at"`
	Config    domain.ScheduleConfig `json:"config"`
	Animals   int                   `json:"animals"`
	Days      int                   `json:"days"`
	Fallbacks int                   `json:"fallbacks"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Service.Runs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	summaries := make([]runSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, runSummary{
			ID:        run.ID,
			CreatedAt: run.CreatedAt,
			Config:    run.Config,
			Animals:   len(run.Animals),
			Days:      len(run.Days),
			Fallbacks: run.Fallbacks,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": summaries})
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request, remainder string) {
	segments := strings.Split(remainder, "/")
	id := segments[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(segments) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		run, ok, err := h.Service.Run(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"run": run})
		return
	}

	if len(segments) != 2 {
		http.NotFound(w, r)
		return
	}
	switch segments[1] {
	case "csv":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleRunCSV(w, r, id)
	case "exports":
		if h.Exports == nil {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleExportCreate(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleRunCSV(w http.ResponseWriter, r *http.Request, id string) {
	run, ok, err := h.Service.Run(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	filename := fmt.Sprintf("schedule-%s.csv", run.ID)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_ = writeRunCSV(w, run)
}

type exportRequest struct {
	Formats []string `json:"formats"`
}

func (h *Handler) handleExportCreate(w http.ResponseWriter, r *http.Request, runID string) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
		writeError(w, http.StatusBadRequest, "invalid export request payload")
		return
	}
	formats := make([]ExportFormat, 0, len(req.Formats))
	for _, f := range req.Formats {
		format, ok := parseExportFormat(strings.ToLower(strings.TrimSpace(f)))
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported export format %s", f))
			return
		}
		formats = append(formats, format)
	}

	record, err := h.Exports.EnqueueExport(r.Context(), runID, formats)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"export": record})
}

func (h *Handler) handleExportGet(w http.ResponseWriter, id string) {
	if id == "" {
		writeError(w, http.StatusNotFound, "export not found")
		return
	}
	record, ok := h.Exports.GetExport(id)
	if !ok {
		writeError(w, http.StatusNotFound, "export not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"export": record})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
