package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"horde-image-client/internal/domain"
	"horde-image-client/internal/domain/model"
	"horde-image-client/internal/domain/ports/adapter"
	"horde-image-client/internal/infra/metrics"
)

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain and API errors to HTTP statuses with the
// uniform {error, code} shape.
func writeDomainError(w http.ResponseWriter, err error) {
	var apiErr *adapter.APIError
	switch {
	case errors.As(err, &apiErr):
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": apiErr.Message, "code": apiErr.Code})
	case errors.Is(err, domain.ErrInvalidOptions), errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrJobInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNoJobInFlight):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleGetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.optionsUC.Get(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"options": opts,
		"kudos":   model.EstimateKudos(opts),
	})
}

func (s *Server) handlePutOptions(w http.ResponseWriter, r *http.Request) {
	var opts model.GenerationOptions
	if err := decodeJSON(r, &opts); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	kudos, err := s.optionsUC.Update(r.Context(), &opts)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"options": opts, "kudos": kudos})
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	kudos, err := s.optionsUC.Estimate(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"kudos": kudos})
}

// handleGenerate submits a job with the stored options, optionally overridden
// by a request body.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	opts, err := s.optionsUC.Get(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, opts); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
	}
	job, err := s.submitUC.Submit(r.Context(), opts)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.poller.Track(job)
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.submitUC.Current(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"job":  job,
		"busy": s.poller.Busy(),
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.submitUC.Cancel(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	s.poller.Untrack()
	metrics.IncJobFinished("cancelled")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResultMeta(w http.ResponseWriter, r *http.Request) {
	res := s.results.Current()
	if res == nil || res.Released() {
		writeError(w, http.StatusNotFound, "no result available")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          res.ID,
		"request_id":  res.RequestID,
		"width":       res.Width,
		"height":      res.Height,
		"worker_id":   res.WorkerID,
		"worker_name": res.WorkerName,
		"model":       res.Model,
		"seed":        res.Seed,
		"censored":    res.Censored,
		"kudos":       res.Kudos,
		"created_at":  res.CreatedAt,
	})
}

func (s *Server) handleResultImage(w http.ResponseWriter, r *http.Request) {
	res := s.results.Current()
	if res == nil || res.Released() {
		writeError(w, http.StatusNotFound, "no result available")
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(res.Image))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Image)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.horde.ListModels(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.horde.CurrentUser(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.historyUC == nil {
		writeJSON(w, http.StatusOK, []model.HistoryEntry{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.historyUC.ListRecent(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
