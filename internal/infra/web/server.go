package web

import (
	"crypto/subtle"
	"net/http"
	"time"

	"horde-image-client/internal/domain/ports/adapter"
	"horde-image-client/internal/infra/api"
	"horde-image-client/internal/infra/sched"
	"horde-image-client/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server is the local control API. It plays the role the browser UI played:
// edit options, submit and cancel jobs, inspect the poll state, fetch the
// finished image.
type Server struct {
	optionsUC usecase.OptionsUseCase
	submitUC  usecase.SubmitUseCase
	historyUC usecase.HistoryUseCase
	results   *usecase.ResultSlot
	poller    *sched.PollWorker
	horde     adapter.HordeAPIAdapter
	auth      *AuthManager
	accessKey string
	log       *zerolog.Logger
}

func NewServer(
	optionsUC usecase.OptionsUseCase,
	submitUC usecase.SubmitUseCase,
	historyUC usecase.HistoryUseCase,
	results *usecase.ResultSlot,
	poller *sched.PollWorker,
	horde adapter.HordeAPIAdapter,
	auth *AuthManager,
	accessKey string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		optionsUC: optionsUC,
		submitUC:  submitUC,
		historyUC: historyUC,
		results:   results,
		poller:    poller,
		horde:     horde,
		auth:      auth,
		accessKey: accessKey,
		log:       logger,
	}
}

// Router assembles the chi routing tree with the shared middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/api/v1/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Get("/api/v1/options", s.handleGetOptions)
		r.Put("/api/v1/options", s.handlePutOptions)
		r.Get("/api/v1/estimate", s.handleEstimate)

		r.Post("/api/v1/generate", s.handleGenerate)
		r.Get("/api/v1/job", s.handleJobStatus)
		r.Delete("/api/v1/job", s.handleCancel)

		r.Get("/api/v1/result", s.handleResultMeta)
		r.Get("/api/v1/result/image", s.handleResultImage)

		r.Get("/api/v1/models", s.handleModels)
		r.Get("/api/v1/user", s.handleUser)
		r.Get("/api/v1/history", s.handleHistory)
	})

	return api.Chain(r,
		api.TraceID(),
		api.RequestLog(s.log),
		api.Recover(s.log),
		api.Timeout(30*time.Second),
	)
}

// handleLogin exchanges the configured access key for a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessKey string `json:"access_key"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.AccessKey), []byte(s.accessKey)) != 1 {
		writeError(w, http.StatusUnauthorized, "bad access key")
		return
	}
	token, err := s.auth.Mint()
	if err != nil {
		s.log.Error().Err(err).Msg("could not mint session token")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
