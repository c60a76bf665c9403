package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/quiz-agent/internal/models"
	"github.com/example/quiz-agent/internal/observability"
	"github.com/example/quiz-agent/internal/orchestrator"
)

const (
	maxBodyBytes = 1 << 20
	// batchIDHeader names the batch a /submit call ran as; GET /events accepts
	// the same id as ?batch_id.
	batchIDHeader = "X-Batch-ID"
)

// Server exposes the fetch / submit / answer actions over HTTP.
type Server struct {
	Service  *orchestrator.Service
	Hub      *orchestrator.Hub
	Gatherer prometheus.Gatherer
	Logger   *observability.Logger
}

type submitRequest struct {
	Username  string              `json:"username"`
	CodeLink  string              `json:"code_link"`
	BatchID   string              `json:"batch_id,omitempty"`
	Questions *models.QuestionSet `json:"questions,omitempty"`
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /questions", func(w http.ResponseWriter, r *http.Request) {
		set := s.Service.FetchQuestions(r.Context())
		status := http.StatusOK
		if set.Failed() {
			status = http.StatusBadGateway
		}
		respondJSON(w, status, set)
	})

	mux.HandleFunc("GET /questions/{task_id}", func(w http.ResponseWriter, r *http.Request) {
		q, perr := s.Service.FetchQuestion(r.Context(), r.PathValue("task_id"))
		if perr != nil {
			respondJSON(w, http.StatusBadGateway, perr)
			return
		}
		respondJSON(w, http.StatusOK, q)
	})

	mux.HandleFunc("POST /submit", func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := decodeBody(w, r, &req); err != nil {
			respondJSON(w, http.StatusBadRequest, models.NewErrorPayload(err))
			return
		}
		var set models.QuestionSet
		if req.Questions != nil {
			set = *req.Questions
		} else {
			set = s.Service.FetchQuestions(r.Context())
		}
		out := s.Service.SubmitBatch(r.Context(), req.BatchID, req.Username, req.CodeLink, set)
		w.Header().Set(batchIDHeader, out.BatchID)
		respondJSON(w, submitStatus(out), out)
	})

	mux.HandleFunc("POST /answer", func(w http.ResponseWriter, r *http.Request) {
		var q models.Question
		if err := decodeBody(w, r, &q); err != nil {
			respondJSON(w, http.StatusBadRequest, models.NewErrorPayload(err))
			return
		}
		ans, perr := s.Service.Answer(r.Context(), q)
		if perr != nil {
			status := http.StatusBadGateway
			if q.Question == "" {
				status = http.StatusBadRequest
			}
			respondJSON(w, status, perr)
			return
		}
		respondJSON(w, http.StatusOK, ans)
	})

	mux.HandleFunc("GET /events", s.streamEvents)

	gatherer := s.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

// streamEvents writes batch progress as server-sent events. ?batch_id limits
// the stream to one batch.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		http.Error(w, "events are not enabled", http.StatusNotFound)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	events, unsubscribe := s.Hub.Subscribe(r.URL.Query().Get("batch_id"))
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			b, err := json.Marshal(ev)
			if err != nil {
				observability.OrDiscard(s.Logger).Warn("encode event", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Event, b)
			flusher.Flush()
		}
	}
}

func submitStatus(out models.SubmissionOutcome) int {
	switch {
	case !out.Failed():
		return http.StatusOK
	case errors.Is(out.Cause, orchestrator.ErrMissingIdentity), errors.Is(out.Cause, orchestrator.ErrNoQuestions):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// RequestLog logs one line per request.
func RequestLog(logger *observability.Logger, next http.Handler) http.Handler {
	logger = observability.OrDiscard(logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("http request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// CORS allows browser clients on other origins.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", batchIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
