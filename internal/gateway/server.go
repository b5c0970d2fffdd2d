// Package gateway exposes the inbound webhook endpoint. It verifies
// signatures, filters events by kind, suppresses duplicate deliveries
// and dispatches comment commands to the approval coordinator.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/storyloom/warden/internal/core/ports"
	"github.com/storyloom/warden/internal/engine/approval"
	"golang.org/x/time/rate"
)

const maxPayloadSize = 5 << 20

// Dispatcher processes a parsed comment request to a terminal state.
type Dispatcher interface {
	Process(ctx context.Context, req approval.Request) (approval.Outcome, error)
}

// Refresher recomputes the categorization summary after a completed
// check run.
type Refresher interface {
	RefreshCategories(ctx context.Context) error
}

// Config holds the gateway's tunables.
type Config struct {
	// ListenAddr is the bind address.
	ListenAddr string
	// Secret is the shared HMAC key for webhook signatures. Empty disables
	// verification.
	Secret string
	// DeliveryTTL is how long delivery IDs are remembered.
	DeliveryTTL time.Duration
	// RatePerMinute limits inbound deliveries. Zero disables the limiter.
	RatePerMinute int
}

// Server is the webhook HTTP server.
type Server struct {
	dispatcher Dispatcher
	refresher  Refresher
	logger     ports.Logger
	secret     []byte
	deliveries *deliveryCache
	limiter    *rate.Limiter
	httpServer *http.Server
}

// NewServer creates a Server. The clock is injected so delivery expiry is
// testable.
func NewServer(dispatcher Dispatcher, refresher Refresher, logger ports.Logger, clock clockwork.Clock, cfg Config) *Server {
	s := &Server{
		dispatcher: dispatcher,
		refresher:  refresher,
		logger:     logger,
		deliveries: newDeliveryCache(cfg.DeliveryTTL, 0, clock),
	}
	if cfg.Secret != "" {
		s.secret = []byte(cfg.Secret)
	}
	if cfg.RatePerMinute > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), cfg.RatePerMinute)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Serve runs the server until the context is canceled.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		// A canceled context is the normal way to stop serving, not a
		// failure.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// issueCommentEvent is the subset of the issue_comment payload the
// approval pipeline needs.
type issueCommentEvent struct {
	Action  string `json:"action"`
	Comment struct {
		ID   int64  `json:"id"`
		Body string `json:"body"`
		User struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"comment"`
	Issue struct {
		Number      int              `json:"number"`
		PullRequest *json.RawMessage `json:"pull_request"`
	} `json:"issue"`
}

type workflowRunEvent struct {
	Action string `json:"action"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable payload"})
		return
	}

	if !s.verifySignature(r.Header.Get("X-Hub-Signature-256"), body) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
		return
	}

	delivery := r.Header.Get("X-GitHub-Delivery")
	if s.deliveries.seen(delivery) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "duplicate delivery"})
		return
	}

	sw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	switch r.Header.Get("X-GitHub-Event") {
	case "issue_comment":
		s.handleIssueComment(r.Context(), sw, body)
	case "workflow_run":
		s.handleWorkflowRun(r.Context(), sw, body)
	default:
		writeJSON(sw, http.StatusAccepted, map[string]string{"status": "event ignored"})
	}

	// A 5xx response asks the sender to redeliver; the delivery ID must
	// not linger or the redelivery would be swallowed as a duplicate.
	if sw.status >= http.StatusInternalServerError {
		s.deliveries.forget(delivery)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleIssueComment(ctx context.Context, w http.ResponseWriter, body []byte) {
	var event issueCommentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed issue_comment payload"})
		return
	}
	if event.Action != "created" || event.Issue.PullRequest == nil {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "comment ignored"})
		return
	}

	outcome, err := s.dispatcher.Process(ctx, approval.Request{
		Actor:       event.Comment.User.Login,
		Body:        event.Comment.Body,
		IssueNumber: event.Issue.Number,
		CommentID:   event.Comment.ID,
	})
	if err != nil {
		s.logger.Error(err)
	}
	s.logger.Info(fmt.Sprintf("comment %d processed: %s", event.Comment.ID, outcome.State))

	writeJSON(w, http.StatusOK, map[string]string{"state": string(outcome.State), "reason": outcome.Reason})
}

func (s *Server) handleWorkflowRun(ctx context.Context, w http.ResponseWriter, body []byte) {
	var event workflowRunEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed workflow_run payload"})
		return
	}
	if event.Action != "completed" {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "run ignored"})
		return
	}

	if err := s.refresher.RefreshCategories(ctx); err != nil {
		s.logger.Error(err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "categorization refresh failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "categories refreshed"})
}

// verifySignature checks the HMAC-SHA256 payload signature. With no
// secret configured every payload passes.
func (s *Server) verifySignature(header string, body []byte) bool {
	if len(s.secret) == 0 {
		return true
	}
	const prefix = "sha256="
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return false
	}

	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header[len(prefix):]))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
