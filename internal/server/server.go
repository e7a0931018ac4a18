package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/outreach-crm/internal/agents"
	"github.com/jonathan/outreach-crm/internal/config"
	"github.com/jonathan/outreach-crm/internal/db"
	"github.com/jonathan/outreach-crm/internal/ingestion"
	"github.com/jonathan/outreach-crm/internal/pipeline"
	"github.com/jonathan/outreach-crm/internal/server/ratelimit"
	"github.com/jonathan/outreach-crm/internal/types"
)

// Store is the persistence surface the HTTP handlers use. *db.DB satisfies
// it; handler tests substitute fakes.
type Store interface {
	CreateLead(ctx context.Context, req *types.CreateLeadRequest) (*db.Lead, error)
	GetLead(ctx context.Context, id uuid.UUID) (*db.Lead, error)
	ListLeads(ctx context.Context, opts db.ListLeadsOptions) ([]db.Lead, int, error)
	UpdateLead(ctx context.Context, id uuid.UUID, req *types.UpdateLeadRequest) (*db.Lead, error)
	CreateSnapshot(ctx context.Context, leadID uuid.UUID, url, rawText string, fetchedAt *time.Time) (*db.WebsiteSnapshot, error)
	ListSnapshots(ctx context.Context, leadID uuid.UUID, limit, offset int) ([]db.WebsiteSnapshot, error)
	CreateDraft(ctx context.Context, p db.DraftParams) (*db.EmailDraft, error)
	ListDrafts(ctx context.Context, leadID uuid.UUID, limit, offset int) ([]db.EmailDraft, error)
	Close()
}

// Server represents the HTTP server.
type Server struct {
	httpServer   *http.Server
	db           Store
	orchestrator *pipeline.Orchestrator
	rateLimiter  *ratelimit.Limiter
}

// New creates a server: database pool, agent clients, orchestrator, routes.
func New(cfg *config.Config, port int) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Server{
		db:          database,
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
	}
	// Agent clients are built lazily, so the CRUD surface stays up even when
	// OPENAI_API_KEY is unset; pipeline routes then return 503.
	s.orchestrator = pipeline.New(database,
		agents.NewExtractor(cfg), agents.NewDrafter(cfg), agents.NewVerifier(cfg),
		ingestion.NewFetcher(cfg.UseBrowser))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/v1/leads", s.handleCreateLead)
	mux.HandleFunc("GET /api/v1/leads", s.handleListLeads)
	mux.HandleFunc("GET /api/v1/leads/{id}", s.handleGetLead)
	mux.HandleFunc("PATCH /api/v1/leads/{id}", s.handleUpdateLead)

	mux.HandleFunc("POST /api/v1/leads/{id}/snapshots", s.handleCreateSnapshot)
	mux.HandleFunc("GET /api/v1/leads/{id}/snapshots", s.handleListSnapshots)

	mux.HandleFunc("POST /api/v1/leads/{id}/drafts", s.handleCreateDraft)
	mux.HandleFunc("GET /api/v1/leads/{id}/drafts", s.handleListDrafts)

	mux.HandleFunc("POST /api/v1/leads/{id}/ingest-website", s.handleIngestWebsite)
	mux.HandleFunc("POST /api/v1/leads/{id}/run-agent1", s.handleRunAgent1)
	mux.HandleFunc("POST /api/v1/leads/{id}/run-agent2", s.handleRunAgent2)
	mux.HandleFunc("POST /api/v1/leads/{id}/run-agent3", s.handleRunAgent3)
	mux.HandleFunc("GET /api/v1/leads/{id}/latest-context", s.handleLatestContext)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // agent runs block the handler
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// withRateLimit rejects clients over their per-IP budget with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.Allow(clientID(r)) {
			s.errorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID extracts the client identifier (IP) from the request.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
