package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonechelon/matchfly-pseo/internal/logging"
)

// Server serves the generated artifact tree locally so pages can be checked
// before publishing. It also exposes health and metrics endpoints.
type Server struct {
	addr      string
	outputDir string
	upSince   time.Time
}

func NewServer(addr, outputDir string) *Server {
	return &Server{addr: addr, outputDir: outputDir, upSince: time.Now()}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://localhost:*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthCheck", s.healthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/*", http.FileServer(http.Dir(s.outputDir)))

	return r
}

func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"up_since": s.upSince.Format(time.RFC3339),
		"uptime":   time.Since(s.upSince).Truncate(time.Second).String(),
	})
}

// ListenAndServe blocks until the context is cancelled or the listener
// fails. The artifact directory must exist; previewing an ungenerated site
// is always a mistake worth surfacing.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if _, err := os.Stat(s.outputDir); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logging.Info("preview server listening", "addr", s.addr, "dir", s.outputDir)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
