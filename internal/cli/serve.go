package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/intentflow/intentflow/pkg/cdg"
	apperrors "github.com/intentflow/intentflow/pkg/errors"
	"github.com/intentflow/intentflow/pkg/layout"
	"github.com/intentflow/intentflow/pkg/render"
)

// maxRequestBody bounds payloads accepted by the API (4 MiB).
const maxRequestBody = 4 << 20

// shutdownTimeout bounds graceful shutdown after the context is cancelled.
const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command exposing normalize and layout over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the normalize and layout operations over HTTP",
		Long: `Serve the normalize and layout operations as an HTTP API.

Endpoints:
  POST /api/normalize   raw graph payload -> normalized graph JSON
  POST /api/layout      {"graph": ..., "pins": {...}} -> position map JSON
  POST /api/render      {"graph": ..., "pins": {...}, "detailed": bool} -> SVG
  GET  /healthz         liveness probe

The listen address comes from the config file and can be overridden with
--addr. The server shuts down gracefully on SIGINT.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")

	return cmd
}

// runServe starts the HTTP server and blocks until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, cfg Config) error {
	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           c.newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Infof("Listening on %s", cfg.Serve.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// newRouter builds the chi router with logging and recovery middleware.
func (c *CLI) newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(c.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/normalize", handleNormalize)
		r.Post("/layout", handleLayout)
		r.Post("/render", handleRender)
	})
	return r
}

// requestLogger attaches a request-scoped logger to the context and logs
// method, path, status, and duration for each request.
func (c *CLI) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := c.Logger.With("request_id", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(withLogger(r.Context(), logger)))

		logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

// handleNormalize coerces a raw payload into a normalized graph.
func handleNormalize(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read body"))
		return
	}

	g, err := cdg.Decode(data)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidPayload, err, "decode payload"))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// layoutRequest is the body for /api/layout and /api/render.
type layoutRequest struct {
	Graph    cdg.Graph               `json:"graph"`
	Pins     map[string]layout.Point `json:"pins,omitempty"`
	Detailed bool                    `json:"detailed,omitempty"`
}

// handleLayout computes positions for a graph, honoring pinned nodes.
func handleLayout(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLayoutRequest(w, r)
	if !ok {
		return
	}
	g := cdg.NormalizeGraph(req.Graph)
	writeJSON(w, http.StatusOK, layout.Compute(g, req.Pins))
}

// handleRender renders a graph to SVG at its computed positions.
func handleRender(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLayoutRequest(w, r)
	if !ok {
		return
	}
	g := cdg.NormalizeGraph(req.Graph)
	pos := layout.Compute(g, req.Pins)
	dot := render.ToDOT(g, pos, render.Options{Detailed: req.Detailed})

	svg, err := render.SVG(r.Context(), dot)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "render svg"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(svg)
}

func decodeLayoutRequest(w http.ResponseWriter, r *http.Request) (layoutRequest, bool) {
	var req layoutRequest
	body := io.LimitReader(r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request"))
		return layoutRequest{}, false
	}
	return req, true
}

// =============================================================================
// Responses
// =============================================================================

// errorBody is the JSON error envelope returned by the API.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var body errorBody
	body.Error.Code = string(apperrors.GetCode(err))
	body.Error.Message = apperrors.UserMessage(err)
	writeJSON(w, statusFor(apperrors.GetCode(err)), body)
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidPayload, apperrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeConversationNotFound, apperrors.ErrCodeDraftNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
