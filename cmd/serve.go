package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/abdul-raz/Safe-Tourism/internal/facts"
	"github.com/abdul-raz/Safe-Tourism/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prediction HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnvironment(ctx, true)
		if err != nil {
			return err
		}
		defer env.Close()

		limiter := rate.NewLimiter(rate.Limit(cfg.Server.RatePerSecond), cfg.Server.RateBurst)
		mux := newServeMux(env, limiter)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newServeMux builds the HTTP routes. Split out so tests can exercise the
// handlers without binding a port.
func newServeMux(env *environment, limiter *rate.Limiter) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /predict", func(w http.ResponseWriter, r *http.Request) {
		if limiter != nil && !limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}

		var req struct {
			Lat *float64 `json:"lat"`
			Lon *float64 `json:"lon"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Lat == nil || req.Lon == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lon are required"})
			return
		}
		if *req.Lat < -90 || *req.Lat > 90 || *req.Lon < -180 || *req.Lon > 180 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "coordinate out of range"})
			return
		}

		result, err := env.predictor.Predict(r.Context(), *req.Lat, *req.Lon)
		if err != nil {
			status := http.StatusInternalServerError
			if eris.Is(err, facts.ErrAdapterUnavailable) {
				status = http.StatusServiceUnavailable
			}
			if eris.Is(err, model.ErrModelNotLoaded) || eris.Is(err, model.ErrSchemaMismatch) {
				status = http.StatusServiceUnavailable
			}
			zap.L().Error("predict request failed",
				zap.Float64("lat", *req.Lat),
				zap.Float64("lon", *req.Lon),
				zap.Error(err),
			)
			writeJSON(w, status, map[string]string{"error": "prediction failed"})
			return
		}

		env.record(r.Context(), result)
		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("GET /history", func(w http.ResponseWriter, r *http.Request) {
		if env.history == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "history disabled"})
			return
		}

		limit := 20
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
				return
			}
			limit = n
		}

		records, err := env.history.ListRecent(r.Context(), limit)
		if err != nil {
			zap.L().Error("history request failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, records)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}
