package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spysage/monitor-cli/internal/scheduler"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler with an HTTP control server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		jobs := scheduler.Jobs{
			Scrape: func(ctx context.Context) error {
				_, err := env.runner.RunAll(ctx)
				return err
			},
			Buzz: env.runner.UpdateAllBuzz,
		}
		if env.digest != nil {
			jobs.Digest = env.digest.SendWeekly
		}
		var admin scheduler.AdminNotifier
		if env.admin != nil {
			admin = env.admin
		}
		sched := scheduler.New(jobs, admin)
		if _, err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port()),
			Handler: newRouter(ctx, env, sched),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func port() int {
	if servePort != 0 {
		return servePort
	}
	return cfg.Server.Port
}

// newRouter builds the control API. Scheduled and manual jobs run on
// the server's lifetime context, not the request's.
func newRouter(srvCtx context.Context, env *env, sched *scheduler.Scheduler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/scheduler/status", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"active": sched.IsActive()})
	})

	r.Post("/api/scheduler/start", func(w http.ResponseWriter, req *http.Request) {
		started, err := sched.Start(srvCtx)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"started": started, "active": sched.IsActive()})
	})

	r.Post("/api/scheduler/stop", func(w http.ResponseWriter, req *http.Request) {
		stopped := sched.Stop()
		writeJSON(w, http.StatusOK, map[string]bool{"stopped": stopped, "active": sched.IsActive()})
	})

	r.Post("/api/scrape/run", func(w http.ResponseWriter, req *http.Request) {
		go func() {
			summary, err := env.runner.RunAll(srvCtx)
			if err != nil {
				zap.L().Error("manual scrape failed", zap.Error(err))
				return
			}
			zap.L().Info("manual scrape complete", zap.Int("competitors", len(summary.Items)))
		}()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	})

	return r
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
