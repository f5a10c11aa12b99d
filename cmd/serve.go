package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/export"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/render"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/response"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/server"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/utils"
)

type serveArgs struct {
	bindAddr string
	rate     int
}

var sArgs serveArgs

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve export jobs over HTTP",
	Long:  "Serve export jobs over HTTP with progress polling, a websocket progress stream and document download",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&sArgs.bindAddr, "bind", "", "listen address (env BIND_ADDR)")
	serveCmd.Flags().IntVar(&sArgs.rate, "jobs-per-minute", 10, "job submissions allowed per client and minute")
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	pool, err := render.NewPool(cfg.RenderWorkers, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to start browser: %v", err)
	}
	defer pool.Close()

	var notifier export.Notifier
	if cfg.ProgressWebhook != "" {
		notifier = &utils.Webhook{URL: cfg.ProgressWebhook}
	}
	tracker := export.NewTracker(24*time.Hour, notifier, slog.Default())
	exporter := export.New(store, pool, tracker, slog.Default())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Mount("/api", server.Handler(store, exporter, tracker, server.Config{
		Defaults: export.Options{
			Placement:      cfg.QuizPlacement,
			Columns:        cfg.SolutionCols,
			ShareThreshold: cfg.ShareThreshold,
		},
		JobsPerMinute: sArgs.rate,
	}, &response.Responder{DebugMode: cfg.DebugMode}))

	bind := cfg.BindAddr
	if sArgs.bindAddr != "" {
		bind = sArgs.bindAddr
	}
	slog.Info("listening", "addr", bind)
	return fmt.Errorf("aborting: %v", http.ListenAndServe(bind, r))
}
