package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/patrickmn/go-cache"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/export"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/response"
	"github.com/Createyourfreeacc/Beook2PDF-sub000/utils"
)

type Catalog interface {
	Books(ctx context.Context) ([]*model.Book, error)
}

type Runner interface {
	Run(ctx context.Context, sel export.Selection, opts export.Options, jobId string) ([]byte, error)
}

type Config struct {
	// Defaults fills placement, columns and share threshold of new jobs.
	Defaults export.Options

	JobsPerMinute int
	PollInterval  time.Duration
	PingInterval  time.Duration
}

type jobRequest struct {
	Books     []int64 `json:"books"`
	QuizBooks []int64 `json:"quiz_books"`
	TOC       bool    `json:"toc"`
	Quiz      bool    `json:"quiz"`
	MyQuiz    bool    `json:"my_quiz"`
	Placement string  `json:"placement"`
}

type jobResponse struct {
	JobId string `json:"job_id"`
}

func Handler(catalog Catalog, runner Runner, tracker *export.Tracker, cfg Config, rr *response.Responder) http.Handler {
	if cfg.JobsPerMinute <= 0 {
		cfg.JobsPerMinute = 10
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}

	// download names by job id
	names := cache.New(24*time.Hour, time.Hour)

	r := chi.NewRouter()

	r.Get("/books", func(w http.ResponseWriter, r *http.Request) {
		books, err := catalog.Books(r.Context())
		if err != nil {
			rr.RespondAndLogError(w, r.Context(), err)
			return
		}

		if books == nil {
			books = make([]*model.Book, 0)
		}

		rr.SendJson(w, r.Context(), struct {
			Books []*model.Book `json:"books"`
		}{Books: books})
	})

	r.With(httprate.LimitByIP(cfg.JobsPerMinute, time.Minute)).Post("/jobs", func(w http.ResponseWriter, r *http.Request) {
		var req jobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			rr.RespondAndLogCustom(w, r.Context(), fmt.Errorf("invalid job request: %w", err), slog.LevelDebug, http.StatusBadRequest)
			return
		}
		if len(req.Books) == 0 {
			rr.RespondAndLogCustom(w, r.Context(), export.ErrEmptySelection, slog.LevelDebug, http.StatusBadRequest)
			return
		}

		books, err := catalog.Books(r.Context())
		if err != nil {
			rr.RespondAndLogError(w, r.Context(), err)
			return
		}
		sel, err := export.Select(books, req.Books, req.QuizBooks)
		if errors.Is(err, export.ErrUnknownBook) {
			rr.RespondAndLogCustom(w, r.Context(), err, slog.LevelDebug, http.StatusBadRequest)
			return
		} else if err != nil {
			rr.RespondAndLogError(w, r.Context(), err)
			return
		}

		opts := cfg.Defaults
		opts.GenerateTOCPages = req.TOC
		opts.ExportQuiz = req.Quiz
		opts.ExportMyQuiz = req.MyQuiz
		if req.Placement != "" {
			opts.Placement = req.Placement
		}

		jobId := uuid.NewString()
		tracker.Start(jobId)

		var titles []string
		for _, b := range sel.Books {
			titles = append(titles, b.DisplayTitle())
		}
		names.Set(jobId, utils.ExportFileName(titles), cache.DefaultExpiration)

		ctx := context.WithoutCancel(r.Context())
		go func() {
			// failures are recorded by the runner
			_, _ = runner.Run(ctx, sel, opts, jobId)
		}()

		rr.SendJsonStatus(w, r.Context(), http.StatusAccepted, jobResponse{JobId: jobId})
	})

	r.Route("/jobs/{id}", func(r chi.Router) {
		r.Get("/progress", func(w http.ResponseWriter, r *http.Request) {
			st, ok := tracker.Progress(chi.URLParam(r, "id"))
			if !ok {
				rr.RespondAndLogCustom(w, r.Context(), errors.New("job not found"), slog.LevelDebug, http.StatusNotFound)
				return
			}
			rr.SendJson(w, r.Context(), st)
		})

		r.Get("/stream", func(w http.ResponseWriter, r *http.Request) {
			jobId := chi.URLParam(r, "id")
			if _, ok := tracker.Progress(jobId); !ok {
				rr.RespondAndLogCustom(w, r.Context(), errors.New("job not found"), slog.LevelDebug, http.StatusNotFound)
				return
			}
			stream(w, r, tracker, jobId, cfg)
		})

		r.Get("/document", func(w http.ResponseWriter, r *http.Request) {
			jobId := chi.URLParam(r, "id")
			st, ok := tracker.Progress(jobId)
			if !ok {
				rr.RespondAndLogCustom(w, r.Context(), errors.New("job not found"), slog.LevelDebug, http.StatusNotFound)
				return
			}
			if st.Percent == export.Failed {
				rr.RespondAndLogCustom(w, r.Context(), errors.New("export failed"), slog.LevelDebug, http.StatusGone)
				return
			}

			doc, ok := tracker.Result(jobId)
			if !ok {
				rr.RespondAndLogCustom(w, r.Context(), errors.New("export still running"), slog.LevelDebug, http.StatusConflict)
				return
			}
			name := "export.pdf"
			if v, ok := names.Get(jobId); ok {
				name = v.(string)
			}
			rr.SendPDF(w, r.Context(), name, doc)
		})
	})

	return r
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// stream pushes the job status whenever it changes and closes the socket
// once the job is done.
func stream(w http.ResponseWriter, r *http.Request, tracker *export.Tracker, jobId string, cfg Config) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.DebugContext(r.Context(), "websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	// drain client frames so close and pong are processed
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.DebugContext(r.Context(), "progress stream closed", "job", jobId, "err", err)
				}
				return
			}
		}
	}()

	poll := time.NewTicker(cfg.PollInterval)
	defer poll.Stop()
	ping := time.NewTicker(cfg.PingInterval)
	defer ping.Stop()

	last := export.Status{Percent: -2}
	for {
		st, ok := tracker.Progress(jobId)
		if !ok {
			st = export.Status{Percent: export.Failed, Done: true, Error: "job expired"}
		}
		if st != last {
			if err := conn.WriteJSON(st); err != nil {
				return
			}
			last = st
		}
		if st.Done {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return
		}

		select {
		case <-gone:
			return
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-poll.C:
		}
	}
}
