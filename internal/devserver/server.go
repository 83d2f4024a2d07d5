package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tidwall/gjson"

	"github.com/yueh722/Web3-news-app/internal/metrics"
	"github.com/yueh722/Web3-news-app/internal/news"
)

// Routes served, relative to the server root.
const (
	NewsPath    = "/webhook/news"
	CommentPath = "/webhook/comment"
	MetricsPath = "/metrics"
)

const maxCommentBody = 1 << 20

type Server struct {
	wb       *Workbook
	log      *slog.Logger
	metrics  metrics.Recorder
	gatherer prometheus.Gatherer
	handler  http.Handler
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMetrics records served requests to rec and exposes g on /metrics.
func WithMetrics(rec metrics.Recorder, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = rec
		s.gatherer = g
	}
}

func New(wb *Workbook, opts ...Option) *Server {
	s := &Server{
		wb:      wb,
		log:     slog.Default(),
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	r.HandleFunc(NewsPath, s.handleNews).Methods(http.MethodGet)
	r.HandleFunc(CommentPath, s.handleComment).Methods(http.MethodPost)
	if s.gatherer != nil {
		r.Handle(MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Use(tagRoute)
	// observe wraps the whole router so 404 and 405 replies are counted too.
	s.handler = s.observe(r)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("devserver listening", slog.String("addr", addr), slog.String("workbook", s.wb.Path()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

// unmatchedRoute labels requests no route accepted, keeping the route
// label bounded.
const unmatchedRoute = "unmatched"

type statusWriter struct {
	http.ResponseWriter
	status int
	route  string
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// tagRoute runs only for matched routes and records the route template on
// the writer installed by observe.
func tagRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw, ok := w.(*statusWriter)
		if cur := mux.CurrentRoute(r); ok && cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				sw.route = tmpl
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK, route: unmatchedRoute}
		next.ServeHTTP(sw, r)

		s.metrics.ServedRequest(sw.route, sw.status)
		s.log.Debug("served",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("route", sw.route),
			slog.Int("status", sw.status),
			slog.String("request_id", r.Header.Get("X-Request-ID")),
			slog.Duration("took", time.Since(start)),
		)
	})
}

type noticeRecord struct {
	Message string `json:"message"`
}

type wrappedRecord struct {
	JSON map[string]any `json:"json"`
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	dateKey := r.URL.Query().Get("date")
	records, err := s.wb.Records(dateKey)
	switch {
	case errors.Is(err, ErrSheetNotFound):
		// The backend reports a missing day as an informational notice.
		writeJSON(w, http.StatusOK, []noticeRecord{{Message: "no sheet for " + dateKey}})
		return
	case errors.Is(err, ErrInvalidDate):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		s.log.Error("reading workbook", slog.String("date", dateKey), slog.String("error", err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]wrappedRecord, 0, len(records))
	for _, rec := range records {
		fields := rec.Fields
		fields[news.FieldRowID] = rec.RowNumber
		out = append(out, wrappedRecord{JSON: fields})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCommentBody))
	if err != nil {
		http.Error(w, "reading body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !gjson.ValidBytes(body) {
		http.Error(w, "body is not valid JSON", http.StatusBadRequest)
		return
	}

	fields := gjson.GetManyBytes(body, "sheetName", "rowIndex", "comment")
	sheetName, rowField, comment := fields[0], fields[1], fields[2]
	if !sheetName.Exists() || !rowField.Exists() {
		http.Error(w, "sheetName and rowIndex are required", http.StatusBadRequest)
		return
	}
	row, err := strconv.Atoi(strings.TrimSpace(rowField.String()))
	if err != nil {
		http.Error(w, fmt.Sprintf("rowIndex %q is not a number", rowField.String()), http.StatusBadRequest)
		return
	}

	err = s.wb.SetComment(sheetName.String(), row, comment.String())
	switch {
	case errors.Is(err, ErrSheetNotFound):
		http.Error(w, "no sheet for "+sheetName.String(), http.StatusNotFound)
		return
	case errors.Is(err, ErrRowNotFound):
		http.Error(w, fmt.Sprintf("row %d not found in %s", row, sheetName.String()), http.StatusNotFound)
		return
	case errors.Is(err, ErrInvalidDate):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		s.log.Error("writing comment", slog.String("sheet", sheetName.String()), slog.Int("row", row), slog.String("error", err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, noticeRecord{Message: fmt.Sprintf("comment saved to row %d", row)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
