package news

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/yueh722/Web3-news-app/internal/metrics"
	"github.com/yueh722/Web3-news-app/internal/resilience/circuitbreaker"
	"github.com/yueh722/Web3-news-app/internal/resilience/retry"
)

// DefaultCommentMessage is used when a successful write reply has no message.
const DefaultCommentMessage = "comment saved"

const maxBodyBytes = 10 << 20

type Options struct {
	ReadURL  string
	WriteURL string

	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client
	Timeout    time.Duration

	// RetryAttempts applies to reads only. 0 or 1 disables retry.
	RetryAttempts int

	// RequestsPerSecond caps outgoing calls. 0 means unlimited.
	RequestsPerSecond float64

	Logger  *slog.Logger
	Metrics metrics.Recorder
}

// Client calls the read and write webhooks. Neither method returns a Go
// error or panics: every outcome is folded into a FetchResult or
// CommentResult.
type Client struct {
	readURL  string
	writeURL string
	http     *http.Client
	retry    retry.Config
	limiter  *rate.Limiter
	readCB   *circuitbreaker.CircuitBreaker
	writeCB  *circuitbreaker.CircuitBreaker
	log      *slog.Logger
	metrics  metrics.Recorder
	newID    func() string
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rec := opts.Metrics
	if rec == nil {
		rec = metrics.Noop{}
	}

	limit := rate.Inf
	burst := 0
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		burst = max(1, int(opts.RequestsPerSecond))
	}

	c := &Client{
		readURL:  opts.ReadURL,
		writeURL: opts.WriteURL,
		http:     httpClient,
		retry:    retry.WebhookReadConfig(opts.RetryAttempts),
		limiter:  rate.NewLimiter(limit, burst),
		log:      logger,
		metrics:  rec,
		newID:    func() string { return uuid.NewString() },
	}
	c.readCB = circuitbreaker.New(c.breakerConfig("news-read"))
	c.writeCB = circuitbreaker.New(c.breakerConfig("news-write"))
	return c
}

func (c *Client) breakerConfig(name string) circuitbreaker.Config {
	cfg := circuitbreaker.WebhookConfig(name)
	cfg.IsSuccessful = countsAsHealthy
	cfg.OnStateChange = func(name string, _, to gobreaker.State) {
		if to == gobreaker.StateOpen {
			c.metrics.CircuitOpened(name)
		}
	}
	return cfg
}

// countsAsHealthy keeps replies that prove the webhook is up (4xx, bad
// payloads) and caller cancellations from opening the circuit.
func countsAsHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be.StatusCode < 500
	}
	return false
}

// FetchNews reads the items for dateKey (YYYY/MM/DD).
func (c *Client) FetchNews(ctx context.Context, dateKey string) (res FetchResult) {
	start := time.Now()
	log := c.log.With(slog.String("date", dateKey))

	defer func() {
		if r := recover(); r != nil {
			log.Error("fetch panicked", slog.Any("panic", r))
			res = ErrorResult(fmt.Sprintf("unexpected failure: %v", r))
		}
		c.metrics.WebhookRequest(metrics.OpFetch, res.Kind.String(), time.Since(start))
		log.Info("news fetched",
			slog.String("kind", res.Kind.String()),
			slog.Int("items", len(res.Items)),
			slog.Duration("duration", time.Since(start)))
	}()

	reqID := c.newID()
	log = log.With(slog.String("request_id", reqID))

	if err := c.limiter.Wait(ctx); err != nil {
		return ErrorResult((&TransportError{Op: "fetch", Err: err}).Error())
	}

	out, err := c.readCB.Execute(func() (interface{}, error) {
		var body []byte
		err := retry.WithBackoff(ctx, c.retry, func() error {
			b, err := c.get(ctx, dateKey, reqID)
			body = b
			return err
		})
		return body, err
	})
	if err != nil {
		return fetchFailure(err)
	}

	items, err := parseNews(out.([]byte), dateKey)
	return classify(items, err)
}

func (c *Client) get(ctx context.Context, dateKey, reqID string) ([]byte, error) {
	u, err := url.Parse(c.readURL)
	if err != nil {
		return nil, &TransportError{Op: "fetch", Err: err}
	}
	q := u.Query()
	q.Set("date", dateKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &TransportError{Op: "fetch", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	return c.do(req, "fetch")
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("reading body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &BackendError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func fetchFailure(err error) FetchResult {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrorResult("news webhook is unavailable, try again shortly")
	}
	// Report the last attempt, not the retry wrapper.
	var (
		be *BackendError
		te *TransportError
	)
	switch {
	case errors.As(err, &be):
		return ErrorResult(be.Error())
	case errors.As(err, &te):
		return ErrorResult(te.Error())
	}
	return ErrorResult(err.Error())
}

func classify(items []NewsItem, err error) FetchResult {
	var (
		notice *noticeError
		bad    *MalformedResponseError
	)
	switch {
	case err == nil:
		return DataResult(items)
	case errors.Is(err, ErrNoData):
		return EmptyResult()
	case errors.As(err, &notice):
		return WarningResult(notice.Message)
	case errors.As(err, &bad):
		return WarningResult(bad.Error())
	default:
		return ErrorResult(err.Error())
	}
}

type commentRequest struct {
	SheetName string `json:"sheetName"`
	RowIndex  any    `json:"rowIndex"`
	Comment   string `json:"comment"`
}

// rowIndexValue sends numeric row ids as JSON numbers, matching what the
// spreadsheet returned.
func rowIndexValue(rowID string) any {
	if n, err := strconv.ParseInt(rowID, 10, 64); err == nil {
		return n
	}
	return rowID
}

// PostComment writes text to the row rowID of partition dateKey. Writes are
// never retried.
func (c *Client) PostComment(ctx context.Context, dateKey, rowID, text string) (res CommentResult) {
	start := time.Now()
	log := c.log.With(slog.String("date", dateKey), slog.String("row", rowID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("comment panicked", slog.Any("panic", r))
			res = CommentResult{Message: fmt.Sprintf("unexpected failure: %v", r)}
		}
		outcome := "ok"
		if !res.OK {
			outcome = "error"
		}
		c.metrics.WebhookRequest(metrics.OpComment, outcome, time.Since(start))
		log.Info("comment posted", slog.Bool("ok", res.OK), slog.Duration("duration", time.Since(start)))
	}()

	if strings.TrimSpace(rowID) == "" {
		return CommentResult{Message: "missing row identifier"}
	}

	reqID := c.newID()
	log = log.With(slog.String("request_id", reqID))

	payload, err := json.Marshal(commentRequest{
		SheetName: dateKey,
		RowIndex:  rowIndexValue(rowID),
		Comment:   text,
	})
	if err != nil {
		return CommentResult{Message: err.Error()}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return CommentResult{Message: (&TransportError{Op: "comment", Err: err}).Error()}
	}

	out, err := c.writeCB.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.writeURL, bytes.NewReader(payload))
		if err != nil {
			return nil, &TransportError{Op: "comment", Err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", reqID)
		return c.do(req, "comment")
	})
	if err != nil {
		var be *BackendError
		if errors.As(err, &be) {
			return CommentResult{Message: be.Detail()}
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return CommentResult{Message: "comment webhook is unavailable, try again shortly"}
		}
		return CommentResult{Message: err.Error()}
	}

	msg := commentMessage(out.([]byte))
	if msg == "" {
		msg = DefaultCommentMessage
	}
	return CommentResult{OK: true, Message: msg}
}
