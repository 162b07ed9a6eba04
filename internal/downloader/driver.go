package downloader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/redl/internal/utils"
)

const chunkSize = 32 * 1024

// Downloader drives single-file downloads over a shared HTTP client. It is
// safe to run several downloads on one Downloader; each keeps its own state.
type Downloader struct {
	cfg     Config
	client  utils.HTTPDoer
	newSink func(path string) (Sink, error)
}

func New(cfg Config) (*Downloader, error) {
	cfg = cfg.withDefaults()
	client, err := utils.NewHTTPClient(cfg.HTTP)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP client: %w", err)
	}
	return &Downloader{cfg: cfg, client: client, newSink: openFileSink}, nil
}

// Download fetches rawURL with a one-off Downloader built from cfg.
func Download(ctx context.Context, rawURL string, cfg Config) (string, error) {
	d, err := New(cfg)
	if err != nil {
		return "", err
	}
	defer d.Close()
	return d.Download(ctx, rawURL)
}

// Close releases idle keep-alive connections held by the Downloader's client.
func (d *Downloader) Close() {
	if c, ok := d.client.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}

// Download runs one logical download to completion and returns the path of
// the saved file. Transport failures are retried; the caller only sees
// ErrMaxRedirectExceeded, ErrMaxRetryExceeded, a *StatusError, a local I/O
// error or the cancellation of ctx. Partial data is removed on failure.
func (d *Downloader) Download(ctx context.Context, rawURL string) (string, error) {
	if _, err := parseDownloadURL(rawURL); err != nil {
		return "", err
	}
	dl := &download{
		cfg:       d.cfg,
		transport: &transport{client: d.client},
		newSink:   d.newSink,
		watchdog:  newWatchdog(d.cfg.IdleTimeout),
		events:    make(chan event, 16),
		done:      make(chan struct{}),
		log:       d.logger(),
		state: attemptState{
			originalURL: rawURL,
			currentURL:  rawURL,
		},
	}
	defer close(dl.done)
	return dl.run(ctx)
}

func (d *Downloader) logger() zerolog.Logger {
	base := log.Logger
	if d.cfg.Logger != nil {
		base = *d.cfg.Logger
	}
	level := zerolog.InfoLevel
	if d.cfg.Debug {
		level = zerolog.DebugLevel
	}
	return base.Level(level).With().Str("op", "downloader/driver").Logger()
}

// Task is a download running in the background.
type Task struct {
	done chan struct{}
	path string
	err  error
}

func (d *Downloader) Start(ctx context.Context, rawURL string) *Task {
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.path, t.err = d.Download(ctx, rawURL)
	}()
	return t
}

func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) Wait() (string, error) {
	<-t.done
	return t.path, t.err
}

type attemptState struct {
	originalURL string
	currentURL  string
	redirects   int
	retries     int
	generation  uint64
	filename    string
	destination string
}

type attempt struct {
	id     string
	gen    uint64
	url    string
	ctx    context.Context
	cancel context.CancelCauseFunc
}

func (a *attempt) abort() {
	a.cancel(errAborted)
}

// failure maps an error seen while the attempt's context was cancelled to
// the cancellation cause, so an idle timeout surfaces as ErrIdleTimeout.
func (a *attempt) failure(err error) error {
	if a.ctx.Err() != nil {
		if cause := context.Cause(a.ctx); cause != nil {
			return cause
		}
	}
	return err
}

type eventKind int

const (
	eventResponse eventKind = iota
	eventChunk
	eventEnd
	eventError
)

// event is produced by the transport, body reader and watchdog goroutines.
// gen identifies the attempt it belongs to.
type event struct {
	gen  uint64
	kind eventKind
	resp *Response
	data []byte
	err  error
}

type step int

const (
	stepContinue step = iota
	stepRedirect
	stepRetry
	stepDone
	stepFail
)

// download is the state of one logical download. Only the goroutine running
// run touches it; everything else talks to it through events.
type download struct {
	cfg       Config
	transport *transport
	newSink   func(path string) (Sink, error)
	watchdog  *watchdog
	events    chan event
	done      chan struct{}
	log       zerolog.Logger

	state      attemptState
	sink       Sink
	total      int64
	downloaded int64
	lastErr    error
}

func (dl *download) run(ctx context.Context) (path string, err error) {
	defer dl.watchdog.Stop()
	defer func() {
		if err != nil && dl.sink != nil {
			if discardErr := dl.sink.Discard(); discardErr != nil {
				dl.log.Warn().Err(discardErr).Msg("could not remove partial file")
			}
		}
	}()
	for {
		if dl.state.redirects > dl.cfg.MaxRedirects {
			return "", fmt.Errorf("%w: %d redirects", ErrMaxRedirectExceeded, dl.state.redirects)
		}
		if dl.state.retries >= dl.cfg.MaxRetries {
			if dl.lastErr == nil {
				return "", ErrMaxRetryExceeded
			}
			return "", fmt.Errorf("%w after %d attempts: %w", ErrMaxRetryExceeded, dl.state.retries, dl.lastErr)
		}
		if dl.state.retries > 0 && dl.cfg.RetryDelay > 0 {
			if err := sleepContext(ctx, time.Duration(dl.state.retries)*dl.cfg.RetryDelay); err != nil {
				return "", fmt.Errorf("download cancelled: %w", err)
			}
		}

		next, err := dl.attempt(ctx)
		switch next {
		case stepRedirect:
			dl.state.redirects++
		case stepRetry:
			dl.state.retries++
			dl.log.Debug().Err(dl.lastErr).Msgf("Retrying download (retry %d/%d)", dl.state.retries, dl.cfg.MaxRetries)
		case stepDone:
			return dl.state.destination, nil
		default:
			return "", err
		}
	}
}

// attempt issues one request and processes its events until the attempt ends.
func (dl *download) attempt(ctx context.Context) (step, error) {
	dl.state.generation++
	actx, cancel := context.WithCancelCause(ctx)
	a := &attempt{
		id:     strings.Split(uuid.NewString(), "-")[0],
		gen:    dl.state.generation,
		url:    dl.state.currentURL,
		ctx:    actx,
		cancel: cancel,
	}
	dl.watchdog.Begin(a.gen, func() {
		a.cancel(ErrIdleTimeout)
		dl.post(event{gen: a.gen, kind: eventError, err: ErrIdleTimeout})
	})
	dl.log.Debug().Str("request", a.id).Str("url", a.url).
		Int("redirects", dl.state.redirects).Int("retries", dl.state.retries).Msg("Starting attempt")

	go dl.open(a)

	for {
		select {
		case <-ctx.Done():
			dl.watchdog.Stop()
			a.abort()
			return stepFail, fmt.Errorf("download cancelled: %w", context.Cause(ctx))
		case ev := <-dl.events:
			if ev.gen != a.gen {
				dl.drop(ev)
				continue
			}
			next, err := dl.handle(ctx, a, ev)
			if next != stepContinue {
				return next, err
			}
		}
	}
}

func (dl *download) handle(ctx context.Context, a *attempt, ev event) (step, error) {
	switch ev.kind {
	case eventResponse:
		return dl.handleResponse(a, ev.resp)

	case eventChunk:
		dl.watchdog.Rearm(a.gen)
		if _, err := dl.sink.Write(ev.data); err != nil {
			dl.watchdog.Stop()
			a.abort()
			return stepFail, fmt.Errorf("error writing to output file: %w", err)
		}
		dl.downloaded += int64(len(ev.data))
		dl.reportProgress()
		return stepContinue, nil

	case eventEnd:
		dl.watchdog.Stop()
		a.abort()
		if err := dl.sink.Finalize(); err != nil {
			return stepFail, err
		}
		dl.sink = nil
		dl.log.Debug().Str("request", a.id).Str("path", dl.state.destination).Int64("bytes", dl.downloaded).Msg("Download completed")
		return stepDone, nil

	case eventError:
		dl.watchdog.Stop()
		if ctx.Err() != nil {
			a.abort()
			return stepFail, fmt.Errorf("download cancelled: %w", context.Cause(ctx))
		}
		a.abort()
		dl.lastErr = &TransportError{AttemptID: a.id, URL: a.url, Err: ev.err}
		dl.log.Debug().Str("request", a.id).Err(ev.err).Msg("Attempt failed")
		return stepRetry, nil
	}
	return stepContinue, nil
}

func (dl *download) handleResponse(a *attempt, resp *Response) (step, error) {
	dl.log.Debug().Str("request", a.id).Int("status", resp.StatusCode).
		Str("content-type", resp.Header.Get("Content-Type")).Msg("Response received")

	if location := resp.Header.Get("Location"); isRedirect(resp.StatusCode) && location != "" {
		dl.watchdog.Stop()
		a.abort()
		resp.Body.Close()
		next, err := resolveLocation(a.url, location)
		if err != nil {
			return stepFail, err
		}
		dl.log.Debug().Str("request", a.id).Msgf("Redirect to %s", next)
		dl.state.currentURL = next
		return stepRedirect, nil
	}

	if !dl.cfg.SaveErrorResponses && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		dl.watchdog.Stop()
		a.abort()
		resp.Body.Close()
		statusErr := &StatusError{StatusCode: resp.StatusCode, URL: a.url}
		if statusErr.Retryable() {
			dl.lastErr = &TransportError{AttemptID: a.id, URL: a.url, Err: statusErr}
			return stepRetry, nil
		}
		return stepFail, statusErr
	}

	if err := dl.prepareSink(resp); err != nil {
		dl.watchdog.Stop()
		a.abort()
		resp.Body.Close()
		return stepFail, err
	}
	dl.total = resp.ContentLength
	dl.downloaded = 0
	go dl.stream(a, resp.Body)
	return stepContinue, nil
}

// prepareSink resolves the destination on the first terminal response and
// rewinds the existing sink on later ones.
func (dl *download) prepareSink(resp *Response) error {
	if dl.sink != nil {
		return dl.sink.Reset()
	}
	if dl.state.destination == "" {
		dl.state.filename = resolveFilename(dl.cfg.Filename, dl.state.originalURL, resp.Header.Get("Content-Type"))
		dest := filepath.Join(dl.cfg.SavePath, dl.state.filename)
		if dl.cfg.NoClobber {
			if _, err := os.Stat(dest); err == nil {
				dest = utils.RenewOutputPath(dest)
			}
		}
		dl.state.destination = dest
		dl.log.Debug().Str("path", dest).Msg("Resolved output path")
	}
	sink, err := dl.newSink(dl.state.destination)
	if err != nil {
		return err
	}
	dl.sink = sink
	return nil
}

func (dl *download) reportProgress() {
	if dl.cfg.ProgressFunc != nil {
		dl.cfg.ProgressFunc(dl.total, dl.downloaded)
	}
	if dl.cfg.ShowProgress {
		fmt.Fprint(dl.cfg.ProgressWriter, ProgressLine(dl.total, dl.downloaded))
	}
}

func (dl *download) open(a *attempt) {
	resp, err := dl.transport.open(a.ctx, a.url, func() { dl.watchdog.Arm(a.gen) })
	if err != nil {
		dl.post(event{gen: a.gen, kind: eventError, err: a.failure(err)})
		return
	}
	if !dl.post(event{gen: a.gen, kind: eventResponse, resp: resp}) {
		resp.Body.Close()
	}
}

func (dl *download) stream(a *attempt, body io.ReadCloser) {
	defer body.Close()
	for {
		buf := make([]byte, chunkSize)
		n, err := body.Read(buf)
		if n > 0 {
			if !dl.post(event{gen: a.gen, kind: eventChunk, data: buf[:n]}) {
				return
			}
		}
		if err == io.EOF {
			dl.post(event{gen: a.gen, kind: eventEnd})
			return
		}
		if err != nil {
			dl.post(event{gen: a.gen, kind: eventError, err: a.failure(err)})
			return
		}
	}
}

// post hands an event to the driver unless the download already returned.
func (dl *download) post(ev event) bool {
	select {
	case dl.events <- ev:
		return true
	case <-dl.done:
		return false
	}
}

// drop discards an event from an attempt that already ended.
func (dl *download) drop(ev event) {
	if ev.kind == eventResponse && ev.resp != nil {
		ev.resp.Body.Close()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-timer.C:
		return nil
	}
}
