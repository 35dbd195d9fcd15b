package middleware

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snapgrove/backend/internal/fingerprint"
	"github.com/snapgrove/backend/internal/logger"
	"go.uber.org/zap"
)

// CoalescerConfig holds configuration for request coalescing
type CoalescerConfig struct {
	// Window is how long a completed or in-flight execution absorbs duplicates
	Window time.Duration
	// SweepInterval is how often the background sweep scans the entry table
	SweepInterval time.Duration
	// RetentionMultiplier bounds entry lifetime: the sweep removes anything
	// older than RetentionMultiplier × Window, even if the eager per-entry
	// cleanup never fired
	RetentionMultiplier int
}

// DefaultCoalescerConfig returns the production defaults
func DefaultCoalescerConfig() CoalescerConfig {
	return CoalescerConfig{
		Window:              time.Second,
		SweepInterval:       5 * time.Second,
		RetentionMultiplier: 2,
	}
}

// pendingEntry is one in-flight or recently completed execution for a
// fingerprint. done is closed exactly once, after the owning response is
// fully produced; body stays nil when the response carried no JSON payload.
type pendingEntry struct {
	fingerprint string
	createdAt   time.Time

	done   chan struct{}
	status int
	body   []byte
	err    error
}

// RequestCoalescer collapses concurrent identical requests (same method,
// path, caller identity, query, and body) into a single downstream execution
// within a sliding time window. Duplicate callers receive the owner's
// captured JSON response; when the owner fails or produces a non-JSON
// response they fall through and execute independently, so coalescing can
// only ever reduce work, never change results.
//
// Each instance owns its entry table; inject it into the pipeline with
// Middleware(). Entries are garbage collected twice over: an eager per-entry
// timer fires one window after completion, and the background sweep removes
// anything older than RetentionMultiplier × Window as a fallback.
type RequestCoalescer struct {
	cfg CoalescerConfig

	mu      sync.Mutex
	entries map[string]*pendingEntry

	stopOnce sync.Once
	stop     chan struct{}
}

// NewRequestCoalescer creates a coalescer and starts its background sweep
func NewRequestCoalescer(cfg CoalescerConfig) *RequestCoalescer {
	def := DefaultCoalescerConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.RetentionMultiplier < 1 {
		cfg.RetentionMultiplier = def.RetentionMultiplier
	}

	rc := &RequestCoalescer{
		cfg:     cfg,
		entries: make(map[string]*pendingEntry),
		stop:    make(chan struct{}),
	}
	go rc.sweepLoop()
	return rc
}

// Middleware returns the Gin handler implementing the decision procedure.
// Install it after the auth-context middleware so the caller identity is
// available for fingerprinting.
func (rc *RequestCoalescer) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !eligibleForCoalescing(c) {
			c.Next()
			return
		}

		fp := rc.fingerprintRequest(c)
		now := time.Now()

		rc.mu.Lock()
		if entry, ok := rc.entries[fp]; ok && now.Sub(entry.createdAt) < rc.cfg.Window {
			rc.mu.Unlock()
			rc.awaitAndReplay(c, entry)
			return
		}

		// Fresh fingerprint (or a stale entry being superseded). Register
		// before invoking downstream so concurrent duplicates always find
		// the entry - registration is synchronous, there is no window in
		// which a duplicate can miss it.
		entry := &pendingEntry{
			fingerprint: fp,
			createdAt:   now,
			done:        make(chan struct{}),
		}
		rc.entries[fp] = entry
		size := len(rc.entries)
		rc.mu.Unlock()

		RecordCoalescerSize(size)
		rc.execute(c, entry)
	}
}

// execute runs the downstream handler as the owning execution for entry,
// capturing its response and resolving the entry exactly once.
func (rc *RequestCoalescer) execute(c *gin.Context, entry *pendingEntry) {
	writer := &captureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
	c.Writer = writer

	defer func() {
		if r := recover(); r != nil {
			// Reject and clear so waiters fall through instead of hanging,
			// then let the recovery middleware produce the 500.
			entry.err = fmt.Errorf("handler panic: %v", r)
			close(entry.done)
			rc.remove(entry)
			panic(r)
		}
	}()

	c.Next()

	if len(c.Errors) > 0 {
		entry.err = c.Errors.Last()
		close(entry.done)
		rc.remove(entry)
		return
	}

	entry.status = writer.Status()
	if writer.wroteJSON() {
		entry.body = append([]byte(nil), writer.body.Bytes()...)
	}
	close(entry.done)

	// Eager GC path: drop the entry one window after completion. The
	// background sweep is the safety net if this timer is ever lost.
	time.AfterFunc(rc.cfg.Window, func() {
		rc.remove(entry)
	})
}

// awaitAndReplay waits for the owning execution's outcome and replays it.
// Every failure mode degrades to independent execution - a duplicate never
// inherits an error it did not produce, and never hangs past the retention
// bound even if the owner is stuck.
func (rc *RequestCoalescer) awaitAndReplay(c *gin.Context, entry *pendingEntry) {
	retention := time.Duration(rc.cfg.RetentionMultiplier) * rc.cfg.Window
	deadline := time.NewTimer(time.Until(entry.createdAt.Add(retention)))
	defer deadline.Stop()

	select {
	case <-entry.done:
	case <-deadline.C:
		RecordCoalescerFallthrough(c.Request.Method, c.Request.URL.Path, "owner_timeout")
		c.Next()
		return
	}

	if entry.err != nil {
		RecordCoalescerFallthrough(c.Request.Method, c.Request.URL.Path, "owner_error")
		c.Next()
		return
	}

	if entry.body == nil {
		// The owner produced no replayable JSON (file stream, redirect, empty
		// body). Logged because the skip is otherwise invisible to operators.
		RecordCoalescerFallthrough(c.Request.Method, c.Request.URL.Path, "no_json_body")
		logger.Log.Debug("coalescer: non-JSON response, duplicate executing independently",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.Next()
		return
	}

	RecordCoalescerReplay(c.Request.Method, c.Request.URL.Path)
	c.Data(entry.status, "application/json; charset=utf-8", entry.body)
	c.Abort()
}

// fingerprintRequest digests the request. The body is restored afterwards so
// downstream binding still works. Identity comes from the auth context when
// present; anonymous callers share a sentinel identity.
func (rc *RequestCoalescer) fingerprintRequest(c *gin.Context) string {
	var body []byte
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}

	return fingerprint.Request(
		c.Request.Method,
		c.Request.URL.Path,
		c.GetString("user_id"),
		c.Request.URL.Query(),
		body,
	)
}

// remove deletes entry from the table if it is still the registered entry
// for its fingerprint. A newer entry under the same fingerprint is left alone.
func (rc *RequestCoalescer) remove(entry *pendingEntry) {
	rc.mu.Lock()
	current, ok := rc.entries[entry.fingerprint]
	if ok && current == entry {
		delete(rc.entries, entry.fingerprint)
	}
	size := len(rc.entries)
	rc.mu.Unlock()

	if ok && current == entry {
		RecordCoalescerEviction(1)
		RecordCoalescerSize(size)
	}
}

// sweepLoop is the fallback GC path, bounding table size even when the
// per-entry timers were missed
func (rc *RequestCoalescer) sweepLoop() {
	ticker := time.NewTicker(rc.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rc.stop:
			return
		case <-ticker.C:
			rc.sweep(time.Now())
		}
	}
}

// sweep removes every entry older than the retention threshold and returns
// the number removed
func (rc *RequestCoalescer) sweep(now time.Time) int {
	retention := time.Duration(rc.cfg.RetentionMultiplier) * rc.cfg.Window

	rc.mu.Lock()
	removed := 0
	for fp, entry := range rc.entries {
		if now.Sub(entry.createdAt) >= retention {
			delete(rc.entries, fp)
			removed++
		}
	}
	size := len(rc.entries)
	rc.mu.Unlock()

	if removed > 0 {
		RecordCoalescerEviction(removed)
		RecordCoalescerSize(size)
		logger.Log.Debug("coalescer sweep",
			zap.Int("removed", removed),
			zap.Int("remaining", size),
		)
	}
	return removed
}

// Size returns the number of tracked entries (introspection for tests and
// the metrics gauge)
func (rc *RequestCoalescer) Size() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.entries)
}

// Stop halts the background sweep. Tracked entries still drain through the
// per-entry timers.
func (rc *RequestCoalescer) Stop() {
	rc.stopOnce.Do(func() {
		close(rc.stop)
	})
}

// eligibleForCoalescing applies the eligibility filter: GET and POST only,
// and file uploads always execute (replaying an upload response would
// acknowledge work that never happened)
func eligibleForCoalescing(c *gin.Context) bool {
	switch c.Request.Method {
	case http.MethodGet, http.MethodPost:
	default:
		return false
	}

	if strings.Contains(c.Request.URL.Path, "/upload") {
		return false
	}
	if c.ContentType() == "multipart/form-data" {
		return false
	}
	return true
}

// captureWriter tees the response body so the coalescer can replay it
type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// wroteJSON reports whether a JSON body was produced and captured
func (w *captureWriter) wroteJSON() bool {
	if w.body.Len() == 0 {
		return false
	}
	return strings.HasPrefix(w.Header().Get("Content-Type"), "application/json")
}
