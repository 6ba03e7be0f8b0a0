package transfer

import (
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/moyoez/diary-upload-go/tool"
	"github.com/moyoez/diary-upload-go/types"
)

// Status is the lifecycle state of a Session.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

const (
	TextCompleted      = "Upload completed!"
	textUploadingFmt   = "Uploading: %d%%"
	textErrorFmt       = "Error: %s"
	textCheckingFmt    = "Error checking progress: %s"
	textTimeoutFmt     = "upload timed out after %d progress checks"
	textCancelled      = "upload cancelled"
	remoteStatusDone   = "completed"
	remoteStatusFailed = "error"
)

// Endpoints locates the upload and progress resources of the diary server.
type Endpoints struct {
	BaseURL      string
	UploadPath   string
	ProgressPath string // one %s, replaced by the upload id
}

// DefaultEndpoints returns the paths the diary server serves uploads on.
func DefaultEndpoints(baseURL string) Endpoints {
	return Endpoints{
		BaseURL:      baseURL,
		UploadPath:   "/data/upload",
		ProgressPath: "/data/upload/progress/%s",
	}
}

func EndpointsFromConfig(cfg types.ServerConfig) Endpoints {
	ep := DefaultEndpoints(cfg.BaseURL)
	if cfg.UploadPath != "" {
		ep.UploadPath = cfg.UploadPath
	}
	if cfg.ProgressPath != "" {
		ep.ProgressPath = cfg.ProgressPath
	}
	return ep
}

// PollOptions bounds the polling loop. Zero MaxAttempts and MaxDuration
// poll until the server reports a terminal status.
type PollOptions struct {
	Interval         time.Duration
	MaxAttempts      int
	MaxDuration      time.Duration
	TransientRetries int // consecutive poll failures tolerated before giving up
}

func DefaultPollOptions() PollOptions {
	return PollOptions{
		Interval:    time.Second,
		MaxAttempts: 600,
	}
}

func PollOptionsFromConfig(cfg types.PollConfig) PollOptions {
	opts := DefaultPollOptions()
	if cfg.IntervalMs > 0 {
		opts.Interval = time.Duration(cfg.IntervalMs) * time.Millisecond
	}
	opts.MaxAttempts = cfg.MaxAttempts
	opts.MaxDuration = time.Duration(cfg.MaxDurationSec) * time.Second
	opts.TransientRetries = cfg.TransientRetries
	return opts
}

type Option func(*Session)

func WithHTTPClient(client *http.Client) Option {
	return func(s *Session) {
		if client != nil {
			s.client = client
		}
	}
}

func WithPollOptions(opts PollOptions) Option {
	return func(s *Session) {
		if opts.Interval > 0 {
			s.opts = opts
		}
	}
}

// WithSessionId sets the local id used in logs and snapshots.
func WithSessionId(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// Session drives one upload from submission to a terminal status.
// It is single use: Submit may be called once.
type Session struct {
	mu        sync.RWMutex
	id        string
	uploadId  string
	fileName  string
	status    Status
	progress  float64
	polls     int
	err       *SessionError
	started   bool
	startedAt time.Time
	endedAt   time.Time

	endpoints Endpoints
	opts      PollOptions
	client    *http.Client
	presenter Presenter
}

// NewSession creates a pending session reporting to presenter.
func NewSession(endpoints Endpoints, presenter Presenter, opts ...Option) *Session {
	if presenter == nil {
		presenter = nopPresenter{}
	}
	s := &Session{
		id:        tool.GenerateRandomUUID(),
		status:    StatusPending,
		endpoints: endpoints,
		opts:      DefaultPollOptions(),
		client:    tool.GetHttpClient(),
		presenter: presenter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Session) UploadId() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uploadId
}

func (s *Session) Progress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// Err returns the terminal failure, or nil.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err == nil {
		return nil
	}
	return s.err
}

func (s *Session) Snapshot() types.UploadSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := types.UploadSnapshot{
		SessionId: s.id,
		UploadId:  s.uploadId,
		FileName:  s.fileName,
		Status:    string(s.status),
		Progress:  s.progress,
		Polls:     s.polls,
		StartedAt: s.startedAt,
	}
	if s.err != nil {
		snap.ErrorKind = string(s.err.Kind)
		snap.Error = s.err.Message
	}
	if !s.endedAt.IsZero() {
		ended := s.endedAt
		snap.EndedAt = &ended
	}
	return snap
}

func (s *Session) begin(fileName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("session %s already submitted", s.id)
	}
	s.started = true
	s.fileName = fileName
	s.startedAt = time.Now()
	return nil
}

func (s *Session) markInProgress(uploadId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadId = uploadId
	s.status = StatusInProgress
}

// advance records a reported percentage and returns the value to present.
// Reports are clamped to [0,100] and a lower report keeps the previous value.
func (s *Session) advance(reported float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := clampPercent(reported)
	if p < s.progress {
		tool.DefaultLogger.Debugf("[Poll] session %s: progress went back from %.2f to %.2f, holding", s.id, s.progress, p)
		p = s.progress
	}
	s.progress = p
	return p
}

func (s *Session) countPoll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	return s.polls
}

// finish moves the session to a terminal state. Only the first call has effect.
func (s *Session) finish(status Status, serr *SessionError) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return false
	}
	s.status = status
	s.err = serr
	s.endedAt = time.Now()
	return true
}

func (s *Session) complete() error {
	if s.finish(StatusCompleted, nil) {
		s.presenter.SetText(TextCompleted)
		tool.DefaultLogger.Infof("[Upload] session %s: upload %s completed after %d checks", s.id, s.UploadId(), s.Snapshot().Polls)
	}
	return nil
}

// fail ends the session with serr and writes text to the status label.
func (s *Session) fail(serr *SessionError, text string, hide bool) error {
	if !s.finish(StatusError, serr) {
		return s.Err()
	}
	s.presenter.SetText(text)
	if hide {
		s.presenter.SetVisible(false)
	}
	tool.DefaultLogger.Errorf("[Upload] session %s failed: %v", s.id, serr)
	return serr
}

func clampPercent(p float64) float64 {
	switch {
	case math.IsNaN(p) || p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// roundPercent rounds half up, as a browser's Math.round does.
func roundPercent(p float64) int {
	return int(math.Floor(p + 0.5))
}
