package operation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"newscurator/internal/apperr"
)

// Type names the long-running jobs an operator can trigger.
type Type string

const (
	TypeScrape      Type = "scrape"
	TypeProcess     Type = "process"
	TypeSupplement  Type = "supplement"
	TypeFullRefresh Type = "full-refresh"
)

type State string

const (
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

const maxLogMessages = 50

type ScrapingStats struct {
	TotalSources     int    `json:"totalSources"`
	SourcesProcessed int    `json:"sourcesProcessed"`
	CurrentSource    string `json:"currentSource,omitempty"`
	ArticlesFound    int    `json:"articlesFound"`
	ArticlesAdded    int    `json:"articlesAdded"`
	ArticlesSkipped  int    `json:"articlesSkipped"`
	SourceErrors     int    `json:"sourceErrors"`
}

type ProcessingStats struct {
	ToProcess      int    `json:"articlesToProcess"`
	Processed      int    `json:"articlesProcessed"`
	Approved       int    `json:"articlesApproved"`
	Rejected       int    `json:"articlesRejected"`
	Errors         int    `json:"errors"`
	CurrentArticle string `json:"currentArticle,omitempty"`
}

type GenerationStats struct {
	ToGenerate      int    `json:"aiArticlesToGenerate"`
	Generated       int    `json:"aiArticlesGenerated"`
	Errors          int    `json:"errors"`
	CurrentCategory string `json:"aiCurrentCategory,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

type LogMessage struct {
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

// Snapshot is the progress view returned to pollers. It is a copy; mutating
// it has no effect on the coordinator.
type Snapshot struct {
	ID          uuid.UUID       `json:"id"`
	Type        Type            `json:"type"`
	State       State           `json:"state"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	CurrentStep int             `json:"currentStep"`
	TotalSteps  int             `json:"totalSteps"`
	StepName    string          `json:"stepName,omitempty"`
	Scraping    ScrapingStats   `json:"scraping"`
	Processing  ProcessingStats `json:"processing"`
	Generation  GenerationStats `json:"generation"`
	Messages    []LogMessage    `json:"messages"`
	Error       string          `json:"error,omitempty"`
}

// Coordinator owns the single-operation-at-a-time state within one process.
// Cancellation rides the run context; pause is a channel gate that running
// loops block on at their checkpoints. It does not guard against a second
// process running the same operation concurrently (a documented gap).
type Coordinator struct {
	mu      sync.Mutex
	current *run
	last    *Snapshot
}

type run struct {
	snapshot Snapshot
	cancel   context.CancelFunc
	// resume is closed to release checkpoint waiters; replaced on pause.
	resume chan struct{}
	paused bool
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Begin claims the coordinator for an operation of the given type. It returns
// a Tracker scoped to the run and a context cancelled when the run is
// cancelled. A second Begin while a run is active returns a ConflictError.
func (c *Coordinator) Begin(ctx context.Context, t Type) (*Tracker, context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		return nil, nil, apperr.NewConflict("an operation is already running: " + string(c.current.snapshot.Type))
	}

	runCtx, cancel := context.WithCancel(ctx)

	totalSteps := 1
	if t == TypeFullRefresh {
		totalSteps = 3
	}

	resume := make(chan struct{})
	close(resume)

	c.current = &run{
		snapshot: Snapshot{
			ID:          uuid.New(),
			Type:        t,
			State:       StateRunning,
			StartedAt:   time.Now(),
			CurrentStep: 1,
			TotalSteps:  totalSteps,
		},
		cancel: cancel,
		resume: resume,
	}

	return &Tracker{c: c}, runCtx, nil
}

// Snapshot returns the active run's progress, or the last finished run's.
func (c *Coordinator) Snapshot() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		return cloneSnapshot(c.current.snapshot), true
	}
	if c.last != nil {
		return cloneSnapshot(*c.last), true
	}
	return Snapshot{}, false
}

func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// Pause blocks the run at its next checkpoint.
func (c *Coordinator) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.paused {
		return
	}
	c.current.paused = true
	c.current.resume = make(chan struct{})
	c.current.snapshot.State = StatePaused
	c.appendLog("Operation paused")
}

func (c *Coordinator) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || !c.current.paused {
		return
	}
	c.current.paused = false
	close(c.current.resume)
	c.current.snapshot.State = StateRunning
	c.appendLog("Operation resumed")
}

// Cancel aborts the run. A paused run is released so the cancellation can
// take effect.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return
	}
	if c.current.paused {
		c.current.paused = false
		close(c.current.resume)
	}
	c.appendLog("Cancel requested...")
	c.current.cancel()
}

func (c *Coordinator) appendLog(text string) {
	if c.current == nil {
		return
	}
	msgs := append(c.current.snapshot.Messages, LogMessage{Time: time.Now(), Text: text})
	if len(msgs) > maxLogMessages {
		msgs = msgs[len(msgs)-maxLogMessages:]
	}
	c.current.snapshot.Messages = msgs
}

func cloneSnapshot(s Snapshot) Snapshot {
	msgs := make([]LogMessage, len(s.Messages))
	copy(msgs, s.Messages)
	s.Messages = msgs
	return s
}
