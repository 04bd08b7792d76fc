package counter

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"babykicks-backend/internal/models"
)

// State of the session lifecycle.
type State string

const (
	StateIdle    State = "idle"
	StateActive  State = "active"
	StateSummary State = "summary"
)

// HistoryAppender is the slice of the history service the engine needs:
// id-keyed idempotent insertion and the post-hoc anomaly patch.
type HistoryAppender interface {
	Append(ctx context.Context, accountID string, session models.KickSession) error
	PatchAnalysis(ctx context.Context, accountID, sessionID string, analysis models.AnomalyAnalysis) (bool, error)
}

// DispatchFunc hands a finished session off for asynchronous anomaly analysis.
// It must not block and must never fail the finish transition.
type DispatchFunc func(accountID string, session models.KickSession)

// Engine is the per-account session state machine. All transitions run under a
// single lock; the only out-of-band inputs are ticker ticks and the async
// analysis result, both funneled through the same lock so ordering between the
// evaluator result and save/discard is resolved purely by session id.
type Engine struct {
	mu        sync.Mutex
	accountID string
	state     State
	method    models.CountMethod
	debounce  Debouncer
	startTime time.Time
	elapsed   int // whole seconds while Active
	ceiling   int // auto-stop threshold in seconds
	week      int // gestational week snapshot at session start
	finished  *models.KickSession

	history  HistoryAppender
	dispatch DispatchFunc

	now       func() time.Time
	tickEvery time.Duration
	stopTick  chan struct{}
}

func NewEngine(accountID string, history HistoryAppender, dispatch DispatchFunc) *Engine {
	return &Engine{
		accountID: accountID,
		state:     StateIdle,
		history:   history,
		dispatch:  dispatch,
		now:       time.Now,
		tickEvery: time.Second,
	}
}

// Snapshot is the externally visible counter state.
type Snapshot struct {
	State           State               `json:"state"`
	Method          models.CountMethod  `json:"method,omitempty"`
	ElapsedSeconds  int                 `json:"elapsed_seconds"`
	Count           int                 `json:"count"`
	RawCount        int                 `json:"raw_count"`
	FinishedSession *models.KickSession `json:"finished_session,omitempty"`
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		State:          e.state,
		ElapsedSeconds: e.elapsed,
		Count:          e.debounce.Count(),
		RawCount:       e.debounce.RawCount(),
	}
	if e.state != StateIdle {
		snap.Method = e.method
	}
	if e.finished != nil {
		copied := *e.finished
		snap.FinishedSession = &copied
	}
	return snap
}

// Start begins a new session. The gestational week is snapshotted here and
// carried on the session record unchanged.
func (e *Engine) Start(method models.CountMethod, week int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle {
		return fmt.Errorf("cannot start session in state %q", e.state)
	}
	if !method.Valid() {
		return fmt.Errorf("unknown counting method %q", method)
	}

	e.state = StateActive
	e.method = method
	e.week = week
	e.startTime = e.now()
	e.elapsed = 0
	e.ceiling = int(method.MaxDuration() / time.Second)
	e.finished = nil
	e.debounce.Reset()

	e.stopTick = make(chan struct{})
	go e.runTicker(e.stopTick)
	return nil
}

// runTicker advances elapsed once per wall-clock second while Active. The
// auto-stop check runs on every tick so a session with zero taps still
// terminates at the ceiling.
func (e *Engine) runTicker(stop chan struct{}) {
	ticker := time.NewTicker(e.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.Tick()
		case <-stop:
			return
		}
	}
}

// Tick advances the elapsed counter by one second and fires the auto-stop
// transition once the ceiling is reached.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return
	}
	e.elapsed++
	if e.elapsed >= e.ceiling {
		e.finishLocked()
	}
}

// Tap records one raw tap. No-op outside Active.
func (e *Engine) Tap() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return
	}
	e.debounce.RecordTap(e.now())
}

// Finish ends the session explicitly.
func (e *Engine) Finish() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return fmt.Errorf("cannot finish session in state %q", e.state)
	}
	e.finishLocked()
	return nil
}

// finishLocked freezes the session, assembles the record and hands it off for
// background analysis. Must be called with e.mu held.
func (e *Engine) finishLocked() {
	if e.stopTick != nil {
		close(e.stopTick)
		e.stopTick = nil
	}

	end := e.now()
	session := models.KickSession{
		ID:              uuid.NewString(),
		StartTime:       e.startTime.UnixMilli(),
		EndTime:         end.UnixMilli(),
		DurationSeconds: int(math.Round(float64(end.Sub(e.startTime)) / float64(time.Second))),
		Count:           e.debounce.Count(),
		RawCount:        e.debounce.RawCount(),
		Method:          e.method,
		WeekOfPregnancy: e.week,
		AnomalyStatus:   models.SeverityNone,
	}

	e.state = StateSummary
	e.finished = &session

	if e.dispatch != nil {
		e.dispatch(e.accountID, session)
	}
}

// Save appends the finished session to history exactly once and returns to
// Idle. Insertion is keyed by id, so a race with the async anomaly update can
// never produce a duplicate.
func (e *Engine) Save(ctx context.Context) (*models.KickSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateSummary || e.finished == nil {
		return nil, fmt.Errorf("no finished session to save in state %q", e.state)
	}

	session := *e.finished
	if err := e.history.Append(ctx, e.accountID, session); err != nil {
		return nil, err
	}

	e.resetLocked()
	return &session, nil
}

// Discard drops the finished session without touching history. A late-arriving
// analysis for its id finds nothing to update and is silently dropped.
func (e *Engine) Discard() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateSummary {
		return fmt.Errorf("no finished session to discard in state %q", e.state)
	}
	e.resetLocked()
	return nil
}

func (e *Engine) resetLocked() {
	e.state = StateIdle
	e.finished = nil
	e.elapsed = 0
	e.startTime = time.Time{}
	e.debounce.Reset()
}

// ApplyAnalysis reconciles an evaluator result by session id: patch the
// in-flight summary if it matches, otherwise patch the saved history entry,
// otherwise drop the result (session was discarded). Reapplying the same
// analysis is a no-op. Returns whether the result landed anywhere.
func (e *Engine) ApplyAnalysis(ctx context.Context, sessionID string, analysis models.AnomalyAnalysis) bool {
	e.mu.Lock()
	if e.finished != nil && e.finished.ID == sessionID {
		if e.finished.AnomalyStatus != analysis.Severity || e.finished.AnomalyReason != analysis.Message {
			e.finished.AnomalyStatus = analysis.Severity
			e.finished.AnomalyReason = analysis.Message
		}
		e.mu.Unlock()
		return true
	}
	e.mu.Unlock()

	found, err := e.history.PatchAnalysis(ctx, e.accountID, sessionID, analysis)
	if err != nil {
		log.Printf("anomaly patch for session %s failed: %v", sessionID, err)
		return false
	}
	return found
}
