package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"babykicks-backend/internal/models"
	"babykicks-backend/internal/services"
)

const analysisQueue = "queue:anomaly-analysis"

// Resolver applies a finished evaluation to wherever the session currently
// lives (in-flight summary or saved history entry). The counter manager
// implements it.
type Resolver interface {
	ApplyAnalysis(ctx context.Context, accountID, sessionID string, analysis models.AnomalyAnalysis) bool
}

// evaluationJob is the queued unit of work produced by the finish transition.
type evaluationJob struct {
	AccountID string             `json:"account_id"`
	Session   models.KickSession `json:"session"`
}

// Pool runs the asynchronous anomaly evaluations. Finished sessions are pushed
// onto a Redis queue and consumed by worker goroutines, so the finish
// transition never waits on the model and a queued evaluation survives a
// restart. Results are reconciled by session id and pushed to connected
// clients over pub/sub.
type Pool struct {
	redis       *redis.Client
	evaluator   *services.Evaluator
	history     *services.HistoryService
	profiles    *services.ProfileService
	resolver    Resolver
	workerCount int
	stopChan    chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	evaluator *services.Evaluator,
	history *services.HistoryService,
	profiles *services.ProfileService,
	workerCount int,
) *Pool {
	return &Pool{
		redis:       redisClient,
		evaluator:   evaluator,
		history:     history,
		profiles:    profiles,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

// Bind wires the resolver. Must be called before Start; it exists because the
// counter manager and the pool reference each other.
func (p *Pool) Bind(resolver Resolver) {
	p.resolver = resolver
}

// Enqueue hands a finished session off for background analysis. It never
// blocks the caller: the queue push runs on its own goroutine and a push
// failure only means the session keeps its default "none" status.
func (p *Pool) Enqueue(accountID string, session models.KickSession) {
	go func() {
		payload, err := json.Marshal(evaluationJob{AccountID: accountID, Session: session})
		if err != nil {
			log.Printf("failed to serialize evaluation job for session %s: %v", session.ID, err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.redis.RPush(ctx, analysisQueue, payload).Err(); err != nil {
			log.Printf("failed to enqueue evaluation for session %s: %v", session.ID, err)
		}
	}()
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, analysisQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}
		if len(result) < 2 {
			continue
		}

		var job evaluationJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse evaluation job: %v", id, err)
			continue
		}

		p.process(ctx, job)
	}
}

// process runs one evaluation end to end. Evaluate never errors, so every
// queued session resolves to some result; whether that result lands anywhere
// is decided purely by session id (a discarded session drops it).
func (p *Pool) process(ctx context.Context, job evaluationJob) {
	lang := models.LangZH
	if profile := p.profiles.Get(ctx, job.AccountID); profile != nil && profile.Language.Valid() {
		lang = profile.Language
	}

	history := p.history.Load(ctx, job.AccountID)
	analysis := p.evaluator.Evaluate(ctx, job.Session, history, lang)

	applied := p.resolver.ApplyAnalysis(ctx, job.AccountID, job.Session.ID, analysis)
	if !applied {
		log.Printf("analysis for session %s had no target (discarded), dropped", job.Session.ID)
		return
	}

	p.publishResult(ctx, job.AccountID, models.AnomalyEvent{
		SessionID: job.Session.ID,
		Status:    analysis.Severity,
		Reason:    analysis.Message,
	})
}

// publishResult pushes the completed analysis to the account's live websocket
// clients via pub/sub.
func (p *Pool) publishResult(ctx context.Context, accountID string, event models.AnomalyEvent) {
	msg := models.WSMessage{Type: "anomaly_result", Payload: event}
	data, _ := json.Marshal(msg)
	if err := p.redis.Publish(ctx, fmt.Sprintf("user_updates:%s", accountID), string(data)).Err(); err != nil {
		log.Printf("failed to publish anomaly result for session %s: %v", event.SessionID, err)
	}
}
