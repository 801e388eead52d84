// cmd/historian/historian.go is an asynchronous historian service that pops
// action records from the Redis queue and persists them to PostgreSQL.
package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"

	"github.com/brokeio/brokeio/internal/cache"
	"github.com/brokeio/brokeio/internal/database"
	"github.com/brokeio/brokeio/internal/models"
)

// HistorianService drains the Redis action queue into Postgres in batches
// and marks sessions abandoned after a period of inactivity.
type HistorianService struct {
	queue      *cache.Queue
	repo       *database.Repo
	batchSize  int
	flushDelay time.Duration
	inactivity time.Duration

	lastActivity sync.Map // map[uuid.UUID]time.Time per session

	batchMu  sync.Mutex
	batch    []models.ActionRecord
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewHistorianService constructs the service from environment variables or defaults.
func NewHistorianService(queue *cache.Queue, repo *database.Repo) *HistorianService {
	batchSize := getEnvInt("HISTORIAN_BATCH_SIZE", 20)
	flushMs := getEnvInt("HISTORIAN_FLUSH_MS", 500)
	inactivitySec := getEnvInt("SESSION_INACTIVITY_TIMEOUT_SEC", 600)

	ctx, cancel := context.WithCancel(context.Background())
	return &HistorianService{
		queue:      queue,
		repo:       repo,
		batchSize:  batchSize,
		flushDelay: time.Duration(flushMs) * time.Millisecond,
		inactivity: time.Duration(inactivitySec) * time.Second,
		batch:      make([]models.ActionRecord, 0, batchSize),
		ctx:        ctx,
		cancelFn:   cancel,
	}
}

// Run starts the queue drain loop and the inactivity sweep, then blocks
// until the context is cancelled.
func (hs *HistorianService) Run() {
	go hs.readQueueLoop()
	go hs.inactivityLoop()

	log.Println("brokeio-historian service started.")
	<-hs.ctx.Done()
	log.Println("brokeio-historian shutting down.")
}

// readQueueLoop pops records off the queue, accumulating a batch that is
// flushed on size or on a timer.
func (hs *HistorianService) readQueueLoop() {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()

	for {
		select {
		case <-hs.ctx.Done():
			hs.flushBatch()
			return

		case <-ticker.C:
			hs.flushBatch()

		default:
			// Short BLPop timeout so cancellation is noticed promptly.
			rec, err := hs.queue.Pop(hs.ctx, 3*time.Second)
			if err != nil {
				log.Printf("[ERROR] queue pop: %v\n", err)
				continue
			}
			if rec == nil {
				continue
			}
			hs.lastActivity.Store(rec.SessionID, time.Now())
			hs.appendToBatch(*rec)
		}
	}
}

// appendToBatch adds a record and flushes once the batch threshold is reached.
func (hs *HistorianService) appendToBatch(rec models.ActionRecord) {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()

	hs.batch = append(hs.batch, rec)
	if len(hs.batch) >= hs.batchSize {
		hs.flushLocked()
	}
}

func (hs *HistorianService) flushBatch() {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	hs.flushLocked()
}

// flushLocked writes the pending batch in a single transaction. Assumes
// batchMu is held.
func (hs *HistorianService) flushLocked() {
	if len(hs.batch) == 0 {
		return
	}
	batchCopy := make([]models.ActionRecord, len(hs.batch))
	copy(batchCopy, hs.batch)
	hs.batch = hs.batch[:0]

	if err := hs.repo.InsertActionRecords(context.Background(), batchCopy); err != nil {
		log.Printf("[ERROR] flush batch: %v\n", err)
	} else {
		log.Printf("Flushed %d actions to DB.\n", len(batchCopy))
	}
}

// inactivityLoop periodically marks sessions abandoned when no action has
// arrived within the configured threshold.
func (hs *HistorianService) inactivityLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()
			hs.lastActivity.Range(func(key, val interface{}) bool {
				sessionID, ok1 := key.(uuid.UUID)
				last, ok2 := val.(time.Time)
				if ok1 && ok2 && now.Sub(last) > hs.inactivity {
					hs.markSessionAbandoned(sessionID)
					hs.lastActivity.Delete(sessionID)
				}
				return true
			})
		}
	}
}

// markSessionAbandoned flips a still-active session row to 'ABANDONED' in
// the database. The in-memory engine is untouched; this is bookkeeping for
// sessions whose server went away mid-game.
func (hs *HistorianService) markSessionAbandoned(sessionID uuid.UUID) {
	if err := hs.repo.MarkSessionAbandoned(context.Background(), sessionID); err != nil {
		log.Printf("failed to mark session %v abandoned: %v", sessionID, err)
	} else {
		log.Printf("Marked session %v as 'ABANDONED' due to inactivity.", sessionID)
	}
}

func main() {
	ctx := context.Background()

	queue, err := cache.Connect(ctx)
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	defer queue.Close()

	pool, err := database.Connect(ctx)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer pool.Close()

	hs := NewHistorianService(queue, database.NewRepo(pool))
	hs.Run()
}

// getEnvInt parses an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
