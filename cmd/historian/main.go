// cmd/historian is an asynchronous service that pops match event data
// from a Redis queue and persists it to a PostgreSQL database. Live
// match state never touches the database; the historian only records
// what already happened.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/emersongin/cardbattle-service/internal/database"
)

// MatchEventRecord holds minimal info about a single match event to be persisted.
type MatchEventRecord struct {
	RoomID       uuid.UUID              `json:"room_id"`
	EventIndex   int                    `json:"event_index"`
	ActorID      uuid.UUID              `json:"actor_id"`
	EventType    string                 `json:"event_type"`
	EventPayload map[string]interface{} `json:"event_payload"`
	Timestamp    int64                  `json:"timestamp"`
}

// HistorianService encapsulates the Redis + DB logic for capturing match
// events and marking matches abandoned when an inactivity threshold is
// reached.
type HistorianService struct {
	redisClient  *redis.Client
	batchSize    int
	flushDelay   time.Duration
	inactivity   time.Duration // duration until a match is marked "abandoned"
	lastActivity sync.Map      // map[uuid.UUID]time.Time per room

	batchMu  sync.Mutex
	batch    []MatchEventRecord
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewHistorianService constructs a HistorianService from environment variables or defaults.
func NewHistorianService() *HistorianService {
	batchSize := getEnvInt("HISTORIAN_BATCH_SIZE", 20)
	flushMs := getEnvInt("HISTORIAN_FLUSH_MS", 500)
	inactivitySec := getEnvInt("MATCH_INACTIVITY_TIMEOUT_SEC", 600) // default 10 min

	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &HistorianService{
		redisClient: rdb,
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		inactivity:  time.Duration(inactivitySec) * time.Second,
		batch:       make([]MatchEventRecord, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run starts the two main loops: draining the Redis queue into batched
// DB flushes, and the periodic inactivity sweep.
func (hs *HistorianService) Run() {
	database.ConnectDB()

	go hs.readRedisLoop()
	go hs.inactivityLoop()

	log.Println("cardbattle-historian service started.")
	<-hs.ctx.Done()
	log.Println("cardbattle-historian shutting down.")
}

// readRedisLoop continuously uses BLPop to retrieve events from the Redis queue.
func (hs *HistorianService) readRedisLoop() {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()

	queueName := getEnv("HISTORIAN_QUEUE_NAME", "cardbattle_events")

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			hs.flushBatchToDB()

		default:
			// BLPop with a 3-second timeout so context cancellation is handled.
			res, err := hs.redisClient.BLPop(hs.ctx, 3*time.Second, queueName).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				log.Printf("[ERROR] BLPop: %v\n", err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			// res[0] is the queue name and res[1] the payload.
			var record MatchEventRecord
			if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
				log.Printf("invalid event record: %v\n", err)
				continue
			}

			hs.lastActivity.Store(record.RoomID, time.Now())
			hs.appendToBatch(record)
		}
	}
}

// appendToBatch adds a record to the in-memory batch and flushes if the threshold is reached.
func (hs *HistorianService) appendToBatch(record MatchEventRecord) {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()

	hs.batch = append(hs.batch, record)
	if len(hs.batch) >= hs.batchSize {
		hs.flushBatchLocked()
	}
}

// flushBatchToDB flushes the current batch to the database in a single transaction.
func (hs *HistorianService) flushBatchToDB() {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	hs.flushBatchLocked()
}

func (hs *HistorianService) flushBatchLocked() {
	if len(hs.batch) == 0 {
		return
	}
	batchCopy := make([]MatchEventRecord, len(hs.batch))
	copy(batchCopy, hs.batch)
	hs.batch = hs.batch[:0]

	ctx := context.Background()
	err := beginTxFunc(ctx, database.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range batchCopy {
			if err := insertMatchEventTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertMatchEventTx: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] flushBatchToDB: %v\n", err)
	} else {
		log.Printf("Flushed %d events to DB.\n", len(batchCopy))
	}
}

// inactivityLoop periodically marks matches idle beyond the configured
// threshold as abandoned.
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
				roomID, ok1 := key.(uuid.UUID)
				last, ok2 := val.(time.Time)
				if ok1 && ok2 && now.Sub(last) > hs.inactivity {
					hs.markMatchAbandoned(roomID)
					hs.lastActivity.Delete(roomID)
				}
				return true
			})
		}
	}
}

// markMatchAbandoned marks a match 'abandoned' if it was still 'in_progress'.
func (hs *HistorianService) markMatchAbandoned(roomID uuid.UUID) {
	ctx := context.Background()
	err := beginTxFunc(ctx, database.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE matches
			SET status = 'abandoned', end_time = NOW()
			WHERE room_id = $1 AND status = 'in_progress'
		`
		_, e := tx.Exec(ctx, q, roomID)
		return e
	})
	if err != nil {
		log.Printf("failed to mark match %v abandoned: %v", roomID, err)
	} else {
		log.Printf("Marked match %v as 'abandoned' due to inactivity.", roomID)
	}
}

// insertMatchEventTx inserts one event row and upserts the match row.
func insertMatchEventTx(ctx context.Context, tx pgx.Tx, rec MatchEventRecord) error {
	upsertMatchQ := `
		INSERT INTO matches (room_id, status, start_time)
		VALUES ($1, 'in_progress', NOW())
		ON CONFLICT (room_id)
		DO UPDATE SET status = 'in_progress'
	`
	if _, err := tx.Exec(ctx, upsertMatchQ, rec.RoomID); err != nil {
		return err
	}

	eventInsertQ := `
		INSERT INTO match_events (
			room_id, event_index, actor_id, event_type, event_payload
		) VALUES ($1, $2, $3, $4, $5)
	`
	jsonPayload, err := json.Marshal(rec.EventPayload)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, eventInsertQ,
		rec.RoomID, rec.EventIndex, rec.ActorID, rec.EventType, jsonPayload,
	); err != nil {
		return err
	}

	// Both seats committing battle cards is the last event a match emits.
	if rec.EventType == "battle_cards_set" {
		finalizeQ := `
			UPDATE matches
			SET end_time = NOW()
			WHERE room_id = $1
		`
		if _, err := tx.Exec(ctx, finalizeQ, rec.RoomID); err != nil {
			return err
		}
	}
	return nil
}

// beginTxFunc starts a transaction, calls f, and commits or rolls back.
func beginTxFunc(ctx context.Context, pool *pgxpool.Pool, txOptions pgx.TxOptions, f func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx rollback error: %v; original error: %w", rbErr, err)
		}
		return err
	}
	return tx.Commit(ctx)
}

// Stop gracefully stops the historian service.
func (hs *HistorianService) Stop() {
	hs.cancelFn()
}

func main() {
	hs := NewHistorianService()
	go hs.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	hs.Stop()
	hs.flushBatchToDB()
	log.Println("Historian shutdown complete.")
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

// getEnvInt retrieves an integer from an environment variable or returns a default.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}
