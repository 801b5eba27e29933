package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookpulse/internal/queue"
)

const (
	DefaultWorkerCount  = 2
	DefaultBatchSize    = 10
	DefaultBlockTimeout = 5 * time.Second
)

// Manager runs the worker goroutines that drain the feed stream.
type Manager struct {
	consumer    queue.Consumer
	handler     *Handler
	workerCount int
	batchSize   int64
	blockTime   time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// ManagerConfig tunes the worker pool.
type ManagerConfig struct {
	WorkerCount  int
	BatchSize    int64
	BlockTimeout time.Duration
}

func NewManager(consumer queue.Consumer, handler *Handler, cfg ManagerConfig) *Manager {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}
	return &Manager{
		consumer:    consumer,
		handler:     handler,
		workerCount: cfg.WorkerCount,
		batchSize:   cfg.BatchSize,
		blockTime:   cfg.BlockTimeout,
	}
}

// Start spins up the worker goroutines. Call Stop to drain and shut down.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	if err := m.consumer.EnsureGroup(m.ctx, queue.StreamFeed, queue.ConsumerGroupFeed); err != nil {
		return err
	}

	for i := 0; i < m.workerCount; i++ {
		workerID := i + 1
		// Consumer names must be unique across restarts and replicas, or
		// two processes would share a pending list.
		consumerName := fmt.Sprintf("worker-%d-%s", workerID, uuid.NewString()[:8])

		m.wg.Add(1)
		go m.runWorker(workerID, consumerName)
	}

	log.Printf("[Manager] Started %d workers on stream=%s group=%s",
		m.workerCount, queue.StreamFeed, queue.ConsumerGroupFeed)
	return nil
}

// Stop cancels the workers and blocks until they exit.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
	log.Printf("[Manager] All workers stopped")
}

func (m *Manager) runWorker(workerID int, consumerName string) {
	defer m.wg.Done()

	// Drain anything delivered but unacked by a previous incarnation.
	m.processPending(workerID, consumerName)

	for {
		select {
		case <-m.ctx.Done():
			log.Printf("[Worker-%d] Shutting down", workerID)
			return
		default:
			m.processBatch(workerID, consumerName)
		}
	}
}

func (m *Manager) processPending(workerID int, consumerName string) {
	for {
		messages, err := m.consumer.ReadPending(m.ctx, queue.StreamFeed, queue.ConsumerGroupFeed, consumerName, m.batchSize)
		if err != nil {
			log.Printf("[Worker-%d] read pending: %v", workerID, err)
			return
		}
		if len(messages) == 0 {
			return
		}
		m.handleMessages(workerID, messages)
	}
}

func (m *Manager) processBatch(workerID int, consumerName string) {
	messages, err := m.consumer.Read(
		m.ctx, queue.StreamFeed, queue.ConsumerGroupFeed, consumerName,
		m.batchSize, m.blockTime)
	if err != nil {
		if m.ctx.Err() != nil {
			return
		}
		log.Printf("[Worker-%d] read: %v", workerID, err)
		time.Sleep(time.Second) // back off on error
		return
	}
	if len(messages) == 0 {
		return
	}
	m.handleMessages(workerID, messages)
}

func (m *Manager) handleMessages(workerID int, messages []queue.Message) {
	for _, msg := range messages {
		if err := m.handler.HandleEvent(m.ctx, msg.Event); err != nil {
			// Ack anyway: the events only maintain caches, and a poison
			// message must not wedge the group.
			log.Printf("[Worker-%d] handle msgID=%s: %v", workerID, msg.ID, err)
		}
		if err := m.consumer.Ack(m.ctx, queue.StreamFeed, queue.ConsumerGroupFeed, msg.ID); err != nil {
			log.Printf("[Worker-%d] ack msgID=%s: %v", workerID, msg.ID, err)
		}
	}
}
