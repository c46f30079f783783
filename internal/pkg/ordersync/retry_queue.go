package ordersync

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/storelink/shiprocket-bridge/internal/pkg/shiprocket"
)

const (
	// MaxAttempts is the attempt count at which an entry is evicted for
	// manual intervention.
	MaxAttempts = 3

	// RetryCooldown gates how soon a failed webhook becomes retryable again.
	RetryCooldown = 5 * time.Minute
)

// FailedWebhook is one queued order webhook awaiting a retry.
type FailedWebhook struct {
	Webhook   shiprocket.OrderWebhook `json:"webhook"`
	Timestamp time.Time               `json:"timestamp"`
	Attempts  int                     `json:"attempts"`
	LastError string                  `json:"lastError"`
}

// QueueStatus is the inspection view served by the webhook status endpoint.
type QueueStatus struct {
	QueueSize int               `json:"queueSize"`
	Items     []QueueStatusItem `json:"items"`
}

type QueueStatusItem struct {
	OrderID   string    `json:"orderId"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"lastError"`
	Timestamp time.Time `json:"timestamp"`
}

// RetryQueue holds failed order webhooks in process memory, keyed by
// ShipRocket's order id. It is deliberately not persisted: a restart drops
// all pending retries. Access is serialized with a mutex so concurrent
// failures for the same order id cannot interleave attempt counts.
type RetryQueue struct {
	mu      sync.Mutex
	entries map[string]*FailedWebhook

	now func() time.Time
}

func NewRetryQueue() *RetryQueue {
	return &RetryQueue{
		entries: make(map[string]*FailedWebhook),
		now:     time.Now,
	}
}

// AddFailure records a failed webhook: first failure inserts with one
// attempt, subsequent failures increment the count and refresh the error and
// timestamp.
func (q *RetryQueue) AddFailure(webhook shiprocket.OrderWebhook, errMsg string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.entries[webhook.OrderID]
	if ok {
		entry.Attempts++
		entry.LastError = errMsg
		entry.Timestamp = q.now()
	} else {
		entry = &FailedWebhook{
			Webhook:   webhook,
			Timestamp: q.now(),
			Attempts:  1,
			LastError: errMsg,
		}
		q.entries[webhook.OrderID] = entry
	}

	log.Warnf("[RetryQueue] queued failed webhook: order=%s attempts=%d", webhook.OrderID, entry.Attempts)
}

// Retryable returns entries whose cool-down has elapsed and whose attempt
// count is below the maximum. The same scan permanently evicts entries that
// have hit the maximum, logging them as needing manual intervention.
func (q *RetryQueue) Retryable() []FailedWebhook {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	var retryable []FailedWebhook

	for orderID, entry := range q.entries {
		if entry.Attempts >= MaxAttempts {
			delete(q.entries, orderID)
			log.Errorf("[RetryQueue] max retry attempts reached, manual intervention required: order=%s attempts=%d lastError=%s",
				orderID, entry.Attempts, entry.LastError)
			continue
		}
		if now.Sub(entry.Timestamp) > RetryCooldown {
			retryable = append(retryable, *entry)
		}
	}

	return retryable
}

// Get returns the queued webhook for an order id, if any.
func (q *RetryQueue) Get(orderID string) (FailedWebhook, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.entries[orderID]
	if !ok {
		return FailedWebhook{}, false
	}
	return *entry, true
}

// Remove acknowledges a successful retry.
func (q *RetryQueue) Remove(orderID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.entries, orderID)
}

// Status snapshots the queue for monitoring.
func (q *RetryQueue) Status() QueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	status := QueueStatus{
		QueueSize: len(q.entries),
		Items:     make([]QueueStatusItem, 0, len(q.entries)),
	}
	for orderID, entry := range q.entries {
		status.Items = append(status.Items, QueueStatusItem{
			OrderID:   orderID,
			Attempts:  entry.Attempts,
			LastError: entry.LastError,
			Timestamp: entry.Timestamp,
		})
	}
	return status
}
