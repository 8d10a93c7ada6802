package tax

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"goflare.io/tax/models/enum"
)

const lookupSubjectPrefix = "tax.lookup"

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// LookupEvent records how a single lookup was resolved. The informational
// local rate and location code are only ever surfaced here.
type LookupEvent struct {
	Outcome           enum.Outcome   `json:"outcome,omitempty"`
	ErrorKind         enum.ErrorKind `json:"error_kind,omitempty"`
	StatusCode        *int           `json:"status_code,omitempty"`
	Rate              string         `json:"rate,omitempty"`
	LocalRate         string         `json:"local_rate,omitempty"`
	LocationCode      string         `json:"location_code,omitempty"`
	StateProvinceCode string         `json:"state_province_code,omitempty"`
	CountryCode       string         `json:"country_code,omitempty"`
	DurationMillis    int64          `json:"duration_ms"`
	OccurredAt        time.Time      `json:"occurred_at"`
}

func (e LookupEvent) Subject() string {
	if e.ErrorKind != enum.ErrorKindNone {
		return lookupSubjectPrefix + ".failure"
	}
	return lookupSubjectPrefix + ".success"
}

type EventManager struct {
	publisher Publisher
	logger    *zap.Logger
}

// NewEventManager returns a manager that drops events when natsConn is nil.
func NewEventManager(natsConn *nats.Conn, logger *zap.Logger) *EventManager {
	em := &EventManager{logger: logger}
	if natsConn != nil {
		em.publisher = natsConn
	}
	return em
}

func NewEventManagerWithPublisher(publisher Publisher, logger *zap.Logger) *EventManager {
	return &EventManager{publisher: publisher, logger: logger}
}

func (em *EventManager) Enabled() bool {
	return em != nil && em.publisher != nil
}

func (em *EventManager) PublishLookup(event LookupEvent) error {
	if !em.Enabled() {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal lookup event: %w", err)
	}

	if err := em.publisher.Publish(event.Subject(), data); err != nil {
		return fmt.Errorf("failed to publish lookup event: %w", err)
	}
	return nil
}

// Close drains the underlying connection when it is a NATS connection.
func (em *EventManager) Close() {
	if !em.Enabled() {
		return
	}
	if nc, ok := em.publisher.(*nats.Conn); ok {
		if err := nc.Drain(); err != nil {
			em.logger.Warn("Failed to drain nats connection", zap.Error(err))
		}
	}
}
