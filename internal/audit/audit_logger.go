package audit

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"
)

// Event types written to the audit stream.
const (
	EventCheckoutCreated = "CHECKOUT_CREATED"
	EventCoinsCredited   = "COINS_CREDITED"
	EventUnmatched       = "UNMATCHED_EVENT"
	EventAmountMismatch  = "AMOUNT_MISMATCH"
	EventCurrency        = "CURRENCY_MISMATCH"
	EventEntryExpired    = "ENTRY_EXPIRED"
	EventSweep           = "PENDING_SWEEP"
	EventError           = "ERROR"
)

type Event struct {
	Timestamp     time.Time `json:"timestamp"`
	EventType     string    `json:"event_type"`
	LedgerEntryID string    `json:"ledger_entry_id,omitempty"`
	SessionID     string    `json:"session_id,omitempty"`
	PlayerID      int64     `json:"player_id,omitempty"`
	Coins         int64     `json:"coins,omitempty"`
	Status        string    `json:"status"`
	Details       any       `json:"details,omitempty"`
}

// Logger writes one JSON line per business event. Sink defaults to the
// standard logrus logger.
type Logger struct {
	sink log.FieldLogger
}

func NewLogger() *Logger {
	return &Logger{sink: log.StandardLogger()}
}

// NewLoggerWithSink is used by tests to capture events.
func NewLoggerWithSink(sink log.FieldLogger) *Logger {
	return &Logger{sink: sink}
}

func (a *Logger) LogCheckout(entryID, sessionID string, playerID, coins int64, amountUSD string) {
	a.log(Event{
		EventType:     EventCheckoutCreated,
		LedgerEntryID: entryID,
		SessionID:     sessionID,
		PlayerID:      playerID,
		Coins:         coins,
		Status:        "PENDING",
		Details:       map[string]string{"amount_usd": amountUSD},
	})
}

func (a *Logger) LogCredit(entryID, sessionID string, playerID, coins int64) {
	a.log(Event{
		EventType:     EventCoinsCredited,
		LedgerEntryID: entryID,
		SessionID:     sessionID,
		PlayerID:      playerID,
		Coins:         coins,
		Status:        "COMPLETED",
	})
}

func (a *Logger) LogUnmatched(eventID, sessionID string, amountTotal int64) {
	a.log(Event{
		EventType: EventUnmatched,
		SessionID: sessionID,
		Status:    "UNMATCHED",
		Details: map[string]any{
			"provider_event_id": eventID,
			"amount_total":      amountTotal,
		},
	})
}

func (a *Logger) LogAmountMismatch(entryID, sessionID string, expected, reported int64) {
	a.log(Event{
		EventType:     EventAmountMismatch,
		LedgerEntryID: entryID,
		SessionID:     sessionID,
		Status:        "WARNING",
		Details: map[string]int64{
			"expected_minor": expected,
			"reported_minor": reported,
		},
	})
}

func (a *Logger) LogCurrencyMismatch(entryID, sessionID, expected, reported string) {
	a.log(Event{
		EventType:     EventCurrency,
		LedgerEntryID: entryID,
		SessionID:     sessionID,
		Status:        "WARNING",
		Details: map[string]string{
			"expected_currency": expected,
			"reported_currency": reported,
		},
	})
}

func (a *Logger) LogExpired(sessionID string, count int64) {
	a.log(Event{
		EventType: EventEntryExpired,
		SessionID: sessionID,
		Status:    "EXPIRED",
		Details:   map[string]int64{"entries": count},
	})
}

func (a *Logger) LogSweep(count int64, olderThan time.Time) {
	a.log(Event{
		EventType: EventSweep,
		Status:    "EXPIRED",
		Details: map[string]any{
			"entries":    count,
			"older_than": olderThan.UTC().Format(time.RFC3339),
		},
	})
}

func (a *Logger) LogError(entryID, sessionID string, err error) {
	a.log(Event{
		EventType:     EventError,
		LedgerEntryID: entryID,
		SessionID:     sessionID,
		Status:        "FAILED",
		Details:       map[string]string{"error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	event.Timestamp = time.Now().UTC()
	data, _ := json.Marshal(event)
	if event.EventType == EventUnmatched || event.EventType == EventError {
		a.sink.Errorf("AUDIT: %s", data)
		return
	}
	a.sink.Infof("AUDIT: %s", data)
}
