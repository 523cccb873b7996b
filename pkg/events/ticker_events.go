package events

import "time"

const TickerResolvedType = "TICKER_RESOLVED"

// TickerResolved is published once per finished resolution.
type TickerResolved struct {
	RequestID     string    `json:"requestId"`
	Query         string    `json:"query"`
	FinalQuery    string    `json:"finalQuery"`
	Market        string    `json:"market"`
	Language      string    `json:"language"`
	Symbols       []string  `json:"symbols"`
	Cycles        int       `json:"cycles"`
	LowConfidence bool      `json:"lowConfidence"`
	TimedOut      bool      `json:"timedOut"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func (e TickerResolved) EventType() string {
	return TickerResolvedType
}

func (e TickerResolved) Payload() map[string]interface{} {
	return map[string]interface{}{
		"requestId":     e.RequestID,
		"query":         e.Query,
		"finalQuery":    e.FinalQuery,
		"market":        e.Market,
		"language":      e.Language,
		"symbols":       e.Symbols,
		"cycles":        e.Cycles,
		"lowConfidence": e.LowConfidence,
		"timedOut":      e.TimedOut,
		"occurredAt":    e.OccurredAt.Format(time.RFC3339Nano),
	}
}

func (e TickerResolved) Timestamp() time.Time {
	return e.OccurredAt
}
