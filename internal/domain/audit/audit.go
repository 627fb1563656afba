package audit

import (
	"context"
	"time"
)

type Action string

const (
	ActionCreate   Action = "CREATE"
	ActionUpdate   Action = "UPDATE"
	ActionDelete   Action = "DELETE"
	ActionApprove  Action = "APPROVE"
	ActionDisburse Action = "DISBURSE"
)

const (
	EntityLoan    = "loan"
	EntityPayment = "payment"
	EntityProduct = "loan_product"
)

const DefaultSource = "loan-engine"

type Entry struct {
	EntityType    string
	EntityID      int64
	Action        Action
	Payload       any
	ActorID       int64
	ActorType     string
	Source        string
	CorrelationID string
	OccurredAt    time.Time
}

// Sink accepts audit entries. Implementations must never fail the caller.
type Sink interface {
	Record(ctx context.Context, entry Entry)
}

// Writer persists or forwards an entry. Errors are reported to the Recorder,
// which logs them.
type Writer interface {
	Write(ctx context.Context, entry Entry) error
}

type NopSink struct{}

func (NopSink) Record(context.Context, Entry) {}
