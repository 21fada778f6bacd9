package shared

// TransferType classifies a ledger record by its origin
type TransferType int

const (
	TransferTypeInternalDrain TransferType = 1 // balance moved by an account lifecycle transition
	TransferTypeExternal      TransferType = 2 // client initiated transfer
)

func (t TransferType) String() string {
	switch t {
	case TransferTypeInternalDrain:
		return "INTERNAL_DRAIN"
	case TransferTypeExternal:
		return "EXTERNAL"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether t is one of the known transfer types
func (t TransferType) Valid() bool {
	return t == TransferTypeInternalDrain || t == TransferTypeExternal
}

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// EventType names the events shipped through the outbox
type EventType string

const (
	EventTypeTransferCommitted EventType = "transfer.committed"
)
