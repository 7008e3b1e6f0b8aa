package audit

import (
	"time"

	"github.com/google/uuid"
)

// Operation is the kind of mutation an audit row describes.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// Log is one immutable audit row. Exactly one of ActorID and SystemUpdateID
// is set. Snapshot is empty for deletes.
type Log struct {
	ID          uuid.UUID
	ContentType string
	ObjectID    uuid.UUID
	Operation   Operation
	Snapshot    map[string]any

	ActorID        *string
	SystemUpdateID *string

	CreatedAt time.Time
}

// Auditable is implemented by every entity that is written to the audit
// trail. AuditFields lists the persisted fields explicitly, already in
// JSON-friendly form (dates as YYYY-MM-DD, enums as their string value).
type Auditable interface {
	AuditContentType() string
	AuditObjectID() uuid.UUID
	AuditFields() map[string]any
}

// Auditables converts a typed slice for the bulk methods.
func Auditables[T Auditable](items []T) []Auditable {
	out := make([]Auditable, 0, len(items))
	for _, it := range items {
		out = append(out, it)
	}
	return out
}
