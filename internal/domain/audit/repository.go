package audit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Insert writes all logs in a single statement, in order.
	Insert(ctx context.Context, logs []Log) error
	// ListForObject returns the trail of one object, newest first.
	ListForObject(ctx context.Context, contentType string, objectID uuid.UUID) ([]Log, error)
}

// Locator reports whether a row still exists in the store. The Auditor
// uses it to refuse auditing a delete that already happened.
type Locator interface {
	Exists(ctx context.Context, contentType string, id uuid.UUID) (bool, error)
}
