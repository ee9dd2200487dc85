package rpoperation

import (
	"context"
	"time"
)

// Operation statuses mirrored from storage.
const (
	StatusProcessing = "PROCESSING"
	StatusSuccess    = "SUCCESS"
	StatusFailed     = "FAILED"
)

// Operation is one tracked multi-step request, poll-able by its client id.
type Operation struct {
	OperationID  string
	Operator     string
	Request      []byte // raw request payload as received
	Response     []byte // result payload once the operation finished
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// OperationRepository persists operation lifecycle records so interrupted
// clients can recover results instead of retrying blindly.
type OperationRepository interface {
	// SaveStart claims the operation id. Returns claimed=false when another
	// request already holds the id.
	SaveStart(ctx context.Context, operationID, operator string, request []byte) (claimed bool, err error)

	// SaveSuccess stores the final result and flips the status to SUCCESS.
	SaveSuccess(ctx context.Context, operationID string, response []byte) error

	// SaveError stores the failure message and flips the status to FAILED.
	SaveError(ctx context.Context, operationID, message string) error

	// UpdateResponse overwrites the stored response of a finished operation,
	// used when post-completion steps enrich the result.
	UpdateResponse(ctx context.Context, operationID string, response []byte) error

	// GetByID fetches one operation; gorm.ErrRecordNotFound when absent.
	GetByID(ctx context.Context, operationID string) (*Operation, error)

	// CleanupOld deletes finished operations older than the cutoff.
	CleanupOld(ctx context.Context, cutoff time.Time) (int64, error)
}
