package rpfinal

import (
	"context"

	"wbhub/internal/app/domains/entity/etsupply"
)

// FinalRepository tracks the final supply created per account.
type FinalRepository interface {
	// Save records a newly created final supply.
	Save(ctx context.Context, record *etsupply.FinalRecord) error

	// GetLatest returns the most recently recorded final supply for the
	// account, or nil when the account never had one.
	GetLatest(ctx context.Context, account string) (*etsupply.FinalRecord, error)
}
