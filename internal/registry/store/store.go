package store

import (
	"context"

	"kyc-ledger/internal/registry/models"
	dErrors "kyc-ledger/pkg/domain-errors"
)

// Sentinel domain errors shared by all store implementations. Services wrap
// them with entity-specific messages exactly once at the workflow boundary.
var (
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")
	ErrConflict = dErrors.New(dErrors.CodeConflict, "record already exists")
)

// Store is the keyed persistence layer for the three registry collections.
// It carries no business logic: uniqueness and existence are the only
// invariants it enforces.
//
// Error Contract:
// - Get/Update/Delete return ErrNotFound when the keyed record does not exist
// - Create returns ErrConflict when a uniqueness invariant would break
// - Other failures are wrapped infrastructure errors
type Store interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomer(ctx context.Context, name string) (*models.Customer, error)
	GetCustomerByFingerprint(ctx context.Context, fingerprint string) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, name string) error
	ListCustomers(ctx context.Context) ([]*models.Customer, error)

	CreateBank(ctx context.Context, bank *models.Bank) error
	GetBank(ctx context.Context, address string) (*models.Bank, error)
	UpdateBank(ctx context.Context, bank *models.Bank) error
	DeleteBank(ctx context.Context, address string) error
	ListBanks(ctx context.Context) ([]*models.Bank, error)
	CountBanks(ctx context.Context) (int, error)

	CreateRequest(ctx context.Context, request *models.VerificationRequest) error
	GetRequest(ctx context.Context, fingerprint string) (*models.VerificationRequest, error)
	DeleteRequest(ctx context.Context, fingerprint string) error
}

// Transactor is implemented by stores that can scope a sequence of writes to
// one atomic unit. fn receives a view of the store bound to that unit; the
// writes apply together or not at all. Stores whose individual operations
// already apply atomically in process memory need not implement it.
type Transactor interface {
	InTx(ctx context.Context, fn func(Store) error) error
}
