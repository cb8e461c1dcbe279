package service

import (
	"context"
	"errors"
	"log/slog"

	"kyc-ledger/internal/audit"
	"kyc-ledger/internal/platform/metrics"
	"kyc-ledger/internal/registry/models"
	"kyc-ledger/internal/registry/store"
	dErrors "kyc-ledger/pkg/domain-errors"
)

// Service implements the verification and administration workflows over the
// registry store. Every mutating method takes the authenticated caller
// address explicitly; nothing is ever read from ambient state. All
// preconditions are checked inside the single-writer transaction, before the
// first write, so a rejected operation leaves zero observable change.
type Service struct {
	store   store.Store
	tx      Tx
	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	admin   string
}

type Option func(*Service)

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService wires the workflows. admin is the fixed administrator identity;
// it is immutable for the lifetime of the service.
func NewService(st store.Store, tx Tx, auditor *audit.Publisher, admin string, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:   st,
		tx:      tx,
		auditor: auditor,
		admin:   admin,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// findBank loads a bank, mapping absence to nil so guard predicates can
// express existence checks.
func findBank(ctx context.Context, st store.Store, address string) (*models.Bank, error) {
	bank, err := st.GetBank(ctx, address)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read bank")
	}
	return bank, nil
}

func findCustomer(ctx context.Context, st store.Store, name string) (*models.Customer, error) {
	customer, err := st.GetCustomer(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read customer")
	}
	return customer, nil
}

func findCustomerByFingerprint(ctx context.Context, st store.Store, fingerprint string) (*models.Customer, error) {
	customer, err := st.GetCustomerByFingerprint(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read customer")
	}
	return customer, nil
}

func findRequest(ctx context.Context, st store.Store, fingerprint string) (*models.VerificationRequest, error) {
	request, err := st.GetRequest(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read verification request")
	}
	return request, nil
}

// emit records the structured notification for a completed mutation.
func (s *Service) emit(ctx context.Context, operation, actor, key string) {
	if err := s.auditor.Emit(ctx, audit.Event{
		Operation: operation,
		Actor:     actor,
		Key:       key,
	}); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"operation", operation,
			"actor", actor,
			"error", err,
		)
	}
}

// cleanupRequest deletes the request keyed by fingerprint as a cascade of a
// customer mutation. Absence is tolerated here, unlike the external
// RemoveKYCRequest path; an event is emitted only when a request was
// actually deleted.
func (s *Service) cleanupRequest(ctx context.Context, st store.Store, actor, fingerprint string) error {
	err := st.DeleteRequest(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete verification request")
	}
	s.emit(ctx, audit.OpRemoveKYCRequest, actor, fingerprint)
	return nil
}

// refreshBankGauge republishes the quorum denominator after membership
// changes.
func (s *Service) refreshBankGauge(ctx context.Context, st store.Store) {
	if s.metrics == nil {
		return
	}
	count, err := st.CountBanks(ctx)
	if err != nil {
		return
	}
	s.metrics.SetRegisteredBanks(count)
}
