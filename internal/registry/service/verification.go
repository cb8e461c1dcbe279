package service

import (
	"context"
	"errors"

	"kyc-ledger/internal/audit"
	"kyc-ledger/internal/policy"
	"kyc-ledger/internal/registry/guard"
	"kyc-ledger/internal/registry/models"
	"kyc-ledger/internal/registry/store"
	dErrors "kyc-ledger/pkg/domain-errors"
)

// AddKYCRequest raises a pending ask for cross-bank attestation of the
// fingerprint. The customer record does not have to exist yet.
func (s *Service) AddKYCRequest(ctx context.Context, caller string, in models.KYCRequestInput) error {
	return s.tx.RunInTx(ctx, func(st store.Store) error {
		bank, err := findBank(ctx, st, caller)
		if err != nil {
			return err
		}
		request, err := findRequest(ctx, st, in.Fingerprint)
		if err != nil {
			return err
		}

		if err := guard.Check(
			guard.BankEnabled(bank),
			guard.RequestAbsent(request),
		); err != nil {
			return err
		}

		if err := st.CreateRequest(ctx, &models.VerificationRequest{
			Fingerprint:  in.Fingerprint,
			Bank:         caller,
			CustomerName: in.CustomerName,
		}); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create verification request")
		}

		if s.metrics != nil {
			s.metrics.RequestsCreated.Inc()
		}
		s.emit(ctx, audit.OpAddKYCRequest, caller, in.Fingerprint)
		return nil
	})
}

// RemoveKYCRequest deletes an open request. Any authenticated caller may
// remove any pending request; the request must exist when called directly.
func (s *Service) RemoveKYCRequest(ctx context.Context, caller string, in models.KYCRequestInput) error {
	return s.tx.RunInTx(ctx, func(st store.Store) error {
		request, err := findRequest(ctx, st, in.Fingerprint)
		if err != nil {
			return err
		}

		if err := guard.Check(guard.RequestExists(request)); err != nil {
			return err
		}

		if err := st.DeleteRequest(ctx, in.Fingerprint); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete verification request")
		}

		s.emit(ctx, audit.OpRemoveKYCRequest, caller, in.Fingerprint)
		return nil
	})
}

// RegisterCustomer creates a customer record owned by the calling bank.
// Status starts verified with zero votes; any open request for the
// fingerprint is consumed by the registration.
func (s *Service) RegisterCustomer(ctx context.Context, caller string, in models.RegisterCustomerRequest) error {
	return s.tx.RunInTx(ctx, func(st store.Store) error {
		bank, err := findBank(ctx, st, caller)
		if err != nil {
			return err
		}
		existing, err := findCustomer(ctx, st, in.Name)
		if err != nil {
			return err
		}

		if err := guard.Check(
			guard.BankEnabled(bank),
			guard.CustomerAbsent(existing),
		); err != nil {
			return err
		}

		if err := st.CreateCustomer(ctx, &models.Customer{
			Name:        in.Name,
			Fingerprint: in.Fingerprint,
			Owner:       caller,
			Verified:    true,
		}); err != nil {
			if errors.Is(err, store.ErrConflict) {
				// Name was checked above, so the clash is the fingerprint.
				return dErrors.New(dErrors.CodeConflict, "fingerprint already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create customer")
		}

		if err := s.cleanupRequest(ctx, st, caller, in.Fingerprint); err != nil {
			return err
		}

		bank.KYCCount++
		if err := st.UpdateBank(ctx, bank); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update bank")
		}

		if s.metrics != nil {
			s.metrics.CustomersRegistered.Inc()
		}
		s.emit(ctx, audit.OpAddCustomer, caller, in.Name)
		return nil
	})
}

// RemoveCustomer deletes a customer owned by the calling bank, cascading
// removal of any open request for its fingerprint.
func (s *Service) RemoveCustomer(ctx context.Context, caller, name string) error {
	return s.tx.RunInTx(ctx, func(st store.Store) error {
		bank, err := findBank(ctx, st, caller)
		if err != nil {
			return err
		}
		customer, err := findCustomer(ctx, st, name)
		if err != nil {
			return err
		}

		if err := guard.Check(
			guard.BankEnabled(bank),
			guard.CustomerExists(customer),
			guard.CallerOwns(customer, caller),
		); err != nil {
			return err
		}

		if err := s.cleanupRequest(ctx, st, caller, customer.Fingerprint); err != nil {
			return err
		}
		if err := st.DeleteCustomer(ctx, name); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete customer")
		}

		if s.metrics != nil {
			s.metrics.CustomersRemoved.Inc()
		}
		s.emit(ctx, audit.OpRemoveCustomer, caller, name)
		return nil
	})
}

// ModifyCustomer replaces the customer's fingerprint. A data change
// invalidates all prior attestations: both vote counters reset to zero and
// the request keyed by the old fingerprint is cascaded away.
func (s *Service) ModifyCustomer(ctx context.Context, caller, name string, in models.ModifyCustomerRequest) error {
	return s.tx.RunInTx(ctx, func(st store.Store) error {
		bank, err := findBank(ctx, st, caller)
		if err != nil {
			return err
		}
		customer, err := findCustomer(ctx, st, name)
		if err != nil {
			return err
		}

		if err := guard.Check(
			guard.BankEnabled(bank),
			guard.CustomerExists(customer),
			guard.CallerOwns(customer, caller),
		); err != nil {
			return err
		}

		// The replacement fingerprint must be free before anything is
		// written. Discovering the conflict after the cascade would leave
		// the old request deleted for a rejected call.
		holder, err := findCustomerByFingerprint(ctx, st, in.Fingerprint)
		if err != nil {
			return err
		}
		if holder != nil && holder.Name != customer.Name {
			return dErrors.New(dErrors.CodeConflict, "fingerprint already registered")
		}

		// Old fingerprint read before overwrite; its request dies with it.
		oldFingerprint := customer.Fingerprint
		if err := s.cleanupRequest(ctx, st, caller, oldFingerprint); err != nil {
			return err
		}

		customer.Fingerprint = in.Fingerprint
		customer.Upvotes = 0
		customer.Downvotes = 0
		if err := st.UpdateCustomer(ctx, customer); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "fingerprint already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update customer")
		}

		s.emit(ctx, audit.OpModifyCustomer, caller, name)
		return nil
	})
}

// UpvoteCustomer records a positive attestation from a non-owning bank and
// recomputes derived statuses.
func (s *Service) UpvoteCustomer(ctx context.Context, caller, name string) (*models.VoteResponse, error) {
	return s.vote(ctx, caller, name, true)
}

// DownvoteCustomer records a negative attestation from a non-owning bank and
// recomputes derived statuses.
func (s *Service) DownvoteCustomer(ctx context.Context, caller, name string) (*models.VoteResponse, error) {
	return s.vote(ctx, caller, name, false)
}

func (s *Service) vote(ctx context.Context, caller, name string, up bool) (*models.VoteResponse, error) {
	var response *models.VoteResponse
	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		bank, err := findBank(ctx, st, caller)
		if err != nil {
			return err
		}
		customer, err := findCustomer(ctx, st, name)
		if err != nil {
			return err
		}

		if err := guard.Check(
			guard.BankEnabled(bank),
			guard.CustomerExists(customer),
			guard.CallerDoesNotOwn(customer, caller),
		); err != nil {
			return err
		}

		if up {
			customer.Upvotes++
		} else {
			customer.Downvotes++
		}

		totalBanks, err := st.CountBanks(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count banks")
		}

		// Derived state is recomputed from authoritative counts on every
		// vote, never cached.
		customer.Verified = policy.CustomerIsValid(customer.Upvotes, customer.Downvotes, totalBanks)
		if err := st.UpdateCustomer(ctx, customer); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update customer")
		}

		// The customer's downvote tally doubles as a reliability signal for
		// the owning bank. The owner may already be gone if the
		// administrator removed it; orphaned records skip this step.
		owner, err := findBank(ctx, st, customer.Owner)
		if err != nil {
			return err
		}
		if owner != nil {
			permitted := policy.BankIsValid(customer.Downvotes, totalBanks)
			if owner.KYCPermission && !permitted && s.metrics != nil {
				s.metrics.PermissionRevocations.Inc()
			}
			owner.KYCPermission = permitted
			if err := st.UpdateBank(ctx, owner); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update bank")
			}
		}

		operation := audit.OpUpvoteCustomer
		direction := "up"
		if !up {
			operation = audit.OpDownvoteCustomer
			direction = "down"
		}
		if s.metrics != nil {
			s.metrics.IncrementVotes(direction)
		}
		s.emit(ctx, operation, caller, name)

		response = &models.VoteResponse{
			Name:      customer.Name,
			Upvotes:   customer.Upvotes,
			Downvotes: customer.Downvotes,
			Verified:  customer.Verified,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}
