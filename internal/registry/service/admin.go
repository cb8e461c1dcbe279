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

// AddBank enrolls a new member bank with permission enabled. Admin only.
// Every enrollment grows the quorum denominator used by the threshold rules.
func (s *Service) AddBank(ctx context.Context, caller string, in models.AddBankRequest) error {
	return s.tx.RunInTx(ctx, func(st store.Store) error {
		existing, err := findBank(ctx, st, in.Address)
		if err != nil {
			return err
		}

		if err := guard.Check(
			guard.CallerIsAdmin(s.admin, caller),
			guard.BankAbsent(existing),
		); err != nil {
			return err
		}

		if err := st.CreateBank(ctx, &models.Bank{
			Address:       in.Address,
			Name:          in.Name,
			RegNumber:     in.RegNumber,
			KYCPermission: true,
		}); err != nil {
			if errors.Is(err, store.ErrConflict) {
				// Address was checked above, so the clash is the
				// registration number.
				return dErrors.New(dErrors.CodeConflict, "registration number already in use")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create bank")
		}

		s.refreshBankGauge(ctx, st)
		s.emit(ctx, audit.OpAddBank, caller, in.Address)
		return nil
	})
}

// RemoveBank withdraws a bank from membership. Admin only. Customers owned
// by the bank remain on record; vote recomputation tolerates the orphaned
// owner reference.
func (s *Service) RemoveBank(ctx context.Context, caller, address string) error {
	return s.tx.RunInTx(ctx, func(st store.Store) error {
		bank, err := findBank(ctx, st, address)
		if err != nil {
			return err
		}

		if err := guard.Check(
			guard.CallerIsAdmin(s.admin, caller),
			guard.BankExists(bank),
		); err != nil {
			return err
		}

		if err := st.DeleteBank(ctx, address); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete bank")
		}

		s.refreshBankGauge(ctx, st)
		s.emit(ctx, audit.OpRemoveBank, caller, address)
		return nil
	})
}

// ModifyBankPermission re-evaluates a bank's standing against its report
// tally. The operation can only revoke: a bank that fails the threshold and
// still holds permission loses it, and nothing here ever grants it back.
func (s *Service) ModifyBankPermission(ctx context.Context, caller, address string) (*models.PermissionResponse, error) {
	var response *models.PermissionResponse
	err := s.tx.RunInTx(ctx, func(st store.Store) error {
		bank, err := findBank(ctx, st, address)
		if err != nil {
			return err
		}

		if err := guard.Check(
			guard.CallerIsAdmin(s.admin, caller),
			guard.BankExists(bank),
		); err != nil {
			return err
		}

		totalBanks, err := st.CountBanks(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count banks")
		}

		if !policy.BankIsValid(bank.Reports, totalBanks) && bank.KYCPermission {
			bank.KYCPermission = false
			if err := st.UpdateBank(ctx, bank); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update bank")
			}
			if s.metrics != nil {
				s.metrics.PermissionRevocations.Inc()
			}
		}

		s.emit(ctx, audit.OpModifyBankKYCPermission, caller, address)
		response = &models.PermissionResponse{
			Address:       bank.Address,
			KYCPermission: bank.KYCPermission,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}
