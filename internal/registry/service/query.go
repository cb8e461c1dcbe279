package service

import (
	"context"

	"kyc-ledger/internal/registry/guard"
	"kyc-ledger/internal/registry/models"
	dErrors "kyc-ledger/pkg/domain-errors"
)

// Read paths run against the store directly; they never mutate state and do
// not take the writer lock.

// ViewCustomer returns the public projection of a customer record.
func (s *Service) ViewCustomer(ctx context.Context, name string) (*models.CustomerView, error) {
	customer, err := findCustomer(ctx, s.store, name)
	if err != nil {
		return nil, err
	}
	if err := guard.Check(guard.CustomerExists(customer)); err != nil {
		return nil, err
	}
	return &models.CustomerView{
		Name:        customer.Name,
		Fingerprint: customer.Fingerprint,
	}, nil
}

// CustomerStatus returns the derived verified status of a customer.
func (s *Service) CustomerStatus(ctx context.Context, name string) (*models.CustomerStatusResponse, error) {
	customer, err := findCustomer(ctx, s.store, name)
	if err != nil {
		return nil, err
	}
	if err := guard.Check(guard.CustomerExists(customer)); err != nil {
		return nil, err
	}
	return &models.CustomerStatusResponse{
		Name:     customer.Name,
		Verified: customer.Verified,
	}, nil
}

// BankDetails returns the full record of a member bank.
func (s *Service) BankDetails(ctx context.Context, address string) (*models.Bank, error) {
	bank, err := findBank(ctx, s.store, address)
	if err != nil {
		return nil, err
	}
	if err := guard.Check(guard.BankExists(bank)); err != nil {
		return nil, err
	}
	return bank, nil
}

// BankReports returns the complaint tally recorded against a bank.
func (s *Service) BankReports(ctx context.Context, address string) (*models.BankReportsResponse, error) {
	bank, err := findBank(ctx, s.store, address)
	if err != nil {
		return nil, err
	}
	if err := guard.Check(guard.BankExists(bank)); err != nil {
		return nil, err
	}
	return &models.BankReportsResponse{
		Address: bank.Address,
		Reports: bank.Reports,
	}, nil
}

// ListBanks returns all member banks.
func (s *Service) ListBanks(ctx context.Context) ([]*models.Bank, error) {
	banks, err := s.store.ListBanks(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list banks")
	}
	return banks, nil
}

// ListCustomers returns the public projection of every customer record.
func (s *Service) ListCustomers(ctx context.Context) ([]*models.CustomerView, error) {
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list customers")
	}
	views := make([]*models.CustomerView, 0, len(customers))
	for _, c := range customers {
		views = append(views, &models.CustomerView{
			Name:        c.Name,
			Fingerprint: c.Fingerprint,
		})
	}
	return views, nil
}
