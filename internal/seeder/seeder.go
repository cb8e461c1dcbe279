// Package seeder populates a fresh ledger with demo data for local
// development. Everything goes through the service so the seeded state obeys
// the same guards and emits the same audit events as real traffic.
package seeder

import (
	"context"
	"fmt"
	"log/slog"

	"kyc-ledger/internal/registry/models"
)

// Registry is the slice of the ledger surface the seeder drives.
type Registry interface {
	AddBank(ctx context.Context, caller string, in models.AddBankRequest) error
	RegisterCustomer(ctx context.Context, caller string, in models.RegisterCustomerRequest) error
	UpvoteCustomer(ctx context.Context, caller, name string) (*models.VoteResponse, error)
	AddKYCRequest(ctx context.Context, caller string, in models.KYCRequestInput) error
}

// Seeder populates the ledger with demo banks and customers.
type Seeder struct {
	registry Registry
	admin    string
	logger   *slog.Logger
}

// New creates a new seeder acting as the given administrator.
func New(registry Registry, admin string, logger *slog.Logger) *Seeder {
	return &Seeder{
		registry: registry,
		admin:    admin,
		logger:   logger,
	}
}

// SeedAll enrolls a small consortium, registers customers, and casts a few
// votes so every endpoint has data to show.
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.Info("seeding demo data...")

	banks := []models.AddBankRequest{
		{Name: "First National", Address: "bank-first", RegNumber: "FN-001"},
		{Name: "Meridian Trust", Address: "bank-meridian", RegNumber: "MT-002"},
		{Name: "Harbor Savings", Address: "bank-harbor", RegNumber: "HS-003"},
		{Name: "Summit Credit", Address: "bank-summit", RegNumber: "SC-004"},
		{Name: "Atlas Commercial", Address: "bank-atlas", RegNumber: "AC-005"},
	}
	for _, b := range banks {
		if err := s.registry.AddBank(ctx, s.admin, b); err != nil {
			return fmt.Errorf("seed bank %s: %w", b.Address, err)
		}
	}

	customers := []struct {
		owner       string
		name        string
		fingerprint string
	}{
		{"bank-first", "alice-anderson", "fp-8f3a1c"},
		{"bank-first", "bob-brown", "fp-2d9e47"},
		{"bank-meridian", "charlie-chen", "fp-b61f05"},
		{"bank-harbor", "diana-davis", "fp-77c2ea"},
	}
	for _, c := range customers {
		if err := s.registry.RegisterCustomer(ctx, c.owner, models.RegisterCustomerRequest{
			Name:        c.name,
			Fingerprint: c.fingerprint,
		}); err != nil {
			return fmt.Errorf("seed customer %s: %w", c.name, err)
		}
	}

	// A few attestations so derived status has something to chew on.
	votes := []struct {
		voter string
		name  string
	}{
		{"bank-meridian", "alice-anderson"},
		{"bank-harbor", "alice-anderson"},
		{"bank-summit", "charlie-chen"},
	}
	for _, v := range votes {
		if _, err := s.registry.UpvoteCustomer(ctx, v.voter, v.name); err != nil {
			return fmt.Errorf("seed vote on %s: %w", v.name, err)
		}
	}

	// One open request awaiting registration.
	if err := s.registry.AddKYCRequest(ctx, "bank-atlas", models.KYCRequestInput{
		CustomerName: "eve-evans",
		Fingerprint:  "fp-4a08d9",
	}); err != nil {
		return fmt.Errorf("seed request: %w", err)
	}

	s.logger.Info("demo data seeded successfully",
		"banks", len(banks),
		"customers", len(customers),
	)
	return nil
}
