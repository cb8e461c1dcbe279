package service

import (
	"kyc-ledger/internal/audit"
	"kyc-ledger/internal/registry/models"
	dErrors "kyc-ledger/pkg/domain-errors"
)

func (s *ServiceSuite) TestAddBank() {
	err := s.service.AddBank(s.ctx, adminAddress, models.AddBankRequest{
		Name:      "First National",
		Address:   "bank-a",
		RegNumber: "reg-1",
	})
	s.Require().NoError(err)

	bank, err := s.store.GetBank(s.ctx, "bank-a")
	s.Require().NoError(err)
	s.True(bank.KYCPermission, "new banks start permitted")
	s.Zero(bank.Reports)
	s.Zero(bank.KYCCount)
	s.lastAuditOp(audit.OpAddBank, adminAddress, "bank-a")
}

func (s *ServiceSuite) TestAddBank_NonAdmin() {
	err := s.service.AddBank(s.ctx, "bank-x", models.AddBankRequest{
		Name:      "Interloper",
		Address:   "bank-y",
		RegNumber: "reg-9",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestAddBank_Conflicts() {
	s.mustAddBank("bank-a")

	err := s.service.AddBank(s.ctx, adminAddress, models.AddBankRequest{
		Name:      "Clone",
		Address:   "bank-a",
		RegNumber: "reg-clone",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "duplicate address")

	err = s.service.AddBank(s.ctx, adminAddress, models.AddBankRequest{
		Name:      "Clone",
		Address:   "bank-z",
		RegNumber: "reg-bank-a",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "duplicate registration number")
}

func (s *ServiceSuite) TestRemoveBank() {
	s.mustAddBank("bank-a")

	err := s.service.RemoveBank(s.ctx, "bank-a", "bank-a")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), "banks cannot remove themselves")

	s.Require().NoError(s.service.RemoveBank(s.ctx, adminAddress, "bank-a"))
	_, err = s.store.GetBank(s.ctx, "bank-a")
	s.Require().Error(err)
	s.lastAuditOp(audit.OpRemoveBank, adminAddress, "bank-a")

	err = s.service.RemoveBank(s.ctx, adminAddress, "bank-a")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// TestRemoveBank_ShrinksQuorum verifies that membership changes feed the
// threshold denominator: shrinking from 5 to 4 banks moves a customer back
// under quorum, so the next vote recomputes status under majority-only rules.
func (s *ServiceSuite) TestRemoveBank_ShrinksQuorum() {
	for _, addr := range []string{"bank-a", "bank-b", "bank-c", "bank-d", "bank-e"} {
		s.mustAddBank(addr)
	}
	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")
	for _, voter := range []string{"bank-b", "bank-c"} {
		_, err := s.service.UpvoteCustomer(s.ctx, voter, "alice")
		s.Require().NoError(err)
	}
	_, err := s.service.DownvoteCustomer(s.ctx, "bank-d", "alice")
	s.Require().NoError(err)
	resp, err := s.service.DownvoteCustomer(s.ctx, "bank-e", "alice")
	s.Require().NoError(err)
	s.False(resp.Verified, "2 up / 2 down with 5 banks: 2 > 5/3")

	s.Require().NoError(s.service.RemoveBank(s.ctx, adminAddress, "bank-e"))

	resp, err = s.service.UpvoteCustomer(s.ctx, "bank-d", "alice")
	s.Require().NoError(err)
	s.True(resp.Verified, "3 up / 2 down with 4 banks: below quorum, up >= down")
}

func (s *ServiceSuite) TestModifyBankPermission_RevokeOnly() {
	for _, addr := range []string{"bank-a", "bank-b", "bank-c", "bank-d", "bank-e"} {
		s.mustAddBank(addr)
	}

	// Clean record: re-evaluation leaves permission intact.
	resp, err := s.service.ModifyBankPermission(s.ctx, adminAddress, "bank-a")
	s.Require().NoError(err)
	s.True(resp.KYCPermission)
	s.lastAuditOp(audit.OpModifyBankKYCPermission, adminAddress, "bank-a")

	// Push the complaint tally over the threshold: 2 > 5/3.
	bank, err := s.store.GetBank(s.ctx, "bank-a")
	s.Require().NoError(err)
	bank.Reports = 2
	s.Require().NoError(s.store.UpdateBank(s.ctx, bank))

	resp, err = s.service.ModifyBankPermission(s.ctx, adminAddress, "bank-a")
	s.Require().NoError(err)
	s.False(resp.KYCPermission)

	// Dropping the tally afterwards does not restore permission.
	bank, err = s.store.GetBank(s.ctx, "bank-a")
	s.Require().NoError(err)
	bank.Reports = 0
	s.Require().NoError(s.store.UpdateBank(s.ctx, bank))

	resp, err = s.service.ModifyBankPermission(s.ctx, adminAddress, "bank-a")
	s.Require().NoError(err)
	s.False(resp.KYCPermission, "re-evaluation never grants")
}

func (s *ServiceSuite) TestModifyBankPermission_NonAdmin() {
	s.mustAddBank("bank-a")
	_, err := s.service.ModifyBankPermission(s.ctx, "bank-a", "bank-a")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
