package service

import (
	dErrors "kyc-ledger/pkg/domain-errors"
)

func (s *ServiceSuite) TestViewCustomer() {
	s.mustAddBank("bank-a")
	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")

	view, err := s.service.ViewCustomer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", view.Name)
	s.Equal("fp-alice", view.Fingerprint)

	_, err = s.service.ViewCustomer(s.ctx, "nobody")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestCustomerStatus() {
	s.mustAddBank("bank-a")
	s.mustAddBank("bank-b")
	s.mustAddBank("bank-c")
	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")

	status, err := s.service.CustomerStatus(s.ctx, "alice")
	s.Require().NoError(err)
	s.True(status.Verified)

	_, err = s.service.DownvoteCustomer(s.ctx, "bank-b", "alice")
	s.Require().NoError(err)
	status, err = s.service.CustomerStatus(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(status.Verified)
}

func (s *ServiceSuite) TestBankQueries() {
	s.mustAddBank("bank-a")
	s.mustAddBank("bank-b")

	bank, err := s.service.BankDetails(s.ctx, "bank-a")
	s.Require().NoError(err)
	s.Equal("reg-bank-a", bank.RegNumber)

	reports, err := s.service.BankReports(s.ctx, "bank-a")
	s.Require().NoError(err)
	s.Zero(reports.Reports)

	banks, err := s.service.ListBanks(s.ctx)
	s.Require().NoError(err)
	s.Len(banks, 2)

	_, err = s.service.BankDetails(s.ctx, "ghost")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestListCustomers() {
	s.mustAddBank("bank-a")
	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")
	s.mustRegisterCustomer("bank-a", "bob", "fp-bob")

	views, err := s.service.ListCustomers(s.ctx)
	s.Require().NoError(err)
	s.Len(views, 2)
}
