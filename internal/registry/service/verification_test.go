package service

import (
	"kyc-ledger/internal/audit"
	"kyc-ledger/internal/registry/models"
	dErrors "kyc-ledger/pkg/domain-errors"
)

// =============================================================================
// Verification Requests
// =============================================================================

func (s *ServiceSuite) TestAddKYCRequest() {
	s.mustAddBank("bank-a")

	err := s.service.AddKYCRequest(s.ctx, "bank-a", models.KYCRequestInput{
		CustomerName: "alice",
		Fingerprint:  "fp-alice",
	})
	s.Require().NoError(err)

	req, err := s.store.GetRequest(s.ctx, "fp-alice")
	s.Require().NoError(err)
	s.Equal("bank-a", req.Bank)
	s.Equal("alice", req.CustomerName)
	s.lastAuditOp(audit.OpAddKYCRequest, "bank-a", "fp-alice")
}

func (s *ServiceSuite) TestAddKYCRequest_DuplicateFingerprint() {
	s.mustAddBank("bank-a")
	s.mustAddBank("bank-b")
	in := models.KYCRequestInput{CustomerName: "alice", Fingerprint: "fp-alice"}
	s.Require().NoError(s.service.AddKYCRequest(s.ctx, "bank-a", in))

	err := s.service.AddKYCRequest(s.ctx, "bank-b", in)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestAddKYCRequest_UnknownBank() {
	err := s.service.AddKYCRequest(s.ctx, "ghost", models.KYCRequestInput{
		CustomerName: "alice",
		Fingerprint:  "fp-alice",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestAddKYCRequest_RevokedBank() {
	s.mustAddBank("bank-a")
	bank, err := s.store.GetBank(s.ctx, "bank-a")
	s.Require().NoError(err)
	bank.KYCPermission = false
	s.Require().NoError(s.store.UpdateBank(s.ctx, bank))

	err = s.service.AddKYCRequest(s.ctx, "bank-a", models.KYCRequestInput{
		CustomerName: "alice",
		Fingerprint:  "fp-alice",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodePermissionRevoked))

	// Guard failure means zero partial effect.
	_, err = s.store.GetRequest(s.ctx, "fp-alice")
	s.Require().Error(err)
}

func (s *ServiceSuite) TestRemoveKYCRequest() {
	s.mustAddBank("bank-a")
	s.mustAddBank("bank-b")
	in := models.KYCRequestInput{CustomerName: "alice", Fingerprint: "fp-alice"}
	s.Require().NoError(s.service.AddKYCRequest(s.ctx, "bank-a", in))

	// Deliberately permissive: a different bank may withdraw the request.
	s.Require().NoError(s.service.RemoveKYCRequest(s.ctx, "bank-b", in))
	s.lastAuditOp(audit.OpRemoveKYCRequest, "bank-b", "fp-alice")

	err := s.service.RemoveKYCRequest(s.ctx, "bank-b", in)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// =============================================================================
// Customer Lifecycle
// =============================================================================

func (s *ServiceSuite) TestRegisterCustomer() {
	s.mustAddBank("bank-a")
	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")

	customer, err := s.store.GetCustomer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("bank-a", customer.Owner)
	s.True(customer.Verified)
	s.Zero(customer.Upvotes)
	s.Zero(customer.Downvotes)

	bank, err := s.store.GetBank(s.ctx, "bank-a")
	s.Require().NoError(err)
	s.Equal(1, bank.KYCCount)
	s.lastAuditOp(audit.OpAddCustomer, "bank-a", "alice")
}

func (s *ServiceSuite) TestRegisterCustomer_ConsumesOpenRequest() {
	s.mustAddBank("bank-a")
	s.Require().NoError(s.service.AddKYCRequest(s.ctx, "bank-a", models.KYCRequestInput{
		CustomerName: "alice",
		Fingerprint:  "fp-alice",
	}))

	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")

	_, err := s.store.GetRequest(s.ctx, "fp-alice")
	s.Require().Error(err, "registration should cascade the open request away")

	// Cascade removal is audited alongside the registration itself.
	events := s.auditStore.All()
	s.Require().GreaterOrEqual(len(events), 3)
	s.Equal(audit.OpRemoveKYCRequest, events[len(events)-2].Operation)
	s.Equal(audit.OpAddCustomer, events[len(events)-1].Operation)
}

func (s *ServiceSuite) TestRegisterCustomer_Conflicts() {
	s.mustAddBank("bank-a")
	s.mustAddBank("bank-b")
	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")

	err := s.service.RegisterCustomer(s.ctx, "bank-b", models.RegisterCustomerRequest{
		Name:        "alice",
		Fingerprint: "fp-other",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "duplicate name")

	err = s.service.RegisterCustomer(s.ctx, "bank-b", models.RegisterCustomerRequest{
		Name:        "bob",
		Fingerprint: "fp-alice",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "duplicate fingerprint")
}

func (s *ServiceSuite) TestRemoveCustomer_OwnerOnly() {
	s.mustAddBank("bank-a")
	s.mustAddBank("bank-b")
	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")

	err := s.service.RemoveCustomer(s.ctx, "bank-b", "alice")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	s.Require().NoError(s.service.RemoveCustomer(s.ctx, "bank-a", "alice"))
	_, err = s.store.GetCustomer(s.ctx, "alice")
	s.Require().Error(err)
	s.lastAuditOp(audit.OpRemoveCustomer, "bank-a", "alice")
}

func (s *ServiceSuite) TestRemoveCustomer_CascadesRequest() {
	s.mustAddBank("bank-a")
	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")
	// A later request against the registered fingerprint.
	s.Require().NoError(s.service.AddKYCRequest(s.ctx, "bank-a", models.KYCRequestInput{
		CustomerName: "alice",
		Fingerprint:  "fp-alice",
	}))

	s.Require().NoError(s.service.RemoveCustomer(s.ctx, "bank-a", "alice"))
	_, err := s.store.GetRequest(s.ctx, "fp-alice")
	s.Require().Error(err)
}

func (s *ServiceSuite) TestModifyCustomer_ResetsVotesAndCascades() {
	s.mustAddBank("bank-a")
	s.mustAddBank("bank-b")
	s.mustRegisterCustomer("bank-a", "alice", "fp-old")
	_, err := s.service.UpvoteCustomer(s.ctx, "bank-b", "alice")
	s.Require().NoError(err)
	s.Require().NoError(s.service.AddKYCRequest(s.ctx, "bank-b", models.KYCRequestInput{
		CustomerName: "alice",
		Fingerprint:  "fp-old",
	}))

	err = s.service.ModifyCustomer(s.ctx, "bank-a", "alice", models.ModifyCustomerRequest{
		Fingerprint: "fp-new",
	})
	s.Require().NoError(err)

	customer, err := s.store.GetCustomer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("fp-new", customer.Fingerprint)
	s.Zero(customer.Upvotes)
	s.Zero(customer.Downvotes)
	s.True(customer.Verified, "modification does not recompute status, only votes do")

	_, err = s.store.GetRequest(s.ctx, "fp-old")
	s.Require().Error(err, "request keyed by the old fingerprint must be gone")
	s.lastAuditOp(audit.OpModifyCustomer, "bank-a", "alice")
}

func (s *ServiceSuite) TestModifyCustomer_ConflictLeavesNoTrace() {
	s.mustAddBank("bank-a")
	s.mustAddBank("bank-b")
	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")
	s.mustRegisterCustomer("bank-a", "bob", "fp-bob")
	s.Require().NoError(s.service.AddKYCRequest(s.ctx, "bank-b", models.KYCRequestInput{
		CustomerName: "alice",
		Fingerprint:  "fp-alice",
	}))

	err := s.service.ModifyCustomer(s.ctx, "bank-a", "alice", models.ModifyCustomerRequest{
		Fingerprint: "fp-bob",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	// The rejected modification must leave no observable change: the
	// request keyed by the old fingerprint is still open and the customer
	// record is untouched.
	request, err := s.store.GetRequest(s.ctx, "fp-alice")
	s.Require().NoError(err, "request keyed by the old fingerprint must survive a failed modify")
	s.Equal("bank-b", request.Bank)

	customer, err := s.store.GetCustomer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("fp-alice", customer.Fingerprint)
	s.lastAuditOp(audit.OpAddKYCRequest, "bank-b", "fp-alice")
}

func (s *ServiceSuite) TestModifyCustomer_KeepOwnFingerprint() {
	s.mustAddBank("bank-a")
	s.mustAddBank("bank-b")
	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")
	_, err := s.service.UpvoteCustomer(s.ctx, "bank-b", "alice")
	s.Require().NoError(err)

	// Re-submitting the customer's own fingerprint is not a conflict; the
	// attestations still reset because the record was touched.
	err = s.service.ModifyCustomer(s.ctx, "bank-a", "alice", models.ModifyCustomerRequest{
		Fingerprint: "fp-alice",
	})
	s.Require().NoError(err)

	customer, err := s.store.GetCustomer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Zero(customer.Upvotes)
}

func (s *ServiceSuite) TestModifyCustomer_NotOwner() {
	s.mustAddBank("bank-a")
	s.mustAddBank("bank-b")
	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")

	err := s.service.ModifyCustomer(s.ctx, "bank-b", "alice", models.ModifyCustomerRequest{
		Fingerprint: "fp-new",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

// =============================================================================
// Voting & Derived Status
// =============================================================================

func (s *ServiceSuite) TestVote_OwnerCannotVote() {
	s.mustAddBank("bank-a")
	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")

	_, err := s.service.UpvoteCustomer(s.ctx, "bank-a", "alice")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.service.DownvoteCustomer(s.ctx, "bank-a", "alice")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestVote_TalliesAndStatus() {
	s.mustAddBank("bank-a")
	s.mustAddBank("bank-b")
	s.mustAddBank("bank-c")
	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")

	resp, err := s.service.UpvoteCustomer(s.ctx, "bank-b", "alice")
	s.Require().NoError(err)
	s.Equal(1, resp.Upvotes)
	s.Zero(resp.Downvotes)
	s.True(resp.Verified)
	s.lastAuditOp(audit.OpUpvoteCustomer, "bank-b", "alice")

	// Below quorum, one net downvote flips status: down > up.
	resp, err = s.service.DownvoteCustomer(s.ctx, "bank-c", "alice")
	s.Require().NoError(err)
	s.True(resp.Verified, "tie keeps status")

	resp, err = s.service.DownvoteCustomer(s.ctx, "bank-b", "alice")
	s.Require().NoError(err)
	s.False(resp.Verified)
	s.lastAuditOp(audit.OpDownvoteCustomer, "bank-b", "alice")
}

// TestVote_QuorumScenario drives the five-bank flow where the second
// downvote simultaneously flips the customer unverified and strips the
// owning bank's permission: with 5 banks, 2 > 5/3 while 1 <= 5/3.
func (s *ServiceSuite) TestVote_QuorumScenario() {
	for _, addr := range []string{"bank-a", "bank-b", "bank-c", "bank-d", "bank-e"} {
		s.mustAddBank(addr)
	}
	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")

	for _, voter := range []string{"bank-b", "bank-c", "bank-d", "bank-e"} {
		_, err := s.service.UpvoteCustomer(s.ctx, voter, "alice")
		s.Require().NoError(err)
	}

	resp, err := s.service.DownvoteCustomer(s.ctx, "bank-b", "alice")
	s.Require().NoError(err)
	s.True(resp.Verified, "4 up / 1 down: 1 <= 5/3")
	owner, err := s.store.GetBank(s.ctx, "bank-a")
	s.Require().NoError(err)
	s.True(owner.KYCPermission)

	resp, err = s.service.DownvoteCustomer(s.ctx, "bank-c", "alice")
	s.Require().NoError(err)
	s.False(resp.Verified, "4 up / 2 down: 2 > 5/3")
	owner, err = s.store.GetBank(s.ctx, "bank-a")
	s.Require().NoError(err)
	s.False(owner.KYCPermission, "owner loses permission with the customer")
}

func (s *ServiceSuite) TestVote_OrphanedOwnerTolerated() {
	s.mustAddBank("bank-a")
	s.mustAddBank("bank-b")
	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")
	s.Require().NoError(s.service.RemoveBank(s.ctx, adminAddress, "bank-a"))

	resp, err := s.service.UpvoteCustomer(s.ctx, "bank-b", "alice")
	s.Require().NoError(err)
	s.Equal(1, resp.Upvotes)
}

func (s *ServiceSuite) TestVote_RevokedBankCannotVote() {
	for _, addr := range []string{"bank-a", "bank-b", "bank-c", "bank-d", "bank-e"} {
		s.mustAddBank(addr)
	}
	s.mustRegisterCustomer("bank-a", "alice", "fp-alice")
	for _, voter := range []string{"bank-b", "bank-c"} {
		_, err := s.service.DownvoteCustomer(s.ctx, voter, "alice")
		s.Require().NoError(err)
	}

	// bank-a lost permission via alice's downvotes; its other actions fail.
	err := s.service.RegisterCustomer(s.ctx, "bank-a", models.RegisterCustomerRequest{
		Name:        "bob",
		Fingerprint: "fp-bob",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodePermissionRevoked))
}
