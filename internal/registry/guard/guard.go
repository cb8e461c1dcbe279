// Package guard provides the composable precondition checks evaluated before
// any registry mutation. Workflows load the records they touch, then run an
// ordered predicate list; the first failing predicate aborts the operation
// with its specific domain error and nothing is written.
package guard

import (
	"kyc-ledger/internal/registry/models"
	dErrors "kyc-ledger/pkg/domain-errors"
)

// Predicate is a single precondition over already-loaded state.
type Predicate func() error

// Check evaluates predicates in declared order, short-circuiting on the
// first failure.
func Check(preds ...Predicate) error {
	for _, p := range preds {
		if err := p(); err != nil {
			return err
		}
	}
	return nil
}

// BankExists requires the bank record to be present.
func BankExists(b *models.Bank) Predicate {
	return func() error {
		if b == nil {
			return dErrors.New(dErrors.CodeNotFound, "bank not found")
		}
		return nil
	}
}

// BankAbsent requires no bank record under the identity.
func BankAbsent(b *models.Bank) Predicate {
	return func() error {
		if b != nil {
			return dErrors.New(dErrors.CodeConflict, "bank already exists")
		}
		return nil
	}
}

// BankEnabled requires the bank's verification permission to be active.
// Implies BankExists.
func BankEnabled(b *models.Bank) Predicate {
	return func() error {
		if b == nil {
			return dErrors.New(dErrors.CodeNotFound, "bank not found")
		}
		if !b.KYCPermission {
			return dErrors.New(dErrors.CodePermissionRevoked, "bank is not permitted to perform verification")
		}
		return nil
	}
}

// CustomerExists requires the customer record to be present.
func CustomerExists(c *models.Customer) Predicate {
	return func() error {
		if c == nil {
			return dErrors.New(dErrors.CodeNotFound, "customer not found")
		}
		return nil
	}
}

// CustomerAbsent requires no customer record under the name.
func CustomerAbsent(c *models.Customer) Predicate {
	return func() error {
		if c != nil {
			return dErrors.New(dErrors.CodeConflict, "customer already exists")
		}
		return nil
	}
}

// RequestExists requires an open verification request for the fingerprint.
func RequestExists(r *models.VerificationRequest) Predicate {
	return func() error {
		if r == nil {
			return dErrors.New(dErrors.CodeNotFound, "verification request not found")
		}
		return nil
	}
}

// RequestAbsent requires no open verification request for the fingerprint.
func RequestAbsent(r *models.VerificationRequest) Predicate {
	return func() error {
		if r != nil {
			return dErrors.New(dErrors.CodeConflict, "verification request already exists")
		}
		return nil
	}
}

// CallerOwns requires the authenticated caller to be the customer's owning
// bank.
func CallerOwns(c *models.Customer, caller string) Predicate {
	return func() error {
		if c == nil || c.Owner != caller {
			return dErrors.New(dErrors.CodeForbidden, "only the owning bank may act on this customer")
		}
		return nil
	}
}

// CallerDoesNotOwn bars the owning bank from attesting its own customer.
func CallerDoesNotOwn(c *models.Customer, caller string) Predicate {
	return func() error {
		if c != nil && c.Owner == caller {
			return dErrors.New(dErrors.CodeForbidden, "a bank cannot vote on its own customer")
		}
		return nil
	}
}

// CallerIsAdmin requires the authenticated caller to be the fixed
// administrator identity.
func CallerIsAdmin(admin, caller string) Predicate {
	return func() error {
		if caller == "" || caller != admin {
			return dErrors.New(dErrors.CodeUnauthorized, "caller is not the administrator")
		}
		return nil
	}
}
