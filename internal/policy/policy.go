// Package policy holds the pure threshold rules that derive verification
// outcomes from vote tallies. Every participant replaying the same operation
// history through these functions converges on identical derived state, so
// they must stay deterministic and free of side effects.
package policy

// MinQuorum is the minimum bank population before disagreement-based
// revocation applies. Below it, distributed disagreement cannot strip a
// status or a permission.
const MinQuorum = 5

// CustomerIsValid reports whether a customer's identity data is considered
// verified given its vote tallies and the current bank population.
//
// Two rules, each independently sufficient to invalidate:
//   - more downvotes than upvotes
//   - at or above quorum, downvotes exceed a third of all banks
func CustomerIsValid(upvotes, downvotes, totalBanks int) bool {
	if upvotes < downvotes {
		return false
	}
	if totalBanks >= MinQuorum && downvotes > totalBanks/3 {
		return false
	}
	return true
}

// BankIsValid reports whether a bank keeps its verification permission given
// a complaint count and the current bank population. Below quorum the answer
// is always true.
func BankIsValid(count, totalBanks int) bool {
	return totalBanks < MinQuorum || count <= totalBanks/3
}
