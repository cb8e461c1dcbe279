package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomerIsValid(t *testing.T) {
	tests := []struct {
		name       string
		upvotes    int
		downvotes  int
		totalBanks int
		want       bool
	}{
		{"fresh customer with no votes", 0, 0, 1, true},
		{"more downvotes than upvotes below quorum", 2, 3, 4, false},
		{"equal votes stay valid", 3, 3, 4, true},
		{"downvotes within third at quorum", 10, 1, 10, true},
		{"downvotes exceed third at quorum", 1, 4, 10, false},
		{"downvote rule truncates division", 5, 3, 10, true}, // 3 > 10/3=3 is false
		{"one over truncated third", 5, 4, 10, false},        // 4 > 3
		{"quorum rule suspended below five banks", 9, 2, 4, true},
		{"both rules violated", 1, 4, 5, false},
		{"exactly at quorum boundary", 2, 2, 5, false}, // 2 > 5/3=1
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CustomerIsValid(tt.upvotes, tt.downvotes, tt.totalBanks))
		})
	}
}

func TestBankIsValid(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		totalBanks int
		want       bool
	}{
		{"no complaints", 0, 10, true},
		{"below quorum is always valid", 100, 4, true},
		{"within third at quorum", 1, 5, true},
		{"exceeds third at quorum", 2, 5, false},
		{"boundary of truncated third", 3, 10, true},
		{"one over truncated third", 4, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BankIsValid(tt.count, tt.totalBanks))
		})
	}
}

// The two rules of CustomerIsValid are independently sufficient: neither
// failing alone may be rescued by the other passing.
func TestCustomerIsValidRulesIndependent(t *testing.T) {
	// First rule fails, second passes.
	assert.False(t, CustomerIsValid(0, 1, 100))
	// Second rule fails, first passes.
	assert.False(t, CustomerIsValid(50, 40, 5))
}
