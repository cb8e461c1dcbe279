package models

// CustomerView is the public projection of a customer record.
type CustomerView struct {
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint"`
}

// CustomerStatusResponse reports the derived verified status.
type CustomerStatusResponse struct {
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}

// VoteResponse returns the tallies and derived status after a vote.
type VoteResponse struct {
	Name      string `json:"name"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	Verified  bool   `json:"verified"`
}

// BankReportsResponse reports the complaint count against a bank.
type BankReportsResponse struct {
	Address string `json:"address"`
	Reports int    `json:"reports"`
}

// PermissionResponse reports a bank's permission flag after re-evaluation.
type PermissionResponse struct {
	Address       string `json:"address"`
	KYCPermission bool   `json:"kyc_permission"`
}
