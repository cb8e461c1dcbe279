package models

// Customer is an identity record subject to cross-bank attestation. Name is
// the primary key; Fingerprint is an opaque unique reference to the
// underlying identity data. Owner is the bank that registered the record and
// the only bank barred from voting on it.
type Customer struct {
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint"`
	Owner       string `json:"owner"`
	Verified    bool   `json:"verified"`
	Upvotes     int    `json:"upvotes"`
	Downvotes   int    `json:"downvotes"`
}

// Bank is a verification participant. Address is the primary key;
// RegNumber is unique across banks. KYCPermission gates every verification
// action; Reports accumulates complaints against the bank.
type Bank struct {
	Address       string `json:"address"`
	Name          string `json:"name"`
	RegNumber     string `json:"reg_number"`
	KYCPermission bool   `json:"kyc_permission"`
	Reports       int    `json:"reports"`
	KYCCount      int    `json:"kyc_count"`
}

// VerificationRequest is a bank's pending ask for cross-bank attestation,
// keyed by the customer's data fingerprint. At most one open request exists
// per fingerprint.
type VerificationRequest struct {
	Fingerprint  string `json:"fingerprint"`
	Bank         string `json:"bank"`
	CustomerName string `json:"customer_name"`
}
