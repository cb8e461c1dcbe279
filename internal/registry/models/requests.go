package models

// KYCRequestInput carries the payload for raising or removing a
// verification request.
type KYCRequestInput struct {
	CustomerName string `json:"customer_name" validate:"required,notblank,max=64"`
	Fingerprint  string `json:"fingerprint" validate:"required,notblank,max=128"`
}

// RegisterCustomerRequest carries the payload for registering a customer.
type RegisterCustomerRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=64"`
	Fingerprint string `json:"fingerprint" validate:"required,notblank,max=128"`
}

// ModifyCustomerRequest carries the replacement fingerprint for an existing
// customer record.
type ModifyCustomerRequest struct {
	Fingerprint string `json:"fingerprint" validate:"required,notblank,max=128"`
}

// AddBankRequest carries the payload for enrolling a new bank.
type AddBankRequest struct {
	Name      string `json:"name" validate:"required,notblank,max=64"`
	Address   string `json:"address" validate:"required,notblank,max=128"`
	RegNumber string `json:"reg_number" validate:"required,notblank,max=64"`
}
