package audit

import "time"

// Event is emitted from domain logic after every successful mutation. It is
// the only durable trail observers get, so the field set (operation name,
// acting identity, affected record key) is part of the external contract and
// must stay stable across stores and sinks.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	Actor     string    `json:"actor"`
	Key       string    `json:"key"`
}

// Operation names, one per mutating call on the ledger surface.
const (
	OpAddKYCRequest    = "addKYCRequest"
	OpRemoveKYCRequest = "removeKYCRequest"
	OpAddCustomer      = "addCustomer"
	OpRemoveCustomer   = "removeCustomer"
	OpModifyCustomer   = "modifyCustomer"
	OpUpvoteCustomer   = "upvoteCustomer"
	OpDownvoteCustomer = "downvoteCustomer"
	OpAddBank          = "addBank"
	OpRemoveBank       = "removeBank"

	OpModifyBankKYCPermission = "modifyBankKYCPermission"
)
