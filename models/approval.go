package models

// Approval states for pharmacy and delivery partner accounts. An admin
// moves an account out of Pending; only Approved accounts may log in.
const (
	ApprovalPending  = 0
	ApprovalApproved = 1
	ApprovalDeclined = 2
)
