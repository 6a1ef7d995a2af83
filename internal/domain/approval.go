package domain

import "time"

// ApprovalRecord is one persisted approval decision per review id. Records
// are created lazily on first write and never deleted by normal operation.
type ApprovalRecord struct {
	ReviewID   int64
	ListingID  *string
	IsApproved bool
	ApprovedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ApprovalResult confirms a single approval toggle.
type ApprovalResult struct {
	ReviewID   int64
	IsApproved bool
	ApprovedAt *time.Time
	Message    string
}

// BulkApprovalResult confirms a bulk toggle. UpdatedCount is the number of
// ids actually written; partial success is allowed.
type BulkApprovalResult struct {
	UpdatedCount int
	IsApproved   bool
	Message      string
}
