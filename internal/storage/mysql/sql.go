package mysql

// Upsert keeps the approved_at transition inside SQL so concurrent
// last-write-wins callers stay consistent:
//   - rejecting clears approved_at,
//   - a false->true transition stamps it,
//   - re-approving preserves the original timestamp.
// Assignment order matters: approved_at must be computed while
// review_approvals.is_approved still holds the OLD value, so it comes first.
const upsertApprovalSQL = `
INSERT INTO review_approvals
  (review_id, listing_id, is_approved, approved_at)
VALUES
  (?, ?, ?, IF(?, CURRENT_TIMESTAMP, NULL))
ON DUPLICATE KEY UPDATE
  listing_id  = COALESCE(VALUES(listing_id), review_approvals.listing_id),
  approved_at = CASE
                  WHEN VALUES(is_approved) = 0 THEN NULL
                  WHEN review_approvals.is_approved = 1 THEN review_approvals.approved_at
                  ELSE CURRENT_TIMESTAMP
                END,
  is_approved = VALUES(is_approved),
  updated_at  = CURRENT_TIMESTAMP
`

// EnsureRecord inserts a default unapproved row and only backfills
// listing_id on conflict; flags and timestamps of existing rows are left
// alone.
const ensureRecordSQL = `
INSERT INTO review_approvals (review_id, listing_id, is_approved)
VALUES (?, ?, 0)
ON DUPLICATE KEY UPDATE
  listing_id = COALESCE(review_approvals.listing_id, VALUES(listing_id))
`

const getApprovalSQL = `
SELECT review_id, listing_id, is_approved, approved_at, created_at, updated_at
FROM review_approvals
WHERE review_id = ?
`

const getManyPrefix = `
SELECT review_id, listing_id, is_approved, approved_at, created_at, updated_at
FROM review_approvals
WHERE review_id IN `

const listApprovedSQL = `
SELECT review_id
FROM review_approvals
WHERE is_approved = 1
ORDER BY review_id
`

const listApprovedByListingSQL = `
SELECT review_id
FROM review_approvals
WHERE is_approved = 1 AND listing_id = ?
ORDER BY review_id
`
