package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrMalformedRecord marks a raw review that cannot be normalized.
	// The caller drops the record and continues.
	ErrMalformedRecord = errors.New("malformed review record")

	// ErrSourceUnavailable marks a raw review source that could not be
	// reached or returned an unusable payload. Surfaced as-is, no retry
	// beyond the client's own attempts.
	ErrSourceUnavailable = errors.New("review source unavailable")

	ErrNotFound = errors.New("not found")
)

// ReviewSource supplies review records in the source-specific shape.
type ReviewSource interface {
	FetchReviews(ctx context.Context) ([]RawReview, error)
}

// ApprovalStore persists one approval record per review id.
type ApprovalStore interface {
	Get(ctx context.Context, reviewID int64) (ApprovalRecord, error)
	GetMany(ctx context.Context, reviewIDs []int64) (map[int64]ApprovalRecord, error)
	ListApprovedIDs(ctx context.Context, listingID *string) ([]int64, error)

	// Upsert creates on first write, updates afterwards. Safe under
	// concurrent writers of the same id (last write wins).
	Upsert(ctx context.Context, reviewID int64, isApproved bool, listingID *string) (ApprovalRecord, error)

	// EnsureRecord inserts a default (unapproved) record if none exists,
	// without touching the flag of an existing one. Used by the seeder to
	// denormalize listing ids.
	EnsureRecord(ctx context.Context, reviewID int64, listingID *string) error
}

// LimiterStore is the per-key request counter behind the HTTP rate limiter.
type LimiterStore interface {
	// Allow records one hit for key and reports whether it fits inside
	// limit hits per window, plus the remaining budget.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (ok bool, remaining int, err error)
}
