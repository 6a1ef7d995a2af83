package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Vitaee/FlexReviewApi/internal/domain"
)

// bulkWriters bounds concurrent per-id writes during a bulk toggle.
const bulkWriters = 4

type ReviewService struct {
	source domain.ReviewSource
	store  domain.ApprovalStore
}

func NewReviewService(src domain.ReviewSource, st domain.ApprovalStore) *ReviewService {
	return &ReviewService{source: src, store: st}
}

// ListReviews fetches all raw reviews, normalizes them (dropping malformed
// records), left-joins approval state by review id in one bulk read, and
// applies the filters to the merged canonical shape. Source order is
// preserved; no ordering is promised on the wire.
func (s *ReviewService) ListReviews(ctx context.Context, f domain.ReviewFilters) ([]domain.NormalizedReview, error) {
	raws, err := s.source.FetchReviews(ctx)
	if err != nil {
		return nil, err
	}

	normalized := make([]domain.NormalizedReview, 0, len(raws))
	ids := make([]int64, 0, len(raws))
	for _, raw := range raws {
		nr, nerr := Normalize(raw)
		if nerr != nil {
			if errors.Is(nerr, domain.ErrMalformedRecord) {
				log.Warn().Err(nerr).Msg("dropping malformed review")
				continue
			}
			return nil, nerr
		}
		normalized = append(normalized, nr)
		ids = append(ids, nr.ID)
	}

	records, err := s.store.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.NormalizedReview, 0, len(normalized))
	for _, nr := range normalized {
		if rec, ok := records[nr.ID]; ok {
			nr.IsApproved = rec.IsApproved
		}
		if !f.Match(nr) {
			continue
		}
		out = append(out, nr)
	}
	return out, nil
}

// SetApproval writes one approval decision, creating the record lazily if
// the id was never acted on before. Ids absent from the raw source are
// accepted on purpose. Idempotent apart from the updatedAt refresh.
func (s *ReviewService) SetApproval(ctx context.Context, reviewID int64, isApproved bool, listingID *string) (domain.ApprovalResult, error) {
	rec, err := s.store.Upsert(ctx, reviewID, isApproved, listingID)
	if err != nil {
		return domain.ApprovalResult{}, err
	}
	log.Info().Int64("review_id", reviewID).Bool("is_approved", isApproved).Msg("approval updated")
	return domain.ApprovalResult{
		ReviewID:   rec.ReviewID,
		IsApproved: rec.IsApproved,
		ApprovedAt: rec.ApprovedAt,
		Message:    fmt.Sprintf("Review %d %s", reviewID, verb(isApproved)),
	}, nil
}

// SetApprovalBulk applies SetApproval semantics to every distinct id.
// Writes are atomic per id, not as a set: failed ids are logged, excluded
// from the count, and do not fail the batch.
func (s *ReviewService) SetApprovalBulk(ctx context.Context, reviewIDs []int64, isApproved bool) (domain.BulkApprovalResult, error) {
	unique := dedupe(reviewIDs)

	var updated atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(bulkWriters)
	for _, id := range unique {
		id := id
		g.Go(func() error {
			if _, err := s.store.Upsert(ctx, id, isApproved, nil); err != nil {
				log.Warn().Int64("review_id", id).Err(err).Msg("bulk approval write failed")
				return nil
			}
			updated.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	n := int(updated.Load())
	log.Info().Int("updated", n).Bool("is_approved", isApproved).Msg("bulk approval applied")
	return domain.BulkApprovalResult{
		UpdatedCount: n,
		IsApproved:   isApproved,
		Message:      fmt.Sprintf("%d reviews %s", n, verb(isApproved)),
	}, nil
}

// ListApprovedIDs is a pure read against the approval store; it never
// touches the raw source.
func (s *ReviewService) ListApprovedIDs(ctx context.Context, listingID *string) ([]int64, error) {
	return s.store.ListApprovedIDs(ctx, listingID)
}

func verb(approved bool) string {
	if approved {
		return "approved"
	}
	return "rejected"
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
