package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Vitaee/FlexReviewApi/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Upsert(ctx context.Context, reviewID int64, isApproved bool, listingID *string) (domain.ApprovalRecord, error) {
	_, err := r.db.ExecContext(ctx, upsertApprovalSQL,
		reviewID,
		valStr(listingID),
		isApproved,
		isApproved,
	)
	if err != nil {
		return domain.ApprovalRecord{}, err
	}
	return r.Get(ctx, reviewID)
}

func (r *Repo) EnsureRecord(ctx context.Context, reviewID int64, listingID *string) error {
	_, err := r.db.ExecContext(ctx, ensureRecordSQL, reviewID, valStr(listingID))
	return err
}

func (r *Repo) Get(ctx context.Context, reviewID int64) (domain.ApprovalRecord, error) {
	row := r.db.QueryRowContext(ctx, getApprovalSQL, reviewID)
	rec, err := scanApproval(row)
	if err == sql.ErrNoRows {
		return domain.ApprovalRecord{}, domain.ErrNotFound
	}
	return rec, err
}

// GetMany is the bulk read behind the list merge: one round trip for all
// ids. Ids with no record are simply absent from the map.
func (r *Repo) GetMany(ctx context.Context, reviewIDs []int64) (map[int64]domain.ApprovalRecord, error) {
	out := make(map[int64]domain.ApprovalRecord, len(reviewIDs))
	if len(reviewIDs) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(reviewIDs))
	args := make([]any, len(reviewIDs))
	for i, id := range reviewIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	q := getManyPrefix + "(" + strings.Join(placeholders, ",") + ")"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		out[rec.ReviewID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) ListApprovedIDs(ctx context.Context, listingID *string) ([]int64, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if listingID != nil {
		rows, err = r.db.QueryContext(ctx, listApprovedByListingSQL, *listingID)
	} else {
		rows, err = r.db.QueryContext(ctx, listApprovedSQL)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanApproval(row rowScanner) (domain.ApprovalRecord, error) {
	var (
		rec        domain.ApprovalRecord
		listingID  sql.NullString
		approvedAt sql.NullTime
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := row.Scan(&rec.ReviewID, &listingID, &rec.IsApproved, &approvedAt, &createdAt, &updatedAt); err != nil {
		return domain.ApprovalRecord{}, err
	}
	if listingID.Valid {
		s := listingID.String
		rec.ListingID = &s
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		rec.ApprovedAt = &t
	}
	rec.CreatedAt = createdAt
	rec.UpdatedAt = updatedAt
	return rec, nil
}
