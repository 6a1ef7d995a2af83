package domain

import "time"

// Channel is the platform a review originated from.
type Channel string

const (
	ChannelAirbnb   Channel = "airbnb"
	ChannelBooking  Channel = "booking"
	ChannelDirect   Channel = "direct"
	ChannelVrbo     Channel = "vrbo"
	ChannelHostaway Channel = "hostaway"
	ChannelUnknown  Channel = "unknown"
)

// ReviewType distinguishes who wrote the review.
type ReviewType string

const (
	TypeHostToGuest ReviewType = "host-to-guest"
	TypeGuestToHost ReviewType = "guest-to-host"
	TypeUnknown     ReviewType = "unknown"
)

// RawCategory is a single per-category score as Hostaway sends it.
type RawCategory struct {
	Category string `json:"category"`
	Rating   int    `json:"rating"`
}

// RawReview is the Hostaway wire shape. ID is a pointer so a missing id is
// distinguishable from id 0 at validation time.
type RawReview struct {
	ID              *int64        `json:"id"`
	Type            string        `json:"type"`
	Status          string        `json:"status"`
	Rating          *float64      `json:"rating"`
	PublicReview    *string       `json:"publicReview"`
	PrivateNote     *string       `json:"privateNote"`
	ReviewCategory  []RawCategory `json:"reviewCategory"`
	SubmittedAt     string        `json:"submittedAt"`
	GuestName       *string       `json:"guestName"`
	ListingName     string        `json:"listingName"`
	ListingID       *string       `json:"listingId"`
	ListingLocation *string       `json:"listingLocation"`
	Channel         *string       `json:"channel"`
	StayDate        *string       `json:"stayDate"`
	StayLength      *int          `json:"stayLength"`
}

// RawReviewEnvelope wraps the Hostaway reviews response.
type RawReviewEnvelope struct {
	Status string      `json:"status"`
	Result []RawReview `json:"result"`
}

// NormalizedReview is the canonical review shape, independent of source.
// IsApproved is populated at merge time from the approval store.
type NormalizedReview struct {
	ID              int64          `json:"id"`
	ListingID       *string        `json:"listingId"`
	ListingName     string         `json:"listingName"`
	ListingLocation *string        `json:"listingLocation"`
	Channel         Channel        `json:"channel"`
	Type            ReviewType     `json:"type"`
	Status          string         `json:"status"`
	Rating          *float64       `json:"rating"`
	CategoryRatings map[string]int `json:"categoryRatings"`
	PublicReview    *string        `json:"publicReview"`
	PrivateNote     *string        `json:"privateNote"`
	GuestName       *string        `json:"guestName"`
	SubmittedAt     time.Time      `json:"submittedAt"`
	StayDate        *string        `json:"stayDate"`
	StayLength      *int           `json:"stayLength"`
	IsApproved      bool           `json:"isApproved"`
}

// ReviewFilters are applied after normalization and merge, so predicates
// always see the canonical shape.
type ReviewFilters struct {
	ListingID *string
	Channel   *Channel
	MinRating *float64
	From      *time.Time
	To        *time.Time
}

// Match reports whether a merged review passes the filter set.
func (f ReviewFilters) Match(r NormalizedReview) bool {
	if f.ListingID != nil {
		if r.ListingID == nil || *r.ListingID != *f.ListingID {
			return false
		}
	}
	if f.Channel != nil && r.Channel != *f.Channel {
		return false
	}
	if f.MinRating != nil {
		if r.Rating == nil || *r.Rating < *f.MinRating {
			return false
		}
	}
	if f.From != nil && r.SubmittedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && r.SubmittedAt.After(*f.To) {
		return false
	}
	return true
}
