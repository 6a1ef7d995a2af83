package app

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Vitaee/FlexReviewApi/internal/domain"
)

/********** alias registries (single source of truth) **********/

var channelAliases = map[string]domain.Channel{
	"airbnb":      domain.ChannelAirbnb,
	"booking":     domain.ChannelBooking,
	"booking.com": domain.ChannelBooking,
	"bookingcom":  domain.ChannelBooking,
	"direct":      domain.ChannelDirect,
	"website":     domain.ChannelDirect,
	"vrbo":        domain.ChannelVrbo,
	"homeaway":    domain.ChannelVrbo,
	"hostaway":    domain.ChannelHostaway,
}

var typeAliases = map[string]domain.ReviewType{
	"host-to-guest": domain.TypeHostToGuest,
	"host_to_guest": domain.TypeHostToGuest,
	"hosttoguest":   domain.TypeHostToGuest,
	"guest-to-host": domain.TypeGuestToHost,
	"guest_to_host": domain.TypeGuestToHost,
	"guesttohost":   domain.TypeGuestToHost,
}

// submittedAt layouts accepted on the wire. Hostaway sends
// "2006-01-02 15:04:05"; some channels relay ISO 8601 with or without zone.
var submittedAtLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

/********** normalizer **********/

// Normalize maps one raw Hostaway record into the canonical review shape.
// Deterministic and total over well-formed input: missing optional fields
// stay nil; a missing id or unparseable timestamp yields ErrMalformedRecord.
// IsApproved is always false here; the merge sets it from the store.
func Normalize(raw domain.RawReview) (domain.NormalizedReview, error) {
	if raw.ID == nil {
		return domain.NormalizedReview{}, fmt.Errorf("%w: missing id", domain.ErrMalformedRecord)
	}
	submittedAt, err := parseSubmittedAt(raw.SubmittedAt)
	if err != nil {
		return domain.NormalizedReview{}, fmt.Errorf("%w: review %d: %v", domain.ErrMalformedRecord, *raw.ID, err)
	}

	categories := normalizeCategories(raw.ReviewCategory)

	return domain.NormalizedReview{
		ID:              *raw.ID,
		ListingID:       raw.ListingID,
		ListingName:     raw.ListingName,
		ListingLocation: raw.ListingLocation,
		Channel:         mapChannel(raw.Channel),
		Type:            mapType(raw.Type),
		Status:          raw.Status,
		Rating:          overallRating(raw.Rating, categories),
		CategoryRatings: categories,
		PublicReview:    raw.PublicReview,
		PrivateNote:     raw.PrivateNote,
		GuestName:       raw.GuestName,
		SubmittedAt:     submittedAt,
		StayDate:        raw.StayDate,
		StayLength:      raw.StayLength,
	}, nil
}

// mapChannel resolves the source channel tag. An absent tag is implied by
// the source itself (hostaway); an unrecognized one falls back to unknown so
// the pipeline stays total.
func mapChannel(tag *string) domain.Channel {
	if tag == nil || strings.TrimSpace(*tag) == "" {
		return domain.ChannelHostaway
	}
	if ch, ok := channelAliases[strings.ToLower(strings.TrimSpace(*tag))]; ok {
		return ch
	}
	return domain.ChannelUnknown
}

func mapType(tag string) domain.ReviewType {
	if t, ok := typeAliases[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return t
	}
	return domain.TypeUnknown
}

func parseSubmittedAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing submittedAt")
	}
	for _, layout := range submittedAtLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable submittedAt %q", s)
}

// normalizeCategories lower-cases category keys and clamps scores to 0..10.
func normalizeCategories(in []domain.RawCategory) map[string]int {
	out := make(map[string]int, len(in))
	for _, c := range in {
		key := strings.ToLower(strings.TrimSpace(c.Category))
		if key == "" {
			continue
		}
		out[key] = clampCategory(c.Rating)
	}
	return out
}

func clampCategory(v int) int {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// overallRating prefers the source-provided rating, rescaled onto the 0-10
// scale; without one it falls back to the mean of the category scores,
// rounded to two decimals. No rating at all stays nil.
func overallRating(provided *float64, categories map[string]int) *float64 {
	if provided != nil {
		r := rescaleRating(*provided)
		return &r
	}
	if len(categories) == 0 {
		return nil
	}
	sum := 0
	for _, v := range categories {
		sum += v
	}
	mean := round2(float64(sum) / float64(len(categories)))
	return &mean
}

// rescaleRating maps a source score onto 0..10. Percent-scale sources
// (10 < v <= 100) are divided down; everything else is clamped.
func rescaleRating(v float64) float64 {
	if v > 10 && v <= 100 {
		v = v / 10
	}
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return round2(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
