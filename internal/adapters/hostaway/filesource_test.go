package hostaway_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Vitaee/FlexReviewApi/internal/adapters/hostaway"
	"github.com/Vitaee/FlexReviewApi/internal/domain"
)

func writeMock(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mock_reviews.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write mock: %v", err)
	}
	return path
}

func TestFileSource_LoadsEnvelope(t *testing.T) {
	path := writeMock(t, `{
	  "status": "success",
	  "result": [
	    {"id": 7453, "type": "host-to-guest", "status": "published",
	     "submittedAt": "2020-08-21 22:45:14", "listingName": "Shoreditch Heights",
	     "listingId": "FLX-307", "channel": "airbnb", "rating": 9}
	  ]
	}`)

	src := hostaway.NewFileSource(path)
	got, err := src.FetchReviews(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(got) != 1 || got[0].ID == nil || *got[0].ID != 7453 {
		t.Fatalf("unexpected reviews: %+v", got)
	}
	if got[0].ListingID == nil || *got[0].ListingID != "FLX-307" {
		t.Fatalf("listingId: %+v", got[0].ListingID)
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	src := hostaway.NewFileSource(filepath.Join(t.TempDir(), "nope.json"))
	_, err := src.FetchReviews(context.Background())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("want ErrSourceUnavailable, got %v", err)
	}
}

func TestFileSource_InvalidJSON(t *testing.T) {
	src := hostaway.NewFileSource(writeMock(t, `{not json`))
	_, err := src.FetchReviews(context.Background())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("want ErrSourceUnavailable, got %v", err)
	}
}

func TestFileSource_BadEnvelopeStatus(t *testing.T) {
	src := hostaway.NewFileSource(writeMock(t, `{"status": "error", "result": []}`))
	_, err := src.FetchReviews(context.Background())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("want ErrSourceUnavailable, got %v", err)
	}
}
