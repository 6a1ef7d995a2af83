package hostaway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Vitaee/FlexReviewApi/internal/domain"
)

// FileSource serves the bundled mock payload in place of the live Hostaway
// API. It speaks the same envelope, so swapping in the real Client is a
// wiring change only.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource { return &FileSource{path: path} }

func (f *FileSource) FetchReviews(ctx context.Context) ([]domain.RawReview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read mock data %s: %v", domain.ErrSourceUnavailable, f.path, err)
	}

	var env domain.RawReviewEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: parse mock data %s: %v", domain.ErrSourceUnavailable, f.path, err)
	}
	if env.Status != "success" {
		return nil, fmt.Errorf("%w: envelope status %q", domain.ErrSourceUnavailable, env.Status)
	}
	return env.Result, nil
}
