package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Vitaee/FlexReviewApi/internal/app"
	"github.com/Vitaee/FlexReviewApi/internal/domain"
)

const (
	serviceName    = "Flex Living Reviews API"
	serviceVersion = "1.0.0"
)

type Handlers struct{ Svc *app.ReviewService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type approvalRequest struct {
	ReviewID   int64   `json:"review_id"`
	IsApproved bool    `json:"is_approved"`
	ListingID  *string `json:"listing_id,omitempty"`
}

type approvalResponse struct {
	Success    bool   `json:"success"`
	ReviewID   int64  `json:"review_id"`
	IsApproved bool   `json:"is_approved"`
	Message    string `json:"message"`
}

type bulkApprovalRequest struct {
	ReviewIDs  []int64 `json:"review_ids"`
	IsApproved bool    `json:"is_approved"`
}

type bulkApprovalResponse struct {
	Success      bool   `json:"success"`
	UpdatedCount int    `json:"updated_count"`
	IsApproved   bool   `json:"is_approved"`
	Message      string `json:"message"`
}

type approvedIDsResponse struct {
	Success   bool    `json:"success"`
	ReviewIDs []int64 `json:"review_ids"`
	Count     int     `json:"count"`
	ListingID *string `json:"listing_id,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/health", h.health)
	s.mux.Route("/api/reviews", func(r chi.Router) {
		r.Get("/hostaway", h.listReviews)
		r.Patch("/approve", h.setApproval)
		r.Patch("/approve/bulk", h.setApprovalBulk)
		r.Get("/approved", h.listApprovedIDs)
	})
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Filter", err.Error())
		return
	}

	reviews, err := h.Svc.ListReviews(r.Context(), filters)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handlers) setApproval(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if req.ReviewID <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "review_id must be a positive integer")
		return
	}

	res, err := h.Svc.SetApproval(r.Context(), req.ReviewID, req.IsApproved, req.ListingID)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, approvalResponse{
		Success:    true,
		ReviewID:   res.ReviewID,
		IsApproved: res.IsApproved,
		Message:    res.Message,
	})
}

func (h *Handlers) setApprovalBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	for _, id := range req.ReviewIDs {
		if id <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid Body", "review_ids must be positive integers")
			return
		}
	}

	res, err := h.Svc.SetApprovalBulk(r.Context(), req.ReviewIDs, req.IsApproved)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkApprovalResponse{
		Success:      true,
		UpdatedCount: res.UpdatedCount,
		IsApproved:   res.IsApproved,
		Message:      res.Message,
	})
}

func (h *Handlers) listApprovedIDs(w http.ResponseWriter, r *http.Request) {
	var listingID *string
	if v := r.URL.Query().Get("listing_id"); v != "" {
		listingID = &v
	}

	ids, err := h.Svc.ListApprovedIDs(r.Context(), listingID)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, approvedIDsResponse{
		Success:   true,
		ReviewIDs: ids,
		Count:     len(ids),
		ListingID: listingID,
	})
}

// ---- helpers ----

func parseFilters(r *http.Request) (domain.ReviewFilters, error) {
	var f domain.ReviewFilters
	q := r.URL.Query()

	if v := q.Get("listingId"); v != "" {
		f.ListingID = &v
	}
	if v := q.Get("channel"); v != "" {
		ch := domain.Channel(v)
		f.Channel = &ch
	}
	if v := q.Get("minRating"); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil || min < 0 || min > 10 {
			return f, errors.New("minRating must be a number between 0 and 10")
		}
		f.MinRating = &min
	}
	if v := q.Get("from"); v != "" {
		t, err := parseFilterTime(v)
		if err != nil {
			return f, err
		}
		f.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseFilterTime(v)
		if err != nil {
			return f, err
		}
		f.To = &t
	}
	return f, nil
}

func parseFilterTime(v string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("dates must be RFC 3339 or YYYY-MM-DD")
}

func writeServiceErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSourceUnavailable):
		writeProblem(w, http.StatusBadGateway, "Source Unavailable", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}
