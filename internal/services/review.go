package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/orderdeskapp/orderdesk/internal/cache"
	"github.com/orderdeskapp/orderdesk/internal/commerce"
	"github.com/orderdeskapp/orderdesk/internal/logging"
	"github.com/orderdeskapp/orderdesk/internal/orders"
)

const (
	maxCommentLength = 300
	reviewsCacheTTL  = time.Minute
)

type reviewAPI interface {
	ListProductReviews(ctx context.Context, productID string) ([]orders.Review, error)
	CreateReview(ctx context.Context, productID string, payload commerce.ReviewPayload) (*orders.Review, error)
	UpdateReview(ctx context.Context, productID, reviewID string, payload commerce.ReviewPayload) (*orders.Review, error)
	DeleteReview(ctx context.Context, productID, reviewID string) error
}

type ReviewService struct {
	api    reviewAPI
	cache  cache.Provider
	logger *slog.Logger
}

func NewReviewService(api reviewAPI, cacheProvider cache.Provider, logger *slog.Logger) *ReviewService {
	return &ReviewService{api: api, cache: cacheProvider, logger: logger}
}

// Resolution says whether the current shopper already reviewed a product,
// and carries the existing review's state when they did.
type Resolution struct {
	HasExistingReview bool   `json:"has_existing_review"`
	ReviewID          string `json:"review_id,omitempty"`
	InitialRating     int    `json:"initial_rating,omitempty"`
	InitialComment    string `json:"initial_comment,omitempty"`
}

// Resolve scans the product's reviews for one owned by the shopper. The API
// exposes no user foreign key, so ownership is matched on the session email:
// case-sensitive exact comparison, first match wins. Duplicate emails are
// not disambiguated.
func (s *ReviewService) Resolve(ctx context.Context, productID, currentUserEmail string) (Resolution, error) {
	reviews, err := s.listReviews(ctx, productID)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to list reviews: %w", err)
	}

	for _, review := range reviews {
		if review.UserEmail == currentUserEmail {
			return Resolution{
				HasExistingReview: true,
				ReviewID:          review.ID,
				InitialRating:     review.Rating,
				InitialComment:    review.Comment,
			}, nil
		}
	}
	return Resolution{}, nil
}

// Submit creates or updates the shopper's review depending on the prior
// resolution.
func (s *ReviewService) Submit(ctx context.Context, productID string, resolution Resolution, rating int, comment string) (*orders.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrRatingOutOfRange
	}
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return nil, ErrCommentTooLong
	}

	payload := commerce.ReviewPayload{Rating: rating, Comment: strings.TrimSpace(comment)}

	var review *orders.Review
	var err error
	if resolution.HasExistingReview {
		review, err = s.api.UpdateReview(ctx, productID, resolution.ReviewID, payload)
	} else {
		review, err = s.api.CreateReview(ctx, productID, payload)
	}
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, productID)
	logging.FromContext(ctx, s.logger).Info("review submitted",
		"product_id", productID,
		"updated", resolution.HasExistingReview,
	)
	return review, nil
}

// Delete removes the shopper's existing review. It requires a prior
// resolution that found one.
func (s *ReviewService) Delete(ctx context.Context, productID string, resolution Resolution) error {
	if !resolution.HasExistingReview || resolution.ReviewID == "" {
		return ErrNoExistingReview
	}
	if err := s.api.DeleteReview(ctx, productID, resolution.ReviewID); err != nil {
		return err
	}
	s.invalidate(ctx, productID)
	return nil
}

func (s *ReviewService) listReviews(ctx context.Context, productID string) ([]orders.Review, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cache.ReviewsKey(productID)); err == nil {
			var reviews []orders.Review
			if json.Unmarshal([]byte(cached), &reviews) == nil {
				return reviews, nil
			}
		}
	}

	reviews, err := s.api.ListProductReviews(ctx, productID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(reviews); err == nil {
			if err := s.cache.Set(ctx, cache.ReviewsKey(productID), string(encoded), reviewsCacheTTL); err != nil {
				logging.FromContext(ctx, s.logger).Warn("failed to cache reviews", "product_id", productID, "error", err)
			}
		}
	}
	return reviews, nil
}

func (s *ReviewService) invalidate(ctx context.Context, productID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.ReviewsKey(productID)); err != nil {
		logging.FromContext(ctx, s.logger).Warn("failed to invalidate review cache", "product_id", productID, "error", err)
	}
}

// ReviewNotice converts a review operation failure into the message shown
// to the shopper. The mapping is status-code driven.
func ReviewNotice(err error, deleting bool) string {
	switch {
	case err == nil:
		return ""
	case IsValidationError(err):
		return err.Error()
	}

	switch commerce.StatusCode(err) {
	case http.StatusUnauthorized:
		return "please login"
	case http.StatusBadRequest:
		return "invalid input"
	case http.StatusNotFound:
		return "not found"
	case http.StatusForbidden:
		if deleting {
			return "not authorized"
		}
	}
	return "something went wrong, please try again"
}
