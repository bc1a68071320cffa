package services

import (
	"context"
	"fmt"

	"github.com/test89/property_client/internal/api"
	"github.com/test89/property_client/internal/domain/review"
)

// Reviews wraps the review endpoints.
type Reviews struct {
	client *api.Client
}

// NewReviews creates the review service module.
func NewReviews(client *api.Client) *Reviews {
	return &Reviews{client: client}
}

// ByProperty returns a page of reviews for a property.
func (s *Reviews) ByProperty(ctx context.Context, propertyID int64, page, size int) (api.Page[review.Review], error) {
	var result api.Page[review.Review]
	path := fmt.Sprintf("/properties/%d/reviews", propertyID)
	if err := s.client.Get(ctx, path, pageQuery(page, size), &result); err != nil {
		return api.Page[review.Review]{}, err
	}
	return result, nil
}

// ByUser returns a page of the current user's reviews.
func (s *Reviews) ByUser(ctx context.Context, page, size int) (api.Page[review.Review], error) {
	var result api.Page[review.Review]
	if err := s.client.Get(ctx, "/reviews/user", pageQuery(page, size), &result); err != nil {
		return api.Page[review.Review]{}, err
	}
	return result, nil
}

// Create posts a review for a property.
func (s *Reviews) Create(ctx context.Context, propertyID int64, draft review.Draft) (review.Review, error) {
	if err := checkValid(draft); err != nil {
		return review.Review{}, err
	}
	var r review.Review
	if err := s.client.Post(ctx, fmt.Sprintf("/properties/%d/reviews", propertyID), draft, &r); err != nil {
		return review.Review{}, err
	}
	return r, nil
}

// Update edits an existing review.
func (s *Reviews) Update(ctx context.Context, id int64, draft review.Draft) (review.Review, error) {
	if err := checkValid(draft); err != nil {
		return review.Review{}, err
	}
	var r review.Review
	if err := s.client.Put(ctx, fmt.Sprintf("/reviews/%d", id), draft, &r); err != nil {
		return review.Review{}, err
	}
	return r, nil
}

// Delete removes a review.
func (s *Reviews) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/reviews/%d", id), nil)
}
