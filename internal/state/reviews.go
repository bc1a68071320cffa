package state

import (
	"context"

	"github.com/test89/property_client/internal/domain/review"
)

type reviewsState struct {
	byProperty listView
	byUser     listView

	byPropertyID int64

	create Lifecycle
	update Lifecycle
	remove Lifecycle
}

// ReviewList is a materialized review page.
type ReviewList struct {
	Items      []review.Review
	Page       int
	TotalPages int
	Lifecycle
}

// ReviewOps exposes the review mutation lifecycles.
type ReviewOps struct {
	Create Lifecycle
	Update Lifecycle
	Delete Lifecycle
}

func (s *Store) reviewList(v *listView) ReviewList {
	return ReviewList{
		Items:      s.cache.materializeReviews(v.IDs),
		Page:       v.Page,
		TotalPages: v.TotalPages,
		Lifecycle:  v.Lifecycle,
	}
}

// PropertyReviews returns the reviews for the property last fetched.
func (s *Store) PropertyReviews() (int64, ReviewList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviews.byPropertyID, s.reviewList(&s.reviews.byProperty)
}

// UserReviews returns the current user's review page.
func (s *Store) UserReviews() ReviewList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviewList(&s.reviews.byUser)
}

// ReviewOps returns the mutation lifecycles.
func (s *Store) ReviewOps() ReviewOps {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ReviewOps{
		Create: s.reviews.create,
		Update: s.reviews.update,
		Delete: s.reviews.remove,
	}
}

// ResetReviewOps returns the mutation segments to idle.
func (s *Store) ResetReviewOps() {
	s.mu.Lock()
	resetLocked(&s.reviews.create)
	resetLocked(&s.reviews.update)
	resetLocked(&s.reviews.remove)
	s.mu.Unlock()
	s.notify()
}

// FetchPropertyReviews loads a review page for one property.
func (s *Store) FetchPropertyReviews(ctx context.Context, propertyID int64, page, size int) error {
	token := s.begin(&s.reviews.byProperty.Lifecycle)
	res, err := s.reviewSvc.ByProperty(ctx, propertyID, page, size)
	if err != nil {
		return s.fail(&s.reviews.byProperty.Lifecycle, token, err, "Failed to fetch reviews")
	}

	s.mu.Lock()
	if supersededLocked(&s.reviews.byProperty.Lifecycle, token) {
		s.mu.Unlock()
		return nil
	}
	s.reviews.byPropertyID = propertyID
	s.reviews.byProperty.replace(s.cache.putReviews(res.Content), res.Number, res.TotalPages)
	fulfillLocked(&s.reviews.byProperty.Lifecycle)
	s.mu.Unlock()
	s.notify()
	return nil
}

// FetchUserReviews loads a page of the current user's reviews.
func (s *Store) FetchUserReviews(ctx context.Context, page, size int) error {
	token := s.begin(&s.reviews.byUser.Lifecycle)
	res, err := s.reviewSvc.ByUser(ctx, page, size)
	if err != nil {
		return s.fail(&s.reviews.byUser.Lifecycle, token, err, "Failed to fetch your reviews")
	}

	s.mu.Lock()
	if supersededLocked(&s.reviews.byUser.Lifecycle, token) {
		s.mu.Unlock()
		return nil
	}
	s.reviews.byUser.replace(s.cache.putReviews(res.Content), res.Number, res.TotalPages)
	fulfillLocked(&s.reviews.byUser.Lifecycle)
	s.mu.Unlock()
	s.notify()
	return nil
}

// CreateReview posts a review. The new record goes into the cache once and
// is prepended to both the property and the user projection.
func (s *Store) CreateReview(ctx context.Context, propertyID int64, draft review.Draft) error {
	token := s.begin(&s.reviews.create)
	r, err := s.reviewSvc.Create(ctx, propertyID, draft)
	if err != nil {
		return s.fail(&s.reviews.create, token, err, "Failed to submit review")
	}

	s.mu.Lock()
	if supersededLocked(&s.reviews.create, token) {
		s.mu.Unlock()
		return nil
	}
	s.cache.putReview(r)
	if s.reviews.byPropertyID == propertyID {
		s.reviews.byProperty.prepend(r.ID)
	}
	s.reviews.byUser.prepend(r.ID)
	fulfillLocked(&s.reviews.create)
	s.mu.Unlock()
	s.notify()
	return nil
}

// UpdateReview saves an edit. Projections pick up the new record through
// the cache.
func (s *Store) UpdateReview(ctx context.Context, id int64, draft review.Draft) error {
	token := s.begin(&s.reviews.update)
	r, err := s.reviewSvc.Update(ctx, id, draft)
	if err != nil {
		return s.fail(&s.reviews.update, token, err, "Failed to update review")
	}

	s.mu.Lock()
	if supersededLocked(&s.reviews.update, token) {
		s.mu.Unlock()
		return nil
	}
	s.cache.putReview(r)
	fulfillLocked(&s.reviews.update)
	s.mu.Unlock()
	s.notify()
	return nil
}

// DeleteReview removes a review from the backend, the cache, and both
// projections.
func (s *Store) DeleteReview(ctx context.Context, id int64) error {
	token := s.begin(&s.reviews.remove)
	if err := s.reviewSvc.Delete(ctx, id); err != nil {
		return s.fail(&s.reviews.remove, token, err, "Failed to delete review")
	}

	s.mu.Lock()
	if supersededLocked(&s.reviews.remove, token) {
		s.mu.Unlock()
		return nil
	}
	s.cache.dropReview(id)
	s.reviews.byProperty.remove(id)
	s.reviews.byUser.remove(id)
	fulfillLocked(&s.reviews.remove)
	s.mu.Unlock()
	s.notify()
	return nil
}
