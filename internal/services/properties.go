package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/test89/property_client/internal/api"
	"github.com/test89/property_client/internal/domain/property"
)

// Properties wraps the property endpoints.
type Properties struct {
	client *api.Client
}

// NewProperties creates the property service module.
func NewProperties(client *api.Client) *Properties {
	return &Properties{client: client}
}

// Search runs the public criteria search and returns the raw server page.
func (s *Properties) Search(ctx context.Context, q property.SearchQuery) (api.Page[property.Property], error) {
	params := pageQuery(q.Page, q.Size)
	if q.City != "" {
		params.Set("city", q.City)
	}
	if q.MinPrice > 0 {
		params.Set("minPrice", strconv.FormatFloat(q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice > 0 {
		params.Set("maxPrice", strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}
	if q.Bedrooms > 0 {
		params.Set("bedrooms", strconv.Itoa(q.Bedrooms))
	}
	if q.Bathrooms > 0 {
		params.Set("bathrooms", strconv.Itoa(q.Bathrooms))
	}
	if q.MaxGuests > 0 {
		params.Set("maxGuests", strconv.Itoa(q.MaxGuests))
	}

	var page api.Page[property.Property]
	if err := s.client.Get(ctx, "/properties/public/search", params, &page); err != nil {
		return api.Page[property.Property]{}, err
	}
	return page, nil
}

// Get fetches one public property by id.
func (s *Properties) Get(ctx context.Context, id int64) (property.Property, error) {
	var p property.Property
	if err := s.client.Get(ctx, fmt.Sprintf("/properties/public/%d", id), nil, &p); err != nil {
		return property.Property{}, err
	}
	return p, nil
}

// Featured returns the homepage highlight listings.
func (s *Properties) Featured(ctx context.Context) ([]property.Property, error) {
	params := url.Values{}
	params.Set("featured", "true")
	var page api.Page[property.Property]
	if err := s.client.Get(ctx, "/properties", params, &page); err != nil {
		return nil, err
	}
	return page.Content, nil
}

// Owner returns the properties owned by the current user.
func (s *Properties) Owner(ctx context.Context) ([]property.Property, error) {
	var page api.Page[property.Property]
	if err := s.client.Get(ctx, "/properties/owner", nil, &page); err != nil {
		return nil, err
	}
	return page.Content, nil
}

// CheckAvailability asks whether a property is free for the given dates.
// The result is only meaningful for exactly this property and range.
func (s *Properties) CheckAvailability(ctx context.Context, id int64, checkIn, checkOut string) (property.AvailabilityResult, error) {
	params := url.Values{}
	params.Set("checkInDate", checkIn)
	params.Set("checkOutDate", checkOut)
	var result property.AvailabilityResult
	if err := s.client.Get(ctx, fmt.Sprintf("/properties/%d/availability", id), params, &result); err != nil {
		return property.AvailabilityResult{}, err
	}
	return result, nil
}

// Create registers a new owner property.
func (s *Properties) Create(ctx context.Context, draft property.Draft) (property.Property, error) {
	if err := checkValid(draft); err != nil {
		return property.Property{}, err
	}
	var p property.Property
	if err := s.client.Post(ctx, "/properties", draft, &p); err != nil {
		return property.Property{}, err
	}
	return p, nil
}

// Update replaces an owner property.
func (s *Properties) Update(ctx context.Context, id int64, draft property.Draft) (property.Property, error) {
	if err := checkValid(draft); err != nil {
		return property.Property{}, err
	}
	var p property.Property
	if err := s.client.Put(ctx, fmt.Sprintf("/properties/%d", id), draft, &p); err != nil {
		return property.Property{}, err
	}
	return p, nil
}

// Delete removes an owner property.
func (s *Properties) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/properties/%d", id), nil)
}

// UploadImage attaches an image to a property.
func (s *Properties) UploadImage(ctx context.Context, id int64, filename string, r io.Reader) (property.Property, error) {
	var p property.Property
	if err := s.client.Upload(ctx, fmt.Sprintf("/properties/%d/images", id), "file", filename, r, &p); err != nil {
		return property.Property{}, err
	}
	return p, nil
}

// Stats returns the owner dashboard aggregates.
func (s *Properties) Stats(ctx context.Context) (property.Stats, error) {
	var stats property.Stats
	if err := s.client.Get(ctx, "/properties/stats", nil, &stats); err != nil {
		return property.Stats{}, err
	}
	return stats, nil
}

// Filters returns the distinct values offered by the search form.
func (s *Properties) Filters(ctx context.Context) (property.Filters, error) {
	var f property.Filters
	if err := s.client.Get(ctx, "/properties/filters", nil, &f); err != nil {
		return property.Filters{}, err
	}
	return f, nil
}

// AddFavorite marks a property as a favorite of the current user.
func (s *Properties) AddFavorite(ctx context.Context, id int64) error {
	return s.client.Post(ctx, fmt.Sprintf("/properties/%d/favorites", id), nil, nil)
}

// RemoveFavorite unmarks a favorite.
func (s *Properties) RemoveFavorite(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/properties/%d/favorites", id), nil)
}

// Favorites lists the current user's favorite properties.
func (s *Properties) Favorites(ctx context.Context) ([]property.Property, error) {
	var page api.Page[property.Property]
	if err := s.client.Get(ctx, "/properties/favorites", nil, &page); err != nil {
		return nil, err
	}
	return page.Content, nil
}

// Recommended lists properties suggested for the current user.
func (s *Properties) Recommended(ctx context.Context) ([]property.Property, error) {
	var page api.Page[property.Property]
	if err := s.client.Get(ctx, "/properties/recommended", nil, &page); err != nil {
		return nil, err
	}
	return page.Content, nil
}
