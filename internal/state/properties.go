package state

import (
	"context"
	"io"

	"github.com/test89/property_client/internal/domain/property"
)

type propertiesState struct {
	search      listView
	featured    listView
	owner       listView
	favorites   listView
	recommended listView

	detailsID int64
	details   Lifecycle

	filters   property.Filters
	filtersLC Lifecycle

	create Lifecycle
	update Lifecycle
	remove Lifecycle
	upload Lifecycle
}

// PropertyList is a materialized list snapshot for the view layer.
type PropertyList struct {
	Items      []property.Property
	Page       int
	TotalPages int
	Lifecycle
}

// PropertyOps exposes the lifecycles of the property mutations.
type PropertyOps struct {
	Create Lifecycle
	Update Lifecycle
	Delete Lifecycle
	Upload Lifecycle
}

func (s *Store) propertyList(v *listView) PropertyList {
	return PropertyList{
		Items:      s.cache.materializeProperties(v.IDs),
		Page:       v.Page,
		TotalPages: v.TotalPages,
		Lifecycle:  v.Lifecycle,
	}
}

// SearchResults returns the current search page.
func (s *Store) SearchResults() PropertyList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.propertyList(&s.properties.search)
}

// FeaturedProperties returns the homepage highlight list.
func (s *Store) FeaturedProperties() PropertyList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.propertyList(&s.properties.featured)
}

// OwnerProperties returns the current user's listings.
func (s *Store) OwnerProperties() PropertyList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.propertyList(&s.properties.owner)
}

// FavoriteProperties returns the favorites list.
func (s *Store) FavoriteProperties() PropertyList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.propertyList(&s.properties.favorites)
}

// RecommendedProperties returns the recommendation list.
func (s *Store) RecommendedProperties() PropertyList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.propertyList(&s.properties.recommended)
}

// PropertyDetails returns the last fetched property, its lifecycle, and
// whether a record is cached.
func (s *Store) PropertyDetails() (property.Property, Lifecycle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.cache.properties.Get(s.properties.detailsID)
	return p, s.properties.details, ok
}

// PropertyFilters returns the search form filter values.
func (s *Store) PropertyFilters() (property.Filters, Lifecycle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.properties.filters, s.properties.filtersLC
}

// PropertyOps returns the mutation lifecycles.
func (s *Store) PropertyOps() PropertyOps {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PropertyOps{
		Create: s.properties.create,
		Update: s.properties.update,
		Delete: s.properties.remove,
		Upload: s.properties.upload,
	}
}

// ResetPropertyOps returns the mutation segments to idle, typically after a
// form closes.
func (s *Store) ResetPropertyOps() {
	s.mu.Lock()
	resetLocked(&s.properties.create)
	resetLocked(&s.properties.update)
	resetLocked(&s.properties.remove)
	resetLocked(&s.properties.upload)
	s.mu.Unlock()
	s.notify()
}

// SearchProperties runs the criteria search and replaces the search page.
func (s *Store) SearchProperties(ctx context.Context, q property.SearchQuery) error {
	token := s.begin(&s.properties.search.Lifecycle)
	page, err := s.propertySvc.Search(ctx, q)
	if err != nil {
		return s.fail(&s.properties.search.Lifecycle, token, err, "Failed to search properties")
	}

	s.mu.Lock()
	if supersededLocked(&s.properties.search.Lifecycle, token) {
		s.mu.Unlock()
		return nil
	}
	ids := s.cache.putProperties(page.Content)
	s.properties.search.replace(ids, page.Number, page.TotalPages)
	fulfillLocked(&s.properties.search.Lifecycle)
	s.mu.Unlock()
	s.notify()
	return nil
}

// FetchPropertyDetails loads one property for the details view.
func (s *Store) FetchPropertyDetails(ctx context.Context, id int64) error {
	token := s.begin(&s.properties.details)
	p, err := s.propertySvc.Get(ctx, id)
	if err != nil {
		return s.fail(&s.properties.details, token, err, "Failed to fetch property details")
	}

	s.mu.Lock()
	if supersededLocked(&s.properties.details, token) {
		s.mu.Unlock()
		return nil
	}
	s.cache.putProperty(p)
	s.properties.detailsID = p.ID
	fulfillLocked(&s.properties.details)
	s.mu.Unlock()
	s.notify()
	return nil
}

// FetchFeaturedProperties loads the homepage highlights.
func (s *Store) FetchFeaturedProperties(ctx context.Context) error {
	token := s.begin(&s.properties.featured.Lifecycle)
	items, err := s.propertySvc.Featured(ctx)
	if err != nil {
		return s.fail(&s.properties.featured.Lifecycle, token, err, "Failed to fetch featured properties")
	}

	s.mu.Lock()
	if supersededLocked(&s.properties.featured.Lifecycle, token) {
		s.mu.Unlock()
		return nil
	}
	s.properties.featured.replace(s.cache.putProperties(items), 0, 1)
	fulfillLocked(&s.properties.featured.Lifecycle)
	s.mu.Unlock()
	s.notify()
	return nil
}

// FetchOwnerProperties loads the current user's listings.
func (s *Store) FetchOwnerProperties(ctx context.Context) error {
	token := s.begin(&s.properties.owner.Lifecycle)
	items, err := s.propertySvc.Owner(ctx)
	if err != nil {
		return s.fail(&s.properties.owner.Lifecycle, token, err, "Failed to fetch properties")
	}

	s.mu.Lock()
	if supersededLocked(&s.properties.owner.Lifecycle, token) {
		s.mu.Unlock()
		return nil
	}
	s.properties.owner.replace(s.cache.putProperties(items), 0, 1)
	fulfillLocked(&s.properties.owner.Lifecycle)
	s.mu.Unlock()
	s.notify()
	return nil
}

// CreateProperty creates a listing and prepends it to the owner list.
func (s *Store) CreateProperty(ctx context.Context, draft property.Draft) error {
	token := s.begin(&s.properties.create)
	p, err := s.propertySvc.Create(ctx, draft)
	if err != nil {
		return s.fail(&s.properties.create, token, err, "Failed to create property")
	}

	s.mu.Lock()
	if supersededLocked(&s.properties.create, token) {
		s.mu.Unlock()
		return nil
	}
	s.cache.putProperty(p)
	s.properties.owner.prepend(p.ID)
	fulfillLocked(&s.properties.create)
	s.mu.Unlock()
	s.notify()
	return nil
}

// UpdateProperty saves a listing. Every projection holding the id sees the
// new record through the cache.
func (s *Store) UpdateProperty(ctx context.Context, id int64, draft property.Draft) error {
	token := s.begin(&s.properties.update)
	p, err := s.propertySvc.Update(ctx, id, draft)
	if err != nil {
		return s.fail(&s.properties.update, token, err, "Failed to update property")
	}

	s.mu.Lock()
	if supersededLocked(&s.properties.update, token) {
		s.mu.Unlock()
		return nil
	}
	s.cache.putProperty(p)
	fulfillLocked(&s.properties.update)
	s.mu.Unlock()
	s.notify()
	return nil
}

// DeleteProperty removes a listing from the backend, the cache, and every
// projection.
func (s *Store) DeleteProperty(ctx context.Context, id int64) error {
	token := s.begin(&s.properties.remove)
	if err := s.propertySvc.Delete(ctx, id); err != nil {
		return s.fail(&s.properties.remove, token, err, "Failed to delete property")
	}

	s.mu.Lock()
	if supersededLocked(&s.properties.remove, token) {
		s.mu.Unlock()
		return nil
	}
	s.cache.dropProperty(id)
	s.properties.owner.remove(id)
	s.properties.search.remove(id)
	s.properties.featured.remove(id)
	s.properties.favorites.remove(id)
	s.properties.recommended.remove(id)
	if s.properties.detailsID == id {
		s.properties.detailsID = 0
	}
	fulfillLocked(&s.properties.remove)
	s.mu.Unlock()
	s.notify()
	return nil
}

// UploadPropertyImage attaches an image and refreshes the cached record.
func (s *Store) UploadPropertyImage(ctx context.Context, id int64, filename string, r io.Reader) error {
	token := s.begin(&s.properties.upload)
	p, err := s.propertySvc.UploadImage(ctx, id, filename, r)
	if err != nil {
		return s.fail(&s.properties.upload, token, err, "Failed to upload property image")
	}

	s.mu.Lock()
	if supersededLocked(&s.properties.upload, token) {
		s.mu.Unlock()
		return nil
	}
	s.cache.putProperty(p)
	fulfillLocked(&s.properties.upload)
	s.mu.Unlock()
	s.notify()
	return nil
}

// FetchPropertyFilters loads the search form filter values.
func (s *Store) FetchPropertyFilters(ctx context.Context) error {
	token := s.begin(&s.properties.filtersLC)
	f, err := s.propertySvc.Filters(ctx)
	if err != nil {
		return s.fail(&s.properties.filtersLC, token, err, "Failed to fetch property filters")
	}

	s.mu.Lock()
	if supersededLocked(&s.properties.filtersLC, token) {
		s.mu.Unlock()
		return nil
	}
	s.properties.filters = f
	fulfillLocked(&s.properties.filtersLC)
	s.mu.Unlock()
	s.notify()
	return nil
}

// FetchFavoriteProperties loads the favorites list.
func (s *Store) FetchFavoriteProperties(ctx context.Context) error {
	token := s.begin(&s.properties.favorites.Lifecycle)
	items, err := s.propertySvc.Favorites(ctx)
	if err != nil {
		return s.fail(&s.properties.favorites.Lifecycle, token, err, "Failed to fetch favorite properties")
	}

	s.mu.Lock()
	if supersededLocked(&s.properties.favorites.Lifecycle, token) {
		s.mu.Unlock()
		return nil
	}
	s.properties.favorites.replace(s.cache.putProperties(items), 0, 1)
	fulfillLocked(&s.properties.favorites.Lifecycle)
	s.mu.Unlock()
	s.notify()
	return nil
}

// AddPropertyToFavorites marks a favorite and patches the projection.
func (s *Store) AddPropertyToFavorites(ctx context.Context, id int64) error {
	if err := s.propertySvc.AddFavorite(ctx, id); err != nil {
		return s.failSilent(err, "Failed to add property to favorites")
	}
	s.mu.Lock()
	if s.cache.hasProperty(id) && !s.properties.favorites.contains(id) {
		s.properties.favorites.prepend(id)
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// RemovePropertyFromFavorites unmarks a favorite and patches the
// projection.
func (s *Store) RemovePropertyFromFavorites(ctx context.Context, id int64) error {
	if err := s.propertySvc.RemoveFavorite(ctx, id); err != nil {
		return s.failSilent(err, "Failed to remove property from favorites")
	}
	s.mu.Lock()
	s.properties.favorites.remove(id)
	s.mu.Unlock()
	s.notify()
	return nil
}

// FetchRecommendedProperties loads the recommendation list.
func (s *Store) FetchRecommendedProperties(ctx context.Context) error {
	token := s.begin(&s.properties.recommended.Lifecycle)
	items, err := s.propertySvc.Recommended(ctx)
	if err != nil {
		return s.fail(&s.properties.recommended.Lifecycle, token, err, "Failed to fetch recommended properties")
	}

	s.mu.Lock()
	if supersededLocked(&s.properties.recommended.Lifecycle, token) {
		s.mu.Unlock()
		return nil
	}
	s.properties.recommended.replace(s.cache.putProperties(items), 0, 1)
	fulfillLocked(&s.properties.recommended.Lifecycle)
	s.mu.Unlock()
	s.notify()
	return nil
}
