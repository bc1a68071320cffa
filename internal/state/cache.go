package state

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/test89/property_client/internal/domain/property"
	"github.com/test89/property_client/internal/domain/reservation"
	"github.com/test89/property_client/internal/domain/review"
)

// propertyCacheSize caps the property cache. Comfortably above anything a
// session's worth of search pages accumulates. Entries are not pinned: past
// the cap the least recently used record is evicted even if a projection
// still lists its id, and materializing that projection then skips the id.
// Reads refresh recency, so only projections untouched for a full cache
// turnover can shrink.
const propertyCacheSize = 1024

// entityCache is the single canonical copy of every server record the
// client has seen, keyed by id. List projections index into it; nothing is
// stored twice.
type entityCache struct {
	properties   *lru.Cache[int64, property.Property]
	reservations map[int64]reservation.Reservation
	reviews      map[int64]review.Review
}

func newEntityCache() *entityCache {
	props, err := lru.New[int64, property.Property](propertyCacheSize)
	if err != nil {
		panic(err) // only fails for a non-positive size
	}
	return &entityCache{
		properties:   props,
		reservations: make(map[int64]reservation.Reservation),
		reviews:      make(map[int64]review.Review),
	}
}

// listView is a projection over the cache: ordered ids plus the page info
// and lifecycle of the fetch that produced it.
type listView struct {
	IDs        []int64
	Page       int
	TotalPages int
	Lifecycle
}

func (v *listView) replace(ids []int64, page, totalPages int) {
	v.IDs = ids
	v.Page = page
	v.TotalPages = totalPages
}

// prepend puts id first, dropping any existing occurrence.
func (v *listView) prepend(id int64) {
	ids := make([]int64, 0, len(v.IDs)+1)
	ids = append(ids, id)
	for _, existing := range v.IDs {
		if existing != id {
			ids = append(ids, existing)
		}
	}
	v.IDs = ids
}

// remove filters id out.
func (v *listView) remove(id int64) {
	ids := v.IDs[:0]
	for _, existing := range v.IDs {
		if existing != id {
			ids = append(ids, existing)
		}
	}
	v.IDs = ids
}

func (v *listView) contains(id int64) bool {
	for _, existing := range v.IDs {
		if existing == id {
			return true
		}
	}
	return false
}

// Cache writers ---------------------------------------------------------------

func (c *entityCache) putProperties(items []property.Property) []int64 {
	ids := make([]int64, len(items))
	for i, p := range items {
		c.properties.Add(p.ID, p)
		ids[i] = p.ID
	}
	return ids
}

func (c *entityCache) putProperty(p property.Property) {
	c.properties.Add(p.ID, p)
}

func (c *entityCache) dropProperty(id int64) {
	c.properties.Remove(id)
}

func (c *entityCache) hasProperty(id int64) bool {
	return c.properties.Contains(id)
}

func (c *entityCache) putReservations(items []reservation.Reservation) []int64 {
	ids := make([]int64, len(items))
	for i, r := range items {
		c.reservations[r.ID] = r
		ids[i] = r.ID
	}
	return ids
}

func (c *entityCache) putReservation(r reservation.Reservation) {
	c.reservations[r.ID] = r
}

func (c *entityCache) putReviews(items []review.Review) []int64 {
	ids := make([]int64, len(items))
	for i, r := range items {
		c.reviews[r.ID] = r
		ids[i] = r.ID
	}
	return ids
}

func (c *entityCache) putReview(r review.Review) {
	c.reviews[r.ID] = r
}

func (c *entityCache) dropReview(id int64) {
	delete(c.reviews, id)
}

// Materializers ---------------------------------------------------------------

func (c *entityCache) materializeProperties(ids []int64) []property.Property {
	out := make([]property.Property, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.properties.Get(id); ok {
			out = append(out, p)
		}
	}
	return out
}

func (c *entityCache) materializeReservations(ids []int64) []reservation.Reservation {
	out := make([]reservation.Reservation, 0, len(ids))
	for _, id := range ids {
		if r, ok := c.reservations[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (c *entityCache) materializeReviews(ids []int64) []review.Review {
	out := make([]review.Review, 0, len(ids))
	for _, id := range ids {
		if r, ok := c.reviews[id]; ok {
			out = append(out, r)
		}
	}
	return out
}
