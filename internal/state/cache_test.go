package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/test89/property_client/internal/domain/property"
	"github.com/test89/property_client/internal/domain/reservation"
)

func TestEntityCacheSharesRecordsAcrossViews(t *testing.T) {
	c := newEntityCache()
	ids := c.putProperties([]property.Property{
		{ID: 1, Title: "Harbor Flat"},
		{ID: 2, Title: "Hill Loft"},
	})
	require.Equal(t, []int64{1, 2}, ids)

	var search, featured listView
	search.replace(ids, 0, 1)
	featured.replace([]int64{2}, 0, 1)

	// one write, both projections observe it
	c.putProperty(property.Property{ID: 2, Title: "Hill Loft (renovated)"})

	fromSearch := c.materializeProperties(search.IDs)
	fromFeatured := c.materializeProperties(featured.IDs)
	require.Len(t, fromSearch, 2)
	require.Len(t, fromFeatured, 1)
	assert.Equal(t, "Hill Loft (renovated)", fromSearch[1].Title)
	assert.Equal(t, "Hill Loft (renovated)", fromFeatured[0].Title)
}

func TestMaterializeSkipsEvictedEntries(t *testing.T) {
	c := newEntityCache()
	ids := c.putProperties([]property.Property{{ID: 1}, {ID: 2}})
	c.dropProperty(1)

	got := c.materializeProperties(ids)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestListViewPrependIsIdempotentPerID(t *testing.T) {
	var v listView
	v.replace([]int64{2, 3}, 0, 1)
	v.prepend(1)
	v.prepend(1)
	assert.Equal(t, []int64{1, 2, 3}, v.IDs)

	v.remove(2)
	assert.Equal(t, []int64{1, 3}, v.IDs)
	assert.True(t, v.contains(3))
	assert.False(t, v.contains(2))
}

func TestReservationCacheRoundTrip(t *testing.T) {
	c := newEntityCache()
	ids := c.putReservations([]reservation.Reservation{
		{ID: 10, Status: reservation.StatusPending},
		{ID: 11, Status: reservation.StatusConfirmed},
	})
	c.putReservation(reservation.Reservation{ID: 10, Status: reservation.StatusCancelled})

	got := c.materializeReservations(ids)
	require.Len(t, got, 2)
	assert.Equal(t, reservation.StatusCancelled, got[0].Status)
	assert.Equal(t, reservation.StatusConfirmed, got[1].Status)
}
