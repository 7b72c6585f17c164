package http

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fwwzhai/thrifty-backend/internal/domain/entity"
)

func TestFilterFromQuery(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/ws/feed?query=jacket&types=Jacket,Coat&conditions=Good&colors=blue,%20red&max_price_minor=5000"+
			"&size_gender=Man&size_type=Jacket&size_value=M&sort_key=price&sort_dir=asc&following_only=true",
		nil)

	filter := filterFromQuery(r)

	assert.Equal(t, "jacket", filter.Query)
	assert.Equal(t, []string{"Jacket", "Coat"}, filter.Types)
	assert.Equal(t, []string{"Good"}, filter.Conditions)
	assert.Equal(t, []string{"blue", "red"}, filter.Colors)
	assert.Equal(t, int64(5000), filter.MaxPriceMinor)
	assert.Equal(t, entity.SizeSelector{Gender: "Man", Type: "Jacket", Size: "M"}, filter.Size)
	assert.Equal(t, entity.SortByPrice, filter.SortKey)
	assert.Equal(t, entity.SortAsc, filter.SortDir)
	assert.True(t, filter.FollowingOnly)
}

func TestFilterFromQuery_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws/feed", nil)

	filter := filterFromQuery(r)

	assert.Empty(t, filter.Query)
	assert.Nil(t, filter.Types)
	assert.Zero(t, filter.MaxPriceMinor)
	assert.True(t, filter.Size.IsEmpty())
	assert.False(t, filter.FollowingOnly)
}

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, splitCSV(""))
	assert.Nil(t, splitCSV(" , ,"))
	assert.Equal(t, []string{"a", "b"}, splitCSV("a, b"))
}
