package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name       string
		page, size int
		want       []int
		totalPages int
		current    int
	}{
		{"first page", 1, 2, []int{1, 2}, 3, 1},
		{"last partial page", 3, 2, []int{5}, 3, 3},
		{"past the end", 9, 2, []int{}, 3, 3},
		{"invalid page", 0, 10, []int{1, 2, 3, 4, 5}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, info := Paginate(items, tt.page, tt.size)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.totalPages, info.TotalPages)
			assert.Equal(t, tt.current, info.CurrentPage)
			assert.Equal(t, int64(5), info.TotalItems)
		})
	}
}

func TestNewPaginationInfo_Empty(t *testing.T) {
	info := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, info.TotalPages)
	assert.Equal(t, 1, info.CurrentPage)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		query string
		page  int
		size  int
	}{
		{"explicit values", "page=3&size=20", 3, 20},
		{"defaults", "", DefaultPage, DefaultPageSize},
		{"out of range", "page=-1&size=100000", DefaultPage, DefaultPageSize},
		{"not numbers", "page=two&size=ten", DefaultPage, DefaultPageSize},
		{"max size", "size=500", DefaultPage, MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// gin caches the parsed query per context, so each case needs its own
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/courses?"+tt.query, nil)

			page, size := ParsePaginationParams(c)
			assert.Equal(t, tt.page, page)
			assert.Equal(t, tt.size, size)
		})
	}
}
