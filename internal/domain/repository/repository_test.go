package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	cases := []struct {
		name       string
		page, size int
		want       Pagination
	}{
		{"默认值", 0, 0, Pagination{Page: 1, PageSize: 20}},
		{"负数页码", -3, 10, Pagination{Page: 1, PageSize: 10}},
		{"超过上限", 2, 500, Pagination{Page: 2, PageSize: 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewPagination(tc.page, tc.size))
		})
	}

	p := NewPagination(3, 25)
	assert.Equal(t, 50, p.Offset())
	assert.Equal(t, 25, p.Limit())
}

func TestNewPagedResult(t *testing.T) {
	p := NewPagination(1, 10)
	assert.Equal(t, 0, NewPagedResult([]int{}, 0, p).TotalPages)
	assert.Equal(t, 1, NewPagedResult([]int{1}, 10, p).TotalPages)
	assert.Equal(t, 3, NewPagedResult([]int{1}, 21, p).TotalPages)
}
