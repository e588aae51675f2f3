package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/granblue-checker/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestNewPaginationParams(t *testing.T) {
	tests := []struct {
		name       string
		page       *int
		limit      *int
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", nil, nil, 1, 50, 0},
		{"explicit", intPtr(3), intPtr(10), 3, 10, 20},
		{"limit capped", intPtr(1), intPtr(1000), 1, 200, 0},
		{"non-positive ignored", intPtr(0), intPtr(-5), 1, 50, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := domain.NewPaginationParams(tc.page, tc.limit)
			assert.Equal(t, tc.wantPage, p.Page)
			assert.Equal(t, tc.wantLimit, p.Limit)
			assert.Equal(t, tc.wantOffset, p.Offset())
		})
	}
}
