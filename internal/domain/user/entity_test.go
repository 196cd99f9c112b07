package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_SetsActiveAndUTCTimestamp(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, loc)

	u := New("Li", "Alush", "li.alush@example.com", "hash", now)

	assert.Zero(t, u.ID)
	assert.True(t, u.Active)
	assert.Equal(t, time.UTC, u.CreatedAt.Location())
	assert.True(t, u.CreatedAt.Equal(now))
	assert.Equal(t, "hash", u.Password)
}

func TestDeactivate_IsIdempotent(t *testing.T) {
	u := New("Li", "Alush", "li@test.com", "hash", time.Now())

	assert.True(t, u.Deactivate())
	assert.False(t, u.Active)

	assert.False(t, u.Deactivate())
	assert.False(t, u.Active)
}

func TestPage_TotalPages(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		size  int
		want  int
	}{
		{name: "empty", total: 0, size: 10, want: 0},
		{name: "single partial page", total: 3, size: 10, want: 1},
		{name: "exact fit", total: 20, size: 10, want: 2},
		{name: "one over", total: 21, size: 10, want: 3},
		{name: "zero size", total: 5, size: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Page{TotalCount: tt.total, Size: tt.size}.TotalPages())
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(0, 10))
	assert.Equal(t, 20, Offset(2, 10))
	assert.Equal(t, 0, Offset(3, 0))
}
