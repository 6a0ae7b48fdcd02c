package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedNow(iso string) func() time.Time {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(12 * time.Hour) }
}

func TestRangeResolverGolden(t *testing.T) {
	r := NewRangeResolver(fixedNow("2025-03-15"))

	assert.Equal(t, DateRange{Start: "2025-03-15", End: "2025-03-15"}, r.Today())
	assert.Equal(t, DateRange{Start: "2025-03-14", End: "2025-03-14"}, r.Yesterday())
	assert.Equal(t, DateRange{Start: "2025-03-08", End: "2025-03-15"}, r.LastNDays(7))
	assert.Equal(t, DateRange{Start: "2025-03-01", End: "2025-03-15"}, r.ThisMonth())
	assert.Equal(t, DateRange{Start: "2025-02-01", End: "2025-02-28"}, r.LastMonth())
}

func TestRangeResolverYearBoundary(t *testing.T) {
	r := NewRangeResolver(fixedNow("2025-01-01"))

	assert.Equal(t, DateRange{Start: "2024-12-31", End: "2024-12-31"}, r.Yesterday())
	assert.Equal(t, DateRange{Start: "2024-12-01", End: "2024-12-31"}, r.LastMonth())
	assert.Equal(t, DateRange{Start: "2025-01-01", End: "2025-01-01"}, r.ThisMonth())
}

func TestLastNDaysClampsToOne(t *testing.T) {
	r := NewRangeResolver(fixedNow("2025-03-15"))

	one := DateRange{Start: "2025-03-14", End: "2025-03-15"}
	assert.Equal(t, one, r.LastNDays(1))
	assert.Equal(t, one, r.LastNDays(0))
	assert.Equal(t, one, r.LastNDays(-3))
}

func TestLastNDaysCrossesMonthBoundary(t *testing.T) {
	r := NewRangeResolver(fixedNow("2025-03-05"))
	assert.Equal(t, DateRange{Start: "2025-02-23", End: "2025-03-05"}, r.LastNDays(10))
}
