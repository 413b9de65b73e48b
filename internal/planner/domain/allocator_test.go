package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBucket(segmentMinutes, allowed int) *DayBucket {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	return &DayBucket{
		Date:           time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Weekday:        1,
		AllowedMinutes: allowed,
		Segments: []*Segment{{
			Start: start,
			End:   start.Add(time.Duration(segmentMinutes) * time.Minute),
		}},
	}
}

func TestAllocate_ChunksByPreference(t *testing.T) {
	bucket := testBucket(120, 180)

	first, ok := Allocate(bucket, 300, 45, false)
	require.True(t, ok)
	assert.Equal(t, 45, first.Minutes)
	assert.Equal(t, bucket.Segments[0].Start, first.Start)

	second, ok := Allocate(bucket, 255, 45, false)
	require.True(t, ok)
	assert.True(t, second.Start.Equal(first.End))
	assert.Equal(t, 45, second.Minutes)
}

func TestAllocate_CapsAtMaxSession(t *testing.T) {
	bucket := testBucket(180, 300)

	placement, ok := Allocate(bucket, 300, 150, false)
	require.True(t, ok)
	assert.Equal(t, MaxSessionMinutes, placement.Minutes)
}

func TestAllocate_BoundedByDailyAllowance(t *testing.T) {
	bucket := testBucket(120, 30)

	placement, ok := Allocate(bucket, 60, 45, false)
	require.True(t, ok)
	assert.Equal(t, 30, placement.Minutes)

	_, ok = Allocate(bucket, 30, 45, false)
	assert.False(t, ok)
}

func TestAllocate_SkipsSubMinimumStubs(t *testing.T) {
	bucket := testBucket(10, 180)

	_, ok := Allocate(bucket, 60, 45, false)
	assert.False(t, ok)

	// Habits accept whatever fits.
	placement, ok := Allocate(bucket, 60, 45, true)
	require.True(t, ok)
	assert.Equal(t, 10, placement.Minutes)
}

func TestAllocate_TailMayBeShort(t *testing.T) {
	bucket := testBucket(120, 180)

	// remaining is already under the minimum, so the stub rule does not apply.
	placement, ok := Allocate(bucket, 20, 45, false)
	require.True(t, ok)
	assert.Equal(t, 20, placement.Minutes)
}

func TestAllocate_ZeroPreferenceDrainsSegment(t *testing.T) {
	bucket := testBucket(40, 180)

	placement, ok := Allocate(bucket, 50, 0, true)
	require.True(t, ok)
	assert.Equal(t, 40, placement.Minutes)
}

func TestAllocate_NothingForFinishedWork(t *testing.T) {
	bucket := testBucket(120, 180)
	_, ok := Allocate(bucket, 0, 45, false)
	assert.False(t, ok)
}

func TestAllocate_SecondSegmentWhenFirstFull(t *testing.T) {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	bucket := &DayBucket{
		AllowedMinutes: 180,
		Segments: []*Segment{
			{Start: start, End: start.Add(30 * time.Minute), Used: 30},
			{Start: start.Add(2 * time.Hour), End: start.Add(3 * time.Hour)},
		},
	}

	placement, ok := Allocate(bucket, 45, 45, false)
	require.True(t, ok)
	assert.True(t, placement.Start.Equal(start.Add(2*time.Hour)))
	assert.Equal(t, 45, placement.Minutes)
}
