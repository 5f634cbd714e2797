package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var digestDay = time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

func TestComposeDigest_Encouraging(t *testing.T) {
	d := ComposeDigest(digestDay, 4, 3)
	assert.Equal(t, 75.0, d.Percentage)
	assert.Contains(t, d.Message, "75.0%")
	assert.Contains(t, d.Message, "👍")
}

func TestComposeDigest_NoHabits(t *testing.T) {
	d := ComposeDigest(digestDay, 0, 0)
	assert.Equal(t, 0.0, d.Percentage)
	assert.Contains(t, d.Message, "0.0%")
	assert.Contains(t, d.Message, "💪")
}

func TestComposeDigest_BucketBoundaries(t *testing.T) {
	// Each bucket is inclusive at its lower edge.
	cases := []struct {
		total, completed int
		emoji            string
	}{
		{5, 5, "🎉"},  // 100%
		{5, 4, "🎉"},  // 80%
		{10, 7, "👍"}, // 70%
		{2, 1, "👍"},  // 50%
		{10, 4, "💪"}, // 40%
		{3, 0, "💪"},  // 0%
	}
	for _, tc := range cases {
		d := ComposeDigest(digestDay, tc.total, tc.completed)
		assert.Contains(t, d.Message, tc.emoji, "for %d/%d", tc.completed, tc.total)
	}
}

func TestComposeDigest_MessageContents(t *testing.T) {
	d := ComposeDigest(digestDay, 4, 3)
	assertOrder(t, d.Message,
		"09.06.2025",
		"Total habits: 4",
		"Completed: 3",
		"Completion rate: 75.0%",
	)
}
