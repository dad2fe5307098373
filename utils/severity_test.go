package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityFromScoreBuckets(t *testing.T) {
	cases := []struct {
		score int
		want  Severity
	}{
		{1, SeverityNone},
		{2, SeverityNone},
		{3, SeverityMild},
		{4, SeverityMild},
		{5, SeverityModerate},
		{7, SeverityModerate},
		{8, SeveritySevere},
		{10, SeveritySevere},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SeverityFromScore(tc.score), "score %d", tc.score)
	}
}

func TestScoreFromSeverityRepresentatives(t *testing.T) {
	assert.Equal(t, 1, ScoreFromSeverity(SeverityNone))
	assert.Equal(t, 3, ScoreFromSeverity(SeverityMild))
	assert.Equal(t, 6, ScoreFromSeverity(SeverityModerate))
	assert.Equal(t, 9, ScoreFromSeverity(SeveritySevere))
}

// A round trip lands back in the same bucket, not on the original score.
func TestBucketMappingRoundTrip(t *testing.T) {
	for score := 1; score <= 10; score++ {
		sev := SeverityFromScore(score)
		back := ScoreFromSeverity(sev)
		assert.Equal(t, sev, SeverityFromScore(back), "score %d drifted buckets", score)
	}
}

func TestParseSeverity(t *testing.T) {
	for _, sev := range []Severity{SeverityNone, SeverityMild, SeverityModerate, SeveritySevere} {
		got, ok := ParseSeverity(sev.String())
		assert.True(t, ok)
		assert.Equal(t, sev, got)
	}
	_, ok := ParseSeverity("catastrophic")
	assert.False(t, ok)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "none", SeverityNone.String())
	assert.Equal(t, "severe", SeveritySevere.String())
}
