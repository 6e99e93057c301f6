package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferencesValid(t *testing.T) {
	tests := []struct {
		name  string
		prefs Preferences
		want  bool
	}{
		{"sums to one", Preferences{WTime: 0.6, WGreen: 0.4}, true},
		{"all time", Preferences{WTime: 1, WGreen: 0}, true},
		{"all green", Preferences{WTime: 0, WGreen: 1}, true},
		{"sums above one", Preferences{WTime: 0.7, WGreen: 0.7}, false},
		{"sums below one", Preferences{WTime: 0.3, WGreen: 0.3}, false},
		{"negative weight", Preferences{WTime: -0.1, WGreen: 1.1}, false},
		{"within tolerance", Preferences{WTime: 0.5000001, WGreen: 0.4999999}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.prefs.Valid())
		})
	}
}

func TestEdgeFingerprint(t *testing.T) {
	t.Run("only walking segments contribute", func(t *testing.T) {
		rp := &RoutePlan{
			Segments: []Segment{
				{Kind: SegmentWalking, EdgeIDs: []int64{3, 1, 2}},
				{Kind: SegmentBusRide, RideEdgeIDs: []int64{99}},
			},
		}
		other := &RoutePlan{
			Segments: []Segment{
				{Kind: SegmentWalking, EdgeIDs: []int64{1, 2, 3}},
			},
		}
		assert.Equal(t, other.EdgeFingerprint(), rp.EdgeFingerprint())
	})

	t.Run("different edge sets fingerprint differently", func(t *testing.T) {
		a := &RoutePlan{Segments: []Segment{{Kind: SegmentWalking, EdgeIDs: []int64{1, 2}}}}
		b := &RoutePlan{Segments: []Segment{{Kind: SegmentWalking, EdgeIDs: []int64{1, 3}}}}
		assert.NotEqual(t, a.EdgeFingerprint(), b.EdgeFingerprint())
	})

	t.Run("no walking segments fingerprints empty", func(t *testing.T) {
		rp := &RoutePlan{Segments: []Segment{{Kind: SegmentBusRide}}}
		assert.Equal(t, "", rp.EdgeFingerprint())
	})
}
