package geo

import (
	"math"
	"testing"
)

var (
	vancouver  = Point{Latitude: 49.2827, Longitude: -123.1207}
	losAngeles = Point{Latitude: 34.0522, Longitude: -118.2437}
	newYork    = Point{Latitude: 40.7128, Longitude: -74.0060}
)

func TestDistanceZeroForIdenticalPoints(t *testing.T) {
	if got := Distance(vancouver, vancouver); got != 0 {
		t.Fatalf("expected zero distance, got %v", got)
	}
}

func TestDistanceIsCommutative(t *testing.T) {
	forward := Distance(vancouver, losAngeles)
	backward := Distance(losAngeles, vancouver)
	if math.Abs(forward-backward) > 1e-9 {
		t.Fatalf("distance not commutative: %v vs %v", forward, backward)
	}
}

func TestDistanceKnownCities(t *testing.T) {
	tests := []struct {
		name     string
		from, to Point
		min, max float64
	}{
		{"vancouver to los angeles", vancouver, losAngeles, 1700, 1780},
		{"vancouver to new york", vancouver, newYork, 3870, 3970},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Distance(tc.from, tc.to)
			if got < tc.min || got > tc.max {
				t.Fatalf("distance %v outside expected range [%v, %v]", got, tc.min, tc.max)
			}
		})
	}
}

func TestCloserCityRanksCloser(t *testing.T) {
	toLA := Distance(vancouver, losAngeles)
	toNY := Distance(vancouver, newYork)
	if toLA >= toNY {
		t.Fatalf("expected los angeles (%v km) closer to vancouver than new york (%v km)", toLA, toNY)
	}
}

func TestDistanceBoundedByHalfCircumference(t *testing.T) {
	antipodal := Point{Latitude: -vancouver.Latitude, Longitude: vancouver.Longitude + 180}
	if got := Distance(vancouver, antipodal); got > 6371*math.Pi+1 {
		t.Fatalf("distance %v exceeds half the Earth's circumference", got)
	}
}
