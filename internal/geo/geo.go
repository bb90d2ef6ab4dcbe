// Package geo provides great-circle distance math for customer and
// service-center coordinates.
package geo

import "github.com/umahmood/haversine"

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the haversine great-circle distance between two points
// in kilometers (spherical Earth, radius 6371 km). It is commutative and
// returns 0 for identical coordinates. Longitude wraparound at the
// antimeridian gets no special handling.
func Distance(a, b Point) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: a.Latitude, Lon: a.Longitude},
		haversine.Coord{Lat: b.Latitude, Lon: b.Longitude},
	)
	return km
}
