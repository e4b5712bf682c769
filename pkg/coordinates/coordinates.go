package coordinates

import (
	"math"
)

// Constants for coordinate calculations
const (
	// DegreesToRadians converts degrees to radians
	DegreesToRadians = math.Pi / 180.0

	// RadiansToDegrees converts radians to degrees
	RadiansToDegrees = 180.0 / math.Pi

	// EarthRadiusKm is the Earth's radius in kilometers (WGS84 mean radius)
	EarthRadiusKm = 6371.0

	// KmPerNauticalMile converts nautical miles to kilometers
	KmPerNauticalMile = 1.852
)

// Geographic represents a position on Earth's surface.
// Uses the WGS84 coordinate system (same as GPS).
type Geographic struct {
	// Latitude in decimal degrees (-90 to +90)
	// Positive = North, Negative = South
	Latitude float64

	// Longitude in decimal degrees (-180 to +180)
	// Positive = East, Negative = West
	Longitude float64
}

// ObservationPoint is the fixed location around which flights count as nearby.
// The region of interest is the rectangle Location ± tolerances, in raw degrees.
type ObservationPoint struct {
	// Location is the observer's position
	Location Geographic

	// LatTolerance is the half-height of the region in degrees of latitude
	LatTolerance float64

	// LonTolerance is the half-width of the region in degrees of longitude
	LonTolerance float64
}

// Bounds is a latitude/longitude rectangle.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Bounds returns the region of interest around the observation point.
func (p ObservationPoint) Bounds() Bounds {
	return Bounds{
		MinLat: p.Location.Latitude - p.LatTolerance,
		MaxLat: p.Location.Latitude + p.LatTolerance,
		MinLon: p.Location.Longitude - p.LonTolerance,
		MaxLon: p.Location.Longitude + p.LonTolerance,
	}
}

// Contains reports whether (lat, lon) lies strictly inside the bounds.
// Points on an edge are outside.
func (b Bounds) Contains(lat, lon float64) bool {
	return b.MinLat < lat && lat < b.MaxLat &&
		b.MinLon < lon && lon < b.MaxLon
}

// Contains reports whether (lat, lon) lies strictly inside the region of interest.
func (p ObservationPoint) Contains(lat, lon float64) bool {
	return p.Bounds().Contains(lat, lon)
}

// DegreeDistance is the Euclidean distance between (lat, lon) and the
// observation point measured in raw degrees. No great-circle correction.
func (p ObservationPoint) DegreeDistance(lat, lon float64) float64 {
	x := lat - p.Location.Latitude
	y := lon - p.Location.Longitude
	return math.Sqrt(x*x + y*y)
}

// Bearing calculates the initial bearing (forward azimuth) from one point to another.
// Uses spherical trigonometry to calculate the bearing along a great circle.
// Returns bearing in degrees (0-360), where 0/360 = North, 90 = East, 180 = South, 270 = West.
func Bearing(from, to Geographic) float64 {
	lat1 := from.Latitude * DegreesToRadians
	lon1 := from.Longitude * DegreesToRadians
	lat2 := to.Latitude * DegreesToRadians
	lon2 := to.Longitude * DegreesToRadians

	dLon := lon2 - lon1
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	bearing := math.Atan2(y, x) * RadiansToDegrees

	if bearing < 0 {
		bearing += 360
	}

	return bearing
}

// DistanceNauticalMiles calculates the great-circle distance between two points.
// Uses the Haversine formula. Only used for reporting; selection works in
// raw degrees (see ObservationPoint.DegreeDistance).
func DistanceNauticalMiles(from, to Geographic) float64 {
	lat1Rad := from.Latitude * DegreesToRadians
	lon1Rad := from.Longitude * DegreesToRadians
	lat2Rad := to.Latitude * DegreesToRadians
	lon2Rad := to.Longitude * DegreesToRadians

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c / KmPerNauticalMile
}
