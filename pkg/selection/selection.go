// Package selection reduces a snapshot of state vectors to the single
// flight of interest and formats its display identifier.
//
// Every function here is pure: inputs are never modified and the same
// input always yields the same result.
package selection

import (
	"strings"

	"github.com/unklstewy/flightwatch/pkg/coordinates"
	"github.com/unklstewy/flightwatch/pkg/opensky"
)

// Strategy picks at most one vector out of a snapshot.
// A nil result means no flight qualifies.
type Strategy func(vectors []opensky.StateVector) *opensky.StateVector

// NearestStrategy is the default strategy: keep named vectors, keep those
// inside the observation region, then pick the one closest to the observer.
func NearestStrategy(point coordinates.ObservationPoint) Strategy {
	return func(vectors []opensky.StateVector) *opensky.StateVector {
		return Nearest(FilterRegion(FilterNamed(vectors), point), point)
	}
}

// LowestAltitudeStrategy picks the lowest-flying vector of the whole
// snapshot, without any name or region filtering.
func LowestAltitudeStrategy() Strategy {
	return LowestAltitude
}

// FilterNamed keeps vectors whose callsign is present and non-empty.
// Whitespace-only callsigns are kept.
func FilterNamed(vectors []opensky.StateVector) []opensky.StateVector {
	out := make([]opensky.StateVector, 0, len(vectors))
	for _, v := range vectors {
		if v.Callsign != nil && *v.Callsign != "" {
			out = append(out, v)
		}
	}
	return out
}

// FilterRegion keeps vectors with a known position strictly inside the
// observation point's region.
func FilterRegion(vectors []opensky.StateVector, point coordinates.ObservationPoint) []opensky.StateVector {
	bounds := point.Bounds()
	out := make([]opensky.StateVector, 0, len(vectors))
	for _, v := range vectors {
		lat, lon, ok := v.Position()
		if !ok {
			continue
		}
		if bounds.Contains(lat, lon) {
			out = append(out, v)
		}
	}
	return out
}

// Nearest returns the vector closest to the observation point in raw
// degree space. On ties the earliest vector wins. Vectors without a
// position are skipped; nil is returned if none remain.
func Nearest(vectors []opensky.StateVector, point coordinates.ObservationPoint) *opensky.StateVector {
	best := -1
	bestDist := 0.0
	for i, v := range vectors {
		lat, lon, ok := v.Position()
		if !ok {
			continue
		}
		d := point.DegreeDistance(lat, lon)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return nil
	}
	v := vectors[best]
	return &v
}

// LowestAltitude returns the vector with the minimum reported altitude.
// On ties the earliest vector wins. Vectors without an altitude are
// skipped; nil is returned if none remain.
func LowestAltitude(vectors []opensky.StateVector) *opensky.StateVector {
	best := -1
	for i, v := range vectors {
		if v.Altitude == nil {
			continue
		}
		if best < 0 || *v.Altitude < *vectors[best].Altitude {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	v := vectors[best]
	return &v
}

// FormatIdentifier returns the display identifier of a selected vector:
// its callsign without the provider's space padding, or "" if there is
// no vector or no callsign.
func FormatIdentifier(v *opensky.StateVector) string {
	if v == nil || v.Callsign == nil {
		return ""
	}
	return strings.TrimSpace(*v.Callsign)
}
