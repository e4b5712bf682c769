// Package opensky provides a client for the OpenSky Network REST API.
//
// Only the anonymous "all states" endpoint is used: it returns the latest
// state vector of every aircraft OpenSky currently tracks.
//
// API Documentation: https://openskynetwork.github.io/opensky-api/rest.html
package opensky

import (
	"context"
	"encoding/json"
	"fmt"
)

// StateVector is one aircraft's last known state.
//
// OpenSky publishes state vectors as fixed-position JSON arrays rather than
// keyed objects. UnmarshalJSON maps each position onto a named field.
// Positions the API documents as nullable are pointers (or a nil slice for
// Sensors). Marshalling produces a keyed object.
type StateVector struct {
	// ICAO24 is the transponder's 24-bit address as a hex string (e.g., "4b1805")
	ICAO24 string `json:"icao24"`

	// Callsign is the 8-character callsign, padded with spaces.
	// Nil when no callsign has been received.
	Callsign *string `json:"callsign"`

	// OriginCountry is inferred from the ICAO24 address
	OriginCountry string `json:"origin_country"`

	// TimePosition is the unix timestamp (seconds) of the last position update
	TimePosition *float64 `json:"time_position"`

	// TimeVelocity is the unix timestamp (seconds) of the last velocity update
	TimeVelocity *float64 `json:"time_velocity"`

	// Longitude in WGS-84 decimal degrees
	Longitude *float64 `json:"longitude"`

	// Latitude in WGS-84 decimal degrees
	Latitude *float64 `json:"latitude"`

	// Altitude in meters (barometric or geometric)
	Altitude *float64 `json:"altitude"`

	// OnGround is true if the position came from a surface position report
	OnGround bool `json:"on_ground"`

	// Velocity over ground in m/s
	Velocity *float64 `json:"velocity"`

	// Heading in decimal degrees clockwise from north (north = 0)
	Heading *float64 `json:"heading"`

	// VerticalRate in m/s (positive = climbing, negative = descending)
	VerticalRate *float64 `json:"vertical_rate"`

	// Sensors are the IDs of receivers that contributed to this state vector.
	// Nil unless the request filtered by sensor.
	Sensors []int `json:"sensors"`
}

// Array positions of each StateVector field.
const (
	posICAO24 = iota
	posCallsign
	posOriginCountry
	posTimePosition
	posTimeVelocity
	posLongitude
	posLatitude
	posAltitude
	posOnGround
	posVelocity
	posHeading
	posVerticalRate
	posSensors
)

// UnmarshalJSON decodes a state vector from its positional array form.
// Missing trailing positions decode as null; positions beyond Sensors
// (later API revisions append more) are ignored.
func (sv *StateVector) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("state vector is not an array: %w", err)
	}

	var v StateVector
	fields := []struct {
		pos int
		dst any
	}{
		{posICAO24, &v.ICAO24},
		{posCallsign, &v.Callsign},
		{posOriginCountry, &v.OriginCountry},
		{posTimePosition, &v.TimePosition},
		{posTimeVelocity, &v.TimeVelocity},
		{posLongitude, &v.Longitude},
		{posLatitude, &v.Latitude},
		{posAltitude, &v.Altitude},
		{posOnGround, &v.OnGround},
		{posVelocity, &v.Velocity},
		{posHeading, &v.Heading},
		{posVerticalRate, &v.VerticalRate},
		{posSensors, &v.Sensors},
	}

	for _, f := range fields {
		if f.pos >= len(raw) {
			continue
		}
		if err := json.Unmarshal(raw[f.pos], f.dst); err != nil {
			return fmt.Errorf("state vector %q position %d: %w", v.ICAO24, f.pos, err)
		}
	}

	*sv = v
	return nil
}

// Position returns the vector's latitude and longitude.
// ok is false if either coordinate is missing.
func (sv StateVector) Position() (lat, lon float64, ok bool) {
	if sv.Latitude == nil || sv.Longitude == nil {
		return 0, 0, false
	}
	return *sv.Latitude, *sv.Longitude, true
}

// StateSnapshot is the response envelope of the states endpoint.
type StateSnapshot struct {
	// Time is the unix timestamp (seconds) the state vectors are associated with
	Time int64 `json:"time"`

	// States holds one entry per aircraft. Empty, never nil, after decoding.
	States []StateVector `json:"states"`
}

// Source is the interface a state vector provider must implement.
// It lets the watcher run against the live API or a test double.
type Source interface {
	// FetchSnapshot retrieves the current set of state vectors.
	FetchSnapshot(ctx context.Context) (*StateSnapshot, error)
}
