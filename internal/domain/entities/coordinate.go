package entities

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a latitude/longitude pair in decimal degrees. It is a small
// value type: it is passed and stored by value and never mutated after
// construction.
//
// The JSON field names match the storefront backend's wire format, so a
// Coordinate can be posted to the routing endpoints as-is.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinate validates the ranges and returns the coordinate.
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	c := Coordinate{Latitude: lat, Longitude: lon}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Validate checks latitude ∈ [-90,90] and longitude ∈ [-180,180]. NaN fails
// both comparisons and is rejected too.
func (c Coordinate) Validate() error {
	if !(c.Latitude >= -90 && c.Latitude <= 90) {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinate, c.Latitude)
	}
	if !(c.Longitude >= -180 && c.Longitude <= 180) {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

// AgentPosition is the last position reported by a delivery agent's device.
// Accuracy is the device-reported radius in meters; zero means unknown.
type AgentPosition struct {
	AgentID    string     `json:"agent_id"`
	Coordinate Coordinate `json:"coordinate"`
	Accuracy   float64    `json:"accuracy,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewAgentPosition stamps the position with the current time.
func NewAgentPosition(agentID string, coord Coordinate, accuracy float64) *AgentPosition {
	return &AgentPosition{
		AgentID:    agentID,
		Coordinate: coord,
		Accuracy:   accuracy,
		UpdatedAt:  time.Now(),
	}
}

// IsStale reports whether the position is older than maxAge at now. A
// non-positive maxAge disables the check.
func (p *AgentPosition) IsStale(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	return now.Sub(p.UpdatedAt) > maxAge
}
