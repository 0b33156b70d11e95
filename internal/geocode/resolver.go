// Package geocode resolves free-text delivery addresses to coordinates.
//
// A lookup yields zero or one coordinate. Failures of any kind are reported
// as "no result": callers drop the order from the current map pass instead
// of aborting it.
package geocode

import (
	"context"
	"strings"

	"dispatchmap/internal/domain/entities"
)

// Resolver turns an address into at most one coordinate.
type Resolver interface {
	Resolve(ctx context.Context, address string) (entities.Coordinate, bool)
}

// Normalize trims the address and collapses runs of whitespace, so that the
// same address typed slightly differently maps to the same lookup.
func Normalize(address string) string {
	return strings.Join(strings.Fields(address), " ")
}

// StaticResolver answers from a fixed table keyed by normalized address.
type StaticResolver struct {
	entries map[string]entities.Coordinate
}

func NewStaticResolver(entries map[string]entities.Coordinate) *StaticResolver {
	normalized := make(map[string]entities.Coordinate, len(entries))
	for addr, coord := range entries {
		normalized[Normalize(addr)] = coord
	}
	return &StaticResolver{entries: normalized}
}

func (r *StaticResolver) Resolve(ctx context.Context, address string) (entities.Coordinate, bool) {
	coord, ok := r.entries[Normalize(address)]
	return coord, ok
}

// noopResolver never resolves anything.
type noopResolver struct{}

// Disabled returns a Resolver for deployments without a geocoding provider.
func Disabled() Resolver {
	return noopResolver{}
}

func (noopResolver) Resolve(ctx context.Context, address string) (entities.Coordinate, bool) {
	return entities.Coordinate{}, false
}
