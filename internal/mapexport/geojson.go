// Package mapexport converts render models into GeoJSON for map clients
// that draw features directly.
package mapexport

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"dispatchmap/internal/domain/entities"
)

func point(c entities.Coordinate) orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// FeatureCollection returns the origin, each destination and, when it has a
// segment, the polyline. Features appear in that order.
func FeatureCollection(model *entities.MapRenderModel) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	origin := geojson.NewFeature(point(model.Origin.Coordinate))
	origin.Properties["kind"] = "origin"
	origin.Properties["title"] = model.Origin.Title
	fc.Append(origin)

	for _, m := range model.Destinations {
		f := geojson.NewFeature(point(m.Coordinate))
		f.Properties["kind"] = "destination"
		f.Properties["order_id"] = m.OrderID
		f.Properties["title"] = m.Title
		if m.Description != "" {
			f.Properties["description"] = m.Description
		}
		if eta := model.ETAByOrderID[m.OrderID]; eta != nil {
			f.Properties["eta"] = eta.UTC().Format(time.RFC3339)
		}
		fc.Append(f)
	}

	if model.HasLine() {
		line := make(orb.LineString, len(model.Polyline))
		for i, c := range model.Polyline {
			line[i] = point(c)
		}
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "route"
		f.Properties["route_source"] = string(model.RouteSource)
		f.Properties["distance_km"] = model.DistanceKm
		fc.Append(f)
	}

	return fc
}
