// Coordinate types and the flat map projection used by the dashboard views
package geo

import "math"

// LatLng is a WGS84 coordinate in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Screen is a 2D display coordinate. Absolute placements are percentages of
// the map area, offsets are pixels relative to an anchor.
type Screen struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DegreeDistance returns the Euclidean distance between a and b in degree space.
// It is only meaningful for the short ranges used by geofence proximity checks.
func DegreeDistance(a, b LatLng) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

// Default projection parameters for the Nampula operating area.
var (
	DefaultOrigin = LatLng{Lat: -15.1171, Lng: 39.2662}
	DefaultScale  = 6000.0
)

// mapCenter is the percentage at which Origin is drawn on both axes.
const mapCenter = 50.0

// Projection maps coordinates onto a bounded display area with a fixed linear scale.
// The zero value is not useful; use DefaultProjection or set both fields.
type Projection struct {
	Origin LatLng  `json:"origin"`
	Scale  float64 `json:"scale"`
}

// DefaultProjection returns the projection centred on DefaultOrigin.
func DefaultProjection() Projection {
	return Projection{Origin: DefaultOrigin, Scale: DefaultScale}
}

// Project places p inside the map area in percent. The origin lands at (50, 50).
func (p Projection) Project(pt LatLng) Screen {
	return Screen{
		X: mapCenter + (pt.Lng-p.Origin.Lng)*p.Scale,
		Y: mapCenter + (pt.Lat-p.Origin.Lat)*p.Scale,
	}
}

// Offset returns the pixel offset of pt relative to anchor, used for trail dots
// and destination pins layered on top of an absolutely placed marker.
func (p Projection) Offset(pt, anchor LatLng) Screen {
	return Screen{
		X: (pt.Lng - anchor.Lng) * p.Scale,
		Y: (pt.Lat - anchor.Lat) * p.Scale,
	}
}
