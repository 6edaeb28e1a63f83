// Package geo holds the route geometry math used by the tracking engine:
// great-circle distances, polyline lengths and nearest-point projection of
// a vehicle position onto a planned route.
package geo

import "math"

const earthRadiusKM = 6371.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether the point is inside the WGS84 coordinate range.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// HaversineKM returns the great-circle distance between two points in
// kilometers.
func HaversineKM(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// PolylineLengthKM sums the segment distances of an ordered path.
func PolylineLengthKM(path []Point) float64 {
	var total float64
	for i := 0; i+1 < len(path); i++ {
		total += HaversineKM(path[i], path[i+1])
	}
	return total
}

// Projection describes where a position lands on a polyline.
type Projection struct {
	// SegmentIdx is the index of the nearest segment's start point.
	SegmentIdx int
	// SegmentFrac is the fractional position within that segment, in [0,1].
	SegmentFrac float64
	// AlongKM is the distance from the start of the polyline to the
	// projected point, measured along the path.
	AlongKM float64
	// CrossKM is the distance from the position to the projected point,
	// i.e. how far off the path the position is.
	CrossKM float64
	// Point is the projected point itself.
	Point Point
}

// ProjectOntoPolyline finds the nearest point on path to pos. Segment
// projection is done in a local equirectangular frame, which is accurate
// enough at route scale; distances along and across are haversine. The
// path must have at least two points.
func ProjectOntoPolyline(pos Point, path []Point) (Projection, bool) {
	if len(path) < 2 {
		return Projection{}, false
	}

	cosLat := math.Cos(pos.Lat * math.Pi / 180)
	best := Projection{CrossKM: math.MaxFloat64}

	for i := 0; i+1 < len(path); i++ {
		c1, c2 := path[i], path[i+1]

		// Local planar coordinates relative to segment start, longitude
		// scaled so x and y are comparable.
		vx := (c2.Lon - c1.Lon) * cosLat
		vy := c2.Lat - c1.Lat
		wx := (pos.Lon - c1.Lon) * cosLat
		wy := pos.Lat - c1.Lat

		denom := vx*vx + vy*vy
		t := 0.0
		if denom > 0 {
			t = (wx*vx + wy*vy) / denom
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
		}

		proj := Point{
			Lat: c1.Lat + t*(c2.Lat-c1.Lat),
			Lon: c1.Lon + t*(c2.Lon-c1.Lon),
		}
		cross := HaversineKM(pos, proj)
		if cross < best.CrossKM {
			best = Projection{
				SegmentIdx:  i,
				SegmentFrac: t,
				CrossKM:     cross,
				Point:       proj,
			}
		}
	}

	// Accumulate distance along the path up to the chosen segment, plus
	// the fraction inside it.
	var along float64
	for j := 0; j < best.SegmentIdx; j++ {
		along += HaversineKM(path[j], path[j+1])
	}
	along += best.SegmentFrac * HaversineKM(path[best.SegmentIdx], path[best.SegmentIdx+1])
	best.AlongKM = along

	return best, true
}
