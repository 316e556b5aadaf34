// Package avoid implements an incremental, object-avoiding line router: it
// maintains a visibility graph over a mutable scene of polygonal shapes and
// produces shortest obstacle-avoiding polyline or orthogonal routes for
// connectors between points in the plane.
package avoid

import "math"

// areaTolerance bounds the signed-twice-area used by vecDir to treat
// near-collinear triples as exactly collinear.
const areaTolerance = 1e-3

// coordTolerance bounds coordinate-level comparisons (segment intersection
// endpoint snapping, breakpoint grouping in the orthogonal sweep).
const coordTolerance = 1e-4

// coordClamp is the absolute coordinate magnitude beyond which inputs are
// clipped to keep signed-area arithmetic within double-precision headroom.
const coordClamp = 1e8

// Point is a position in the plane plus two tag fields used only for
// diagnostics and for relating display-route points back to graph
// vertices. Equality is exact (bit-equal) coordinates; ordering is the
// lexicographic (X, Y) total order used by ordered sets.
type Point struct {
	X, Y float64

	// OwnerID and VertexNum are diagnostic tags: which vertex (if any)
	// this point was copied from. They play no role in geometry or
	// equality and are not compared by PointsEqual.
	OwnerID   uint64
	VertexNum int
}

// ClampCoord clips a coordinate magnitude to the supported range.
func ClampCoord(v float64) float64 {
	if v > coordClamp {
		return coordClamp
	}
	if v < -coordClamp {
		return -coordClamp
	}
	return v
}

// NewPoint constructs a Point with clamped coordinates and no tags.
func NewPoint(x, y float64) Point {
	return Point{X: ClampCoord(x), Y: ClampCoord(y)}
}

// PointsEqual reports exact (bit-equal) coordinate equality, ignoring tags.
func PointsEqual(a, b Point) bool {
	return a.X == b.X && a.Y == b.Y
}

// PointLess implements the total (X, Y) lexicographic order used by
// ordered vertex sets.
func PointLess(a, b Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// Sub returns a-b as a vector (a Point used as a displacement).
func (a Point) Sub(b Point) Point {
	return Point{X: a.X - b.X, Y: a.Y - b.Y}
}

// Add returns a+b.
func (a Point) Add(b Point) Point {
	return Point{X: a.X + b.X, Y: a.Y + b.Y}
}

// Dist returns the Euclidean distance between a and b.
func (a Point) Dist(b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Hypot(dx, dy)
}

// direction is the sign of vecDir: left turn, collinear, or right turn.
type direction int

const (
	dirRight direction = -1
	dirNone  direction = 0
	dirLeft  direction = 1
)

// vecDir returns the sign of twice the signed area of triangle (a,b,c):
// +1 if c is to the left of a->b, -1 if to the right, 0 if (within
// areaTolerance) collinear. This is the single primitive every other
// geometric test in this file is built from.
func vecDir(a, b, c Point) direction {
	area := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if area > areaTolerance {
		return dirLeft
	}
	if area < -areaTolerance {
		return dirRight
	}
	return dirNone
}

// onSegment reports whether c, known collinear with a-b, lies within the
// closed bounding box of segment a-b.
func onSegment(a, b, c Point) bool {
	return math.Min(a.X, b.X)-coordTolerance <= c.X && c.X <= math.Max(a.X, b.X)+coordTolerance &&
		math.Min(a.Y, b.Y)-coordTolerance <= c.Y && c.Y <= math.Max(a.Y, b.Y)+coordTolerance
}

// segmentIntersect reports whether the open segments a-b and c-d properly
// cross. Endpoint contact (a shared endpoint, or one segment's endpoint
// touching the interior of the other) returns false: only a transversal
// crossing of the two open segments counts.
func segmentIntersect(a, b, c, d Point) bool {
	d1 := vecDir(c, d, a)
	d2 := vecDir(c, d, b)
	d3 := vecDir(a, b, c)
	d4 := vecDir(a, b, d)

	if d1 != d2 && d3 != d4 && d1 != dirNone && d2 != dirNone && d3 != dirNone && d4 != dirNone {
		return true
	}
	return false
}

// segmentShapeIntersect is segmentIntersect relaxed for candidate
// visibility edges against a shape boundary edge: it allows a single
// endpoint-touch (the candidate edge passing exactly through a-b's
// endpoint, e.g. sharing a shape corner vertex) but treats a *second*
// endpoint-touch as a blocking intersection. This stops visibility "leaking"
// through shapes that are butted flush against each other.
func segmentShapeIntersect(a, b, c, d Point) bool {
	if segmentIntersect(a, b, c, d) {
		return true
	}

	// A touch point shared by both segments (e.g. a common endpoint) is
	// found from both sides but counts once.
	var touched []Point
	touch := func(p Point) {
		for _, q := range touched {
			if PointsEqual(p, q) {
				return
			}
		}
		touched = append(touched, p)
	}
	if vecDir(c, d, a) == dirNone && onSegment(c, d, a) {
		touch(a)
	}
	if vecDir(c, d, b) == dirNone && onSegment(c, d, b) {
		touch(b)
	}
	if vecDir(a, b, c) == dirNone && onSegment(a, b, c) {
		touch(c)
	}
	if vecDir(a, b, d) == dirNone && onSegment(a, b, d) {
		touch(d)
	}
	return len(touched) >= 2
}

// inValidRegion tests whether point b lies in the locally valid half-plane
// at shape corner a1, given its boundary neighbours a0 (previous corner)
// and a2 (next corner). ignoreRegions relaxes the test so that visibility
// across concave shapes is allowed (Config.IgnoreRegions).
//
// The shape's interior lies to the left of each boundary edge. At a convex
// (left-turn) corner b is valid unless it is strictly on the interior side
// of both adjoining edges, i.e. the valid region is the union of the two
// outward half-planes. At a concave (right-turn) corner the valid region is
// their intersection: b must be on the interior side of neither edge.
func inValidRegion(ignoreRegions bool, a0, a1, a2, b Point) bool {
	if ignoreRegions {
		return true
	}
	turn := vecDir(a0, a1, a2)
	side1 := vecDir(a0, a1, b)
	side2 := vecDir(a1, a2, b)

	if turn == dirLeft {
		// Convex corner (left turn): b must not be left of both (a0,a1)
		// and (a1,a2).
		return side1 != dirLeft || side2 != dirLeft
	}
	if turn == dirRight {
		// Reflex/concave corner: b must be left of neither edge.
		return side1 != dirLeft && side2 != dirLeft
	}
	// a0, a1, a2 collinear: the corner does not constrain visibility.
	return true
}

// inPoly tests point containment for a convex polygon using a signed-area
// loop: p is inside iff it is consistently on one side of every edge.
func inPoly(poly Polygon, p Point) bool {
	n := len(poly.Points)
	if n < 3 {
		return false
	}
	var sign direction
	for i := 0; i < n; i++ {
		a := poly.Points[i]
		b := poly.Points[(i+1)%n]
		if PointsEqual(a, b) {
			continue
		}
		d := vecDir(a, b, p)
		if d == dirNone {
			return false // on an edge's line: not strictly inside
		}
		if sign == dirNone {
			sign = d
		} else if d != sign {
			return false
		}
	}
	return true
}

// inPolyGeneral tests point containment for an arbitrary (possibly
// non-convex) simple polygon by casting both a right-going and a
// left-going horizontal ray from p and counting boundary crossings. p is
// considered inside iff the two parities agree as "odd" (both rays see an
// odd number of crossings); disagreement between the two rays only arises
// from a vertex-touching degenerate case, which is treated as outside.
func inPolyGeneral(poly Polygon, p Point) bool {
	n := len(poly.Points)
	if n < 3 {
		return false
	}
	rightCrossings := 0
	leftCrossings := 0
	for i := 0; i < n; i++ {
		a := poly.Points[i]
		b := poly.Points[(i+1)%n]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if xCross > p.X {
				rightCrossings++
			}
			if xCross < p.X {
				leftCrossings++
			}
		}
	}
	rightOdd := rightCrossings%2 == 1
	leftOdd := leftCrossings%2 == 1
	return rightOdd && leftOdd
}
