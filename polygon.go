package avoid

import "math"

// PathOp tags a point in a curved polyline: M(ove), L(ine), or C (one of
// three consecutive cubic Bezier control/end points). A plain (uncurved)
// polyline or shape polygon carries no PathOps at all.
type PathOp byte

const (
	OpMove  PathOp = 'M'
	OpLine  PathOp = 'L'
	OpCurve PathOp = 'C'
	OpClose PathOp = 'Z'
)

// Polygon is an ordered sequence of points. A shape polygon is implicitly
// closed (its last vertex joins its first); a connector's raw/display
// route is open. Ops, when non-nil, is a parallel sequence of PathOp tags
// produced by CurvedPolyline annotating a curved-corner rendering of
// Points; Ops is nil for an un-curved polygon or polyline.
type Polygon struct {
	Points []Point
	Ops    []PathOp
}

// NewPolygon builds a Polygon from literal points with no curve ops.
func NewPolygon(pts ...Point) Polygon {
	return Polygon{Points: append([]Point(nil), pts...)}
}

// Translate returns a new polygon with (dx, dy) added to every vertex; the
// receiver is left unchanged and the result carries no Ops.
func (p Polygon) Translate(dx, dy float64) Polygon {
	out := make([]Point, len(p.Points))
	for i, pt := range p.Points {
		out[i] = Point{X: ClampCoord(pt.X + dx), Y: ClampCoord(pt.Y + dy), OwnerID: pt.OwnerID, VertexNum: pt.VertexNum}
	}
	return Polygon{Points: out}
}

// BoundingRect returns the axis-aligned bounding box (minX, minY, maxX,
// maxY) of the polygon's points.
func (p Polygon) BoundingRect() (minX, minY, maxX, maxY float64) {
	if len(p.Points) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = p.Points[0].X, p.Points[0].Y
	maxX, maxY = minX, minY
	for _, pt := range p.Points[1:] {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	return
}

// TotalLength sums the Euclidean length of every consecutive segment. For
// a closed shape polygon, call with an explicit closing point appended if
// perimeter (rather than open path length) is desired.
func (p Polygon) TotalLength() float64 {
	total := 0.0
	for i := 1; i < len(p.Points); i++ {
		total += p.Points[i-1].Dist(p.Points[i])
	}
	return total
}

// Simplify collapses collinear consecutive segments: any interior vertex
// whose neighbours make it a straight continuation (vecDir == dirNone) is
// dropped. Ops, if present, are dropped (simplification only makes sense
// on a plain polyline; curve it again afterwards if needed).
func (p Polygon) Simplify() Polygon {
	if len(p.Points) < 3 {
		return Polygon{Points: append([]Point(nil), p.Points...)}
	}
	out := []Point{p.Points[0]}
	for i := 1; i < len(p.Points)-1; i++ {
		prev := out[len(out)-1]
		cur := p.Points[i]
		next := p.Points[i+1]
		if vecDir(prev, cur, next) == dirNone && sameRay(prev, cur, next) {
			continue // collinear continuation, drop cur
		}
		out = append(out, cur)
	}
	out = append(out, p.Points[len(p.Points)-1])
	return Polygon{Points: out}
}

// sameRay additionally verifies cur lies between prev and next (and not,
// e.g., a reversal back the way the path came), so a degenerate back-and-
// forth isn't mistaken for a straight continuation.
func sameRay(prev, cur, next Point) bool {
	dx1, dy1 := cur.X-prev.X, cur.Y-prev.Y
	dx2, dy2 := next.X-cur.X, next.Y-cur.Y
	return dx1*dx2+dy1*dy2 >= 0
}

// CurvedPolyline converts a simplified polyline into a sequence of points
// tagged M, L, C,C,C, L, …, (Z) in which each interior corner is replaced
// by a cubic Bezier curve: the curve's two endpoints are shortened back
// along the adjoining segments by shortenLength (each end clamped
// separately to half of its own segment's length when the requested
// amount would overrun it, degrading gracefully to the corner point itself
// for a zero-length segment), and its two interior control points are the
// midpoints between each shortened endpoint and the original corner.
//
// closed additionally joins the last point back to the first as a curved
// corner and appends an OpClose tag.
func CurvedPolyline(poly Polygon, shortenLength float64, closed bool) Polygon {
	simplified := poly.Simplify()
	pts := simplified.Points
	n := len(pts)
	if n < 3 || shortenLength <= 0 {
		return simplified
	}

	var outPts []Point
	var outOps []PathOp

	emit := func(p Point, op PathOp) {
		outPts = append(outPts, p)
		outOps = append(outOps, op)
	}

	start := 0
	end := n - 1
	if closed {
		// Treat the sequence as cyclic; corner processing wraps around.
		emit(pts[0], OpMove)
	} else {
		emit(pts[0], OpMove)
	}
	_ = start
	_ = end

	cornerCount := n - 2
	if closed {
		cornerCount = n
	}

	prevEmittedIsCorner := false
	for i := 0; i < cornerCount; i++ {
		var before, corner, after Point
		if closed {
			before = pts[(i-1+n)%n]
			corner = pts[i%n]
			after = pts[(i+1)%n]
		} else {
			before = pts[i]
			corner = pts[i+1]
			after = pts[i+2]
		}

		segIn := before.Dist(corner)
		segOut := corner.Dist(after)
		shortenIn := clampShorten(shortenLength, segIn)
		shortenOut := clampShorten(shortenLength, segOut)

		p0 := lerpTowards(corner, before, shortenIn)
		p3 := lerpTowards(corner, after, shortenOut)

		if !closed || i > 0 {
			emit(p0, OpLine)
		} else if closed {
			// First corner in a closed loop: the straight run from pts[0]
			// to p0 is the opening line segment.
			emit(p0, OpLine)
		}

		c1 := midpoint(p0, corner)
		c2 := midpoint(corner, p3)
		emit(c1, OpCurve)
		emit(c2, OpCurve)
		emit(p3, OpCurve)
		prevEmittedIsCorner = true
	}
	_ = prevEmittedIsCorner

	if closed {
		emit(pts[0], OpClose)
	} else {
		emit(pts[n-1], OpLine)
	}

	return Polygon{Points: outPts, Ops: outOps}
}

// clampShorten reduces a requested shorten length to half the adjoining
// segment when it would otherwise overrun the segment (degrading to the
// corner point itself in the limit).
func clampShorten(requested, segLen float64) float64 {
	if requested > segLen/2 {
		return segLen / 2
	}
	return requested
}

// lerpTowards returns the point at distance `dist` from `from`, along the
// ray from `from` to `to`. If from==to (zero-length segment) it returns
// from unchanged.
func lerpTowards(from, to Point, dist float64) Point {
	total := from.Dist(to)
	if total <= 0 {
		return from
	}
	t := dist / total
	return Point{X: from.X + (to.X-from.X)*t, Y: from.Y + (to.Y-from.Y)*t}
}

func midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
