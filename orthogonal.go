package avoid

import (
	"context"
	"math"
	"sort"

	"oss.avoidgo.dev/avoid/avoidlog"
)

// orthoEpsilon is the coordinate tolerance used throughout the orthogonal
// sweep for "is this candidate line free of this shape" and "does this
// breakpoint already have a vertex" comparisons.
const orthoEpsilon = 0.5

// rect is an axis-aligned bounding box, used by the orthogonal sweep as
// the blocking shape for each ShapeRef. Orthogonal edges only ever run
// parallel to the axes, so a segment can only be blocked by a shape's
// coordinate extent — reducing the general polygon to its bounding box is
// exact for the axis-aligned rectangular obstacles this routing mode
// targets, and mirrors the teacher's own orthogonal pipeline, which
// likewise reasons about node shapes in terms of box extents rather than
// raw polygon edges. See DESIGN.md.
type rect struct{ minX, minY, maxX, maxY float64 }

func rectOf(poly Polygon) rect {
	minX, minY, maxX, maxY := poly.BoundingRect()
	return rect{minX, minY, maxX, maxY}
}

func (b rect) containsOpen(p Point) bool {
	return p.X > b.minX+orthoEpsilon && p.X < b.maxX-orthoEpsilon &&
		p.Y > b.minY+orthoEpsilon && p.Y < b.maxY-orthoEpsilon
}

// hSeg/vSeg are candidate orthogonal segments produced by the two sweeps,
// before breakpoints have been resolved into edges.
type hSeg struct {
	y      float64
	x0, x1 float64
}

type vSeg struct {
	x      float64
	y0, y1 float64
}

// regenerateStaticBuiltGraph rebuilds the orthogonal visibility graph from
// scratch (spec §4.8); only called when shapes have moved since the last
// routing pass (Router.staticOrthogInvalidated).
func (r *Router) regenerateStaticBuiltGraph(ctx context.Context) {
	if !r.staticOrthogInvalidated {
		return
	}
	avoidlog.Debug(ctx, "orthogonal: rebuilding static graph")

	r.clearOrthogonalGraph()

	boxes := make(map[uint64]rect)
	for id, s := range r.shapesByID {
		if s.Active {
			boxes[id] = rectOf(s.Polygon)
		}
	}

	var endpoints []*VertInf
	for _, c := range r.connsByID {
		if !c.Active {
			continue
		}
		if c.srcVert != nil {
			endpoints = append(endpoints, c.srcVert)
		}
		if c.dstVert != nil {
			endpoints = append(endpoints, c.dstVert)
		}
	}

	bound := r.sceneBounds(boxes, endpoints)

	hSegs := r.verticalSweep(boxes, endpoints, bound)
	vSegs := r.horizontalSweep(boxes, endpoints, bound)

	r.buildOrthogonalEdges(hSegs, vSegs)

	r.staticOrthogInvalidated = false
}

// clearOrthogonalGraph deactivates every orthogonal edge and removes every
// dummy vertex the previous build created, so regeneration starts clean.
func (r *Router) clearOrthogonalGraph() {
	for _, e := range append([]*EdgeInf(nil), r.visOrthogGraph.All()...) {
		e.makeInactive()
	}
	for _, v := range r.dummyVerts {
		r.vertices.RemoveVertex(v)
	}
	r.dummyVerts = nil
}

func (r *Router) sceneBounds(boxes map[uint64]rect, endpoints []*VertInf) rect {
	const margin = 40.0
	first := true
	var b rect
	grow := func(x0, y0, x1, y1 float64) {
		if first {
			b = rect{x0, y0, x1, y1}
			first = false
			return
		}
		b.minX = math.Min(b.minX, x0)
		b.minY = math.Min(b.minY, y0)
		b.maxX = math.Max(b.maxX, x1)
		b.maxY = math.Max(b.maxY, y1)
	}
	for _, box := range boxes {
		grow(box.minX, box.minY, box.maxX, box.maxY)
	}
	for _, e := range endpoints {
		grow(e.Pos.X, e.Pos.Y, e.Pos.X, e.Pos.Y)
	}
	if first {
		return rect{}
	}
	return rect{b.minX - margin, b.minY - margin, b.maxX + margin, b.maxY + margin}
}

// verticalSweep produces horizontal candidate segments: one pair (top,
// bottom) per shape, clipped against every other shape's vertical extent,
// plus left/right candidates from each connector endpoint's y position,
// gated by its direction mask.
func (r *Router) verticalSweep(boxes map[uint64]rect, endpoints []*VertInf, bound rect) []hSeg {
	var out []hSeg

	for id, box := range boxes {
		for _, y := range []float64{box.minY, box.maxY} {
			left, right := clipHorizontalLine(y, bound.minX, bound.maxX, boxes, id)
			if right > left {
				out = append(out, hSeg{y: y, x0: left, x1: right})
			}
		}
	}

	for _, ep := range endpoints {
		y := ep.Pos.Y
		inside := shapeContaining(boxes, ep.Pos)
		if inside != 0 {
			// Endpoint is inside a shape: only emit the segment toward a
			// permitted direction, reaching exactly to that shape's side.
			box := boxes[inside]
			if ep.Dirs&DirLeft != 0 {
				out = append(out, hSeg{y: y, x0: box.minX, x1: ep.Pos.X})
			}
			if ep.Dirs&DirRight != 0 {
				out = append(out, hSeg{y: y, x0: ep.Pos.X, x1: box.maxX})
			}
			continue
		}
		left, right := clipHorizontalLine(y, bound.minX, bound.maxX, boxes, 0)
		if ep.Dirs == DirNone || ep.Dirs&DirLeft != 0 {
			out = append(out, hSeg{y: y, x0: left, x1: ep.Pos.X})
		}
		if ep.Dirs == DirNone || ep.Dirs&DirRight != 0 {
			out = append(out, hSeg{y: y, x0: ep.Pos.X, x1: right})
		}
	}

	return out
}

// horizontalSweep is verticalSweep's transpose, producing vertical
// candidate segments.
func (r *Router) horizontalSweep(boxes map[uint64]rect, endpoints []*VertInf, bound rect) []vSeg {
	var out []vSeg

	for id, box := range boxes {
		for _, x := range []float64{box.minX, box.maxX} {
			top, bottom := clipVerticalLine(x, bound.minY, bound.maxY, boxes, id)
			if bottom > top {
				out = append(out, vSeg{x: x, y0: top, y1: bottom})
			}
		}
	}

	for _, ep := range endpoints {
		x := ep.Pos.X
		inside := shapeContaining(boxes, ep.Pos)
		if inside != 0 {
			box := boxes[inside]
			if ep.Dirs&DirUp != 0 {
				out = append(out, vSeg{x: x, y0: box.minY, y1: ep.Pos.Y})
			}
			if ep.Dirs&DirDown != 0 {
				out = append(out, vSeg{x: x, y0: ep.Pos.Y, y1: box.maxY})
			}
			continue
		}
		top, bottom := clipVerticalLine(x, bound.minY, bound.maxY, boxes, 0)
		if ep.Dirs == DirNone || ep.Dirs&DirUp != 0 {
			out = append(out, vSeg{x: x, y0: top, y1: ep.Pos.Y})
		}
		if ep.Dirs == DirNone || ep.Dirs&DirDown != 0 {
			out = append(out, vSeg{x: x, y0: ep.Pos.Y, y1: bottom})
		}
	}

	return out
}

func shapeContaining(boxes map[uint64]rect, p Point) uint64 {
	for id, b := range boxes {
		if b.containsOpen(p) {
			return id
		}
	}
	return 0
}

// clipHorizontalLine finds how far the horizontal line at y extends
// between x0 and x1 before another shape (excluding ownerID) blocks it —
// the candidate-segment analogue of spec §4.8's blocking-limit scan.
// Multiple blockers are resolved by iterating to a fixed point.
func clipHorizontalLine(y, x0, x1 float64, boxes map[uint64]rect, ownerID uint64) (left, right float64) {
	left, right = x0, x1
	for pass := 0; pass < len(boxes)+1; pass++ {
		changed := false
		for id, b := range boxes {
			if id == ownerID {
				continue
			}
			if y <= b.minY+orthoEpsilon || y >= b.maxY-orthoEpsilon {
				continue // line doesn't pass through this shape's vertical extent
			}
			if b.minX >= left && b.minX < right {
				right = b.minX
				changed = true
			}
			if b.maxX <= right && b.maxX > left {
				left = b.maxX
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return left, right
}

func clipVerticalLine(x, y0, y1 float64, boxes map[uint64]rect, ownerID uint64) (top, bottom float64) {
	top, bottom = y0, y1
	for pass := 0; pass < len(boxes)+1; pass++ {
		changed := false
		for id, b := range boxes {
			if id == ownerID {
				continue
			}
			if x <= b.minX+orthoEpsilon || x >= b.maxX-orthoEpsilon {
				continue
			}
			if b.minY >= top && b.minY < bottom {
				bottom = b.minY
				changed = true
			}
			if b.maxY <= bottom && b.maxY > top {
				top = b.maxY
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return top, bottom
}

// breakSeg is one candidate segment (horizontal or vertical) together with
// the set of breakpoints discovered along it, keyed by the coordinate that
// varies along the segment.
type breakSeg struct {
	verts map[float64]*VertInf
}

// buildOrthogonalEdges intersects the horizontal and vertical candidate
// segments, creating a dummy vertex at every crossing (or reusing an
// existing corner/endpoint vertex already at that position), and emits
// edges between consecutive breakpoints along each candidate segment
// (spec §4.8's "breakpoints are converted to edges").
func (r *Router) buildOrthogonalEdges(hSegs []hSeg, vSegs []vSeg) {
	posIndex := map[[2]float64]*VertInf{}
	key := func(p Point) [2]float64 { return [2]float64{round3(p.X), round3(p.Y)} }

	for _, s := range r.shapesByID {
		if !s.Active {
			continue
		}
		for _, c := range s.corners() {
			posIndex[key(c.Pos)] = c
		}
	}
	for _, c := range r.connsByID {
		if !c.Active {
			continue
		}
		if c.srcVert != nil {
			posIndex[key(c.srcVert.Pos)] = c.srcVert
		}
		if c.dstVert != nil {
			posIndex[key(c.dstVert.Pos)] = c.dstVert
		}
	}

	getOrMakeVertex := func(p Point) *VertInf {
		k := key(p)
		if v, ok := posIndex[k]; ok {
			return v
		}
		v := &VertInf{ID: VertexID(r.assignID(0)), Pos: p}
		posIndex[k] = v
		r.vertices.AddVertex(v)
		r.dummyVerts = append(r.dummyVerts, v)
		return v
	}

	hBreaks := make([]*breakSeg, len(hSegs))
	for i := range hSegs {
		hBreaks[i] = &breakSeg{verts: map[float64]*VertInf{}}
	}
	vBreaks := make([]*breakSeg, len(vSegs))
	for i := range vSegs {
		vBreaks[i] = &breakSeg{verts: map[float64]*VertInf{}}
	}

	for hi, h := range hSegs {
		for vi, v := range vSegs {
			if v.x < h.x0-orthoEpsilon || v.x > h.x1+orthoEpsilon {
				continue
			}
			if h.y < v.y0-orthoEpsilon || h.y > v.y1+orthoEpsilon {
				continue
			}
			vert := getOrMakeVertex(NewPoint(v.x, h.y))
			hBreaks[hi].verts[round3(v.x)] = vert
			vBreaks[vi].verts[round3(h.y)] = vert
		}
	}

	for i, s := range hSegs {
		hBreaks[i].verts[round3(s.x0)] = getOrMakeVertex(NewPoint(s.x0, s.y))
		hBreaks[i].verts[round3(s.x1)] = getOrMakeVertex(NewPoint(s.x1, s.y))
		r.emitBreakpointEdges(hBreaks[i])
	}
	for i, s := range vSegs {
		vBreaks[i].verts[round3(s.y0)] = getOrMakeVertex(NewPoint(s.x, s.y0))
		vBreaks[i].verts[round3(s.y1)] = getOrMakeVertex(NewPoint(s.x, s.y1))
		r.emitBreakpointEdges(vBreaks[i])
	}
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// emitBreakpointEdges walks a segment's sorted, deduplicated breakpoints
// and creates one orthogonal edge between each consecutive pair (spec
// §4.8): shape-corner/endpoint vertices discovered along the same
// candidate line are always mutually visible, since the candidate line
// itself was already clipped to stop at the first blocking shape.
func (r *Router) emitBreakpointEdges(s *breakSeg) {
	var coords []float64
	for c := range s.verts {
		coords = append(coords, c)
	}
	sort.Float64s(coords)
	for i := 1; i < len(coords); i++ {
		a := s.verts[coords[i-1]]
		b := s.verts[coords[i]]
		if a == b {
			continue
		}
		e := findEdge(a, b, edgeOrthogonal)
		if e == nil {
			e = newEdge(a, b)
			e.makeActive(&r.visOrthogGraph, edgeOrthogonal)
		}
		e.Orthogonal = true
		e.Distance = a.Pos.Dist(b.Pos)
		e.Visible = true
	}
}

// improveOrthogonalRoute is the display-route post-pass for orthogonal
// connectors: it drops interior points that repeat the previous kept point
// (zero-length jogs left over from simplification). It does not centre the
// route within its free channel, does not nudge parallel routes apart, and
// does not read Config.OrthogonalNudgeDistance.
func (r *Router) improveOrthogonalRoute(c *ConnRef, route Polygon) Polygon {
	pts := append([]Point(nil), route.Points...)
	if len(pts) < 3 {
		return NewPolygon(pts...)
	}
	out := []Point{pts[0]}
	for i := 1; i < len(pts)-1; i++ {
		if PointsEqual(pts[i], out[len(out)-1]) {
			continue
		}
		out = append(out, pts[i])
	}
	out = append(out, pts[len(pts)-1])
	return NewPolygon(out...)
}
