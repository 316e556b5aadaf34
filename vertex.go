package avoid

// VertexID identifies a vertex across the lifetime of one Router. Ids are
// minted by Router.assignID and are never reused within a router instance.
type VertexID uint64

// direction mask bits for an endpoint's permitted orthogonal-visibility
// directions, used when the endpoint sits inside a shape (spec §3).
type DirFlag uint8

const (
	DirUp DirFlag = 1 << iota
	DirDown
	DirLeft
	DirRight

	DirNone DirFlag = 0
	DirAll          = DirUp | DirDown | DirLeft | DirRight
)

// VertInf is one routable point in the plane: a shape corner, a connector
// endpoint, or (orthogonal routing only) a dummy vertex created at a
// T-junction or axis-aligned crossing during the orthogonal sweep.
//
// The three incident-edge lists (Vis, OrthogVis, Invis) are owned
// exclusively by this vertex; removing the vertex from the graph (see
// Router.DestroyConnector) must first empty all three via
// Router.deleteAllIncident, since an edge's lifetime is jointly owned by
// its two endpoints.
type VertInf struct {
	ID             VertexID
	IsShapeCorner  bool
	VertexNum      int // 1=source, 2=target for endpoints; corner index for shape corners
	Pos            Point

	Vis       []*EdgeInf // visibility-graph incident edges
	OrthogVis []*EdgeInf // orthogonal-visibility-graph incident edges
	Invis     []*EdgeInf // invisibility-graph incident edges (blocker bookkeeping)

	// Shape boundary linkage (nil for non-corner vertices).
	ShPrev, ShNext *VertInf
	ShapeID        uint64 // owning shape, 0 if not a corner

	// Orthogonal direction mask: which visibility directions are permitted
	// when this vertex (an endpoint) lies inside a shape.
	Dirs DirFlag

	// Path-search scratch fields. pathVisited distinguishes "never visited"
	// from a real (possibly negative-looking after floating point) best
	// distance, since spec's "+inf encoded as large negative sentinel
	// flipped on first visit" trick is easier to get wrong than a bool.
	pathNext    *VertInf
	pathDist    float64
	pathVisited bool

	// vertex-sequence intrusive links (see VertexList).
	seqPrev, seqNext *VertInf
}

// degree returns the number of visibility-graph neighbours.
func (v *VertInf) degree() int { return len(v.Vis) }

// VertexList is a single doubly-linked list partitioned into two
// contiguous runs: connector-endpoint vertices first, then shape-corner
// vertices. It supports O(1) append to the front of each partition and
// O(1) removal with a stable "successor" return value so a caller
// destructively iterating can step forward after removing the current
// vertex.
type VertexList struct {
	firstConn, lastConn   *VertInf
	firstShape, lastShape *VertInf
	connCount, shapeCount int
}

// ConnectionsBegin returns the first connector-partition vertex, or (if
// there are none) the first shape-partition vertex — i.e. the logical
// start of the whole sequence.
func (l *VertexList) ConnectionsBegin() *VertInf {
	if l.firstConn != nil {
		return l.firstConn
	}
	return l.firstShape
}

// ShapesBegin returns the first shape-partition vertex.
func (l *VertexList) ShapesBegin() *VertInf { return l.firstShape }

// End is the null sentinel: iteration stops when Next() or ShNext
// reaches nil.
func (l *VertexList) End() *VertInf { return nil }

// Next advances v within the full sequence, crossing from the connector
// partition into the shape partition transparently.
func (l *VertexList) Next(v *VertInf) *VertInf {
	if v.seqNext != nil {
		return v.seqNext
	}
	if v == l.lastConn {
		return l.firstShape
	}
	return nil
}

// AddVertex places v at the front of its partition (is_shape_corner
// decides which).
func (l *VertexList) AddVertex(v *VertInf) {
	if v.IsShapeCorner {
		v.seqNext = l.firstShape
		v.seqPrev = l.lastConn
		if l.lastConn != nil {
			l.lastConn.seqNext = v
		}
		if l.firstShape != nil {
			l.firstShape.seqPrev = v
		} else {
			l.lastShape = v
		}
		l.firstShape = v
		l.shapeCount++
		return
	}

	v.seqPrev = nil
	if l.firstConn == nil {
		v.seqNext = l.firstShape
		l.firstConn = v
		l.lastConn = v
		if l.firstShape != nil {
			l.firstShape.seqPrev = v
		}
	} else {
		v.seqNext = l.firstConn
		l.firstConn.seqPrev = v
		l.firstConn = v
	}
	l.connCount++
}

// RemoveVertex unlinks v from the sequence and returns the vertex that was
// its successor (nil if v was the last vertex overall), so destructive
// iteration can continue cleanly.
func (l *VertexList) RemoveVertex(v *VertInf) *VertInf {
	next := l.Next(v)
	prev := v.seqPrev

	if v.IsShapeCorner {
		wasFirst := v == l.firstShape
		if prev != nil {
			prev.seqNext = v.seqNext
		}
		if wasFirst {
			l.firstShape = v.seqNext
		}
		if v.seqNext != nil {
			v.seqNext.seqPrev = prev
		} else if wasFirst {
			l.lastShape = nil
		} else {
			l.lastShape = prev
		}
		l.shapeCount--
	} else {
		if prev != nil {
			prev.seqNext = v.seqNext
		} else {
			l.firstConn = v.seqNext
		}
		if v.seqNext != nil {
			v.seqNext.seqPrev = prev
		}
		if v == l.lastConn {
			l.lastConn = prev
			if l.lastConn == nil {
				l.firstConn = nil
			}
		}
		l.connCount--
	}

	v.seqPrev, v.seqNext = nil, nil
	return next
}

// checkInvariants validates the partition's well-formedness with five
// checks: no predecessor before the first connector vertex, no successor
// after the last shape vertex, the last connector vertex linking to the
// first shape vertex, and each partition holding only its own kind. It is called from debug-mode tests, not from production
// code paths (mirrors the source's debug-build-only assertions).
func (l *VertexList) checkInvariants() error {
	if l.firstConn != nil && l.firstConn.seqPrev != nil {
		return errf("first connector vertex has a predecessor")
	}
	if l.lastShape != nil && l.lastShape.seqNext != nil {
		return errf("last shape vertex has a successor")
	}
	if l.lastConn != nil && l.lastConn.seqNext != l.firstShape {
		return errf("last connector vertex's successor is not first shape vertex")
	}
	for v := l.firstShape; v != nil; v = v.seqNext {
		if !v.IsShapeCorner {
			return errf("shape partition contains non-corner vertex %d", v.ID)
		}
	}
	for v := l.firstConn; v != nil && v != l.firstShape; v = v.seqNext {
		if v.IsShapeCorner {
			return errf("connector partition contains corner vertex %d", v.ID)
		}
	}
	return nil
}
