package avoid

import "testing"

func TestSegmentUnobstructedDirect(t *testing.T) {
	r := NewRouter(PolyLineRouting)
	ok := r.segmentUnobstructed(NewPoint(0, 0), NewPoint(100, 0), nil, nil)
	if !ok {
		t.Error("empty scene: segment should be unobstructed")
	}
}

func TestSegmentUnobstructedBlockedByShape(t *testing.T) {
	r := NewRouter(PolyLineRouting)
	s := r.AddShape(NewPolygon(NewPoint(40, -20), NewPoint(60, -20), NewPoint(60, 20), NewPoint(40, 20)))
	r.ProcessTransaction(testCtx())
	_ = s

	if r.segmentUnobstructed(NewPoint(0, 0), NewPoint(100, 0), nil, nil) {
		t.Error("segment crossing the obstacle should be obstructed")
	}
}

func TestPointInShapeConvexAndConcave(t *testing.T) {
	r := NewRouter(PolyLineRouting)
	square := newShapeRef(r, 1, NewPolygon(NewPoint(0, 0), NewPoint(10, 0), NewPoint(10, 10), NewPoint(0, 10)))
	if !r.pointInShape(NewPoint(5, 5), square) {
		t.Error("centre of convex square should be contained")
	}

	l := newShapeRef(r, 2, NewPolygon(
		NewPoint(0, 0), NewPoint(10, 0), NewPoint(10, 5),
		NewPoint(5, 5), NewPoint(5, 10), NewPoint(0, 10),
	))
	if r.pointInShape(NewPoint(8, 8), l) {
		t.Error("point in the L-shape's notch should not be contained")
	}
	if !r.pointInShape(NewPoint(2, 2), l) {
		t.Error("point in the L-shape's solid region should be contained")
	}
}

func TestIsConvex(t *testing.T) {
	square := NewPolygon(NewPoint(0, 0), NewPoint(10, 0), NewPoint(10, 10), NewPoint(0, 10))
	if !isConvex(square) {
		t.Error("square should be convex")
	}
	l := NewPolygon(
		NewPoint(0, 0), NewPoint(10, 0), NewPoint(10, 5),
		NewPoint(5, 5), NewPoint(5, 10), NewPoint(0, 10),
	)
	if isConvex(l) {
		t.Error("L-shape should not be convex")
	}
}

func TestSweepVisibilityAgreesWithQuadratic(t *testing.T) {
	scenes := func() (*Router, *Router) {
		a := NewRouter(PolyLineRouting)
		a.config.UseLeesAlgorithm = false
		b := NewRouter(PolyLineRouting)
		b.config.UseLeesAlgorithm = true
		for _, r := range []*Router{a, b} {
			r.AddShape(NewPolygon(NewPoint(40, -20), NewPoint(60, -20), NewPoint(60, 20), NewPoint(40, 20)))
			r.CreateConnector(PolyLine, ConnEnd{Point: NewPoint(0, 0)}, ConnEnd{Point: NewPoint(100, 0)})
			r.ProcessTransaction(testCtx())
		}
		return a, b
	}

	quad, sweep := scenes()
	connQuad := quad.activeConnsSorted()[0]
	connSweep := sweep.activeConnsSorted()[0]

	if len(connQuad.Route().Points) != len(connSweep.Route().Points) {
		t.Fatalf("quadratic route has %d points, sweep route has %d",
			len(connQuad.Route().Points), len(connSweep.Route().Points))
	}
	for i := range connQuad.Route().Points {
		if !PointsEqual(connQuad.Route().Points[i], connSweep.Route().Points[i]) {
			t.Errorf("route point %d differs: quadratic=%v sweep=%v",
				i, connQuad.Route().Points[i], connSweep.Route().Points[i])
		}
	}
}
