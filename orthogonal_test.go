package avoid

import "testing"

func TestRectOfMatchesBoundingRect(t *testing.T) {
	poly := NewPolygon(NewPoint(1, 2), NewPoint(9, 2), NewPoint(9, 8), NewPoint(1, 8))
	b := rectOf(poly)
	if b.minX != 1 || b.minY != 2 || b.maxX != 9 || b.maxY != 8 {
		t.Errorf("rectOf = %+v, want {1,2,9,8}", b)
	}
}

func TestRectContainsOpenExcludesBoundary(t *testing.T) {
	b := rect{minX: 0, minY: 0, maxX: 10, maxY: 10}
	if b.containsOpen(NewPoint(0, 5)) {
		t.Error("point exactly on the boundary should not be contained (open)")
	}
	if !b.containsOpen(NewPoint(5, 5)) {
		t.Error("interior point should be contained")
	}
}

func TestClipHorizontalLineStopsAtBlocker(t *testing.T) {
	boxes := map[uint64]rect{
		1: {minX: 40, minY: -20, maxX: 60, maxY: 20},
	}
	left, right := clipHorizontalLine(0, -100, 100, boxes, 0)
	if left != -100 || right != 40 {
		t.Errorf("clipHorizontalLine = (%v,%v), want (-100,40)", left, right)
	}
}

func TestClipHorizontalLineIgnoresOwner(t *testing.T) {
	boxes := map[uint64]rect{
		1: {minX: 40, minY: -20, maxX: 60, maxY: 20},
	}
	left, right := clipHorizontalLine(0, -100, 100, boxes, 1)
	if left != -100 || right != 100 {
		t.Errorf("clipHorizontalLine with ownerID excluded = (%v,%v), want (-100,100)", left, right)
	}
}

func TestOrthogonalEdgesAreAxisAligned(t *testing.T) {
	r := NewRouter(OrthogonalRouting)
	r.AddShape(NewPolygon(NewPoint(40, -20), NewPoint(60, -20), NewPoint(60, 20), NewPoint(40, 20)))
	r.CreateConnector(Orthogonal, ConnEnd{Point: NewPoint(0, 0)}, ConnEnd{Point: NewPoint(100, 0)})
	r.ProcessTransaction(testCtx())

	for _, e := range r.visOrthogGraph.All() {
		if e.V1.Pos.X != e.V2.Pos.X && e.V1.Pos.Y != e.V2.Pos.Y {
			t.Errorf("orthogonal edge %v-%v is not axis-aligned", e.V1.Pos, e.V2.Pos)
		}
	}
}

func TestOrthogonalRouteAllRightAngleTurns(t *testing.T) {
	r := NewRouter(OrthogonalRouting)
	r.AddShape(NewPolygon(NewPoint(40, -20), NewPoint(60, -20), NewPoint(60, 20), NewPoint(40, 20)))
	c := r.CreateConnector(Orthogonal, ConnEnd{Point: NewPoint(0, 0)}, ConnEnd{Point: NewPoint(100, 0)})
	r.ProcessTransaction(testCtx())

	route := c.Route()
	if len(route.Points) < 2 {
		t.Fatalf("orthogonal route too short: %v", route.Points)
	}
	for i := 1; i < len(route.Points); i++ {
		a, b := route.Points[i-1], route.Points[i]
		if a.X != b.X && a.Y != b.Y {
			t.Errorf("segment %v-%v is not axis-aligned", a, b)
		}
	}
}

func TestImproveOrthogonalRouteDropsZeroLengthJogs(t *testing.T) {
	r := NewRouter(OrthogonalRouting)
	route := NewPolygon(NewPoint(0, 0), NewPoint(10, 0), NewPoint(10, 0), NewPoint(10, 10))
	out := r.improveOrthogonalRoute(nil, route)
	if len(out.Points) != 3 {
		t.Errorf("improveOrthogonalRoute kept a duplicate point: %v", out.Points)
	}
}
