package avoid

import "testing"

func TestShapeRefCornersBoundaryOrder(t *testing.T) {
	r := NewRouter(PolyLineRouting)
	poly := NewPolygon(NewPoint(0, 0), NewPoint(10, 0), NewPoint(10, 10), NewPoint(0, 10))
	s := newShapeRef(r, 1, poly)

	corners := s.corners()
	if len(corners) != 4 {
		t.Fatalf("corners() returned %d points, want 4", len(corners))
	}
	for i, c := range corners {
		if !PointsEqual(c.Pos, poly.Points[i]) {
			t.Errorf("corner[%d] = %v, want %v", i, c.Pos, poly.Points[i])
		}
		if c.ShNext.ShPrev != c {
			t.Errorf("corner[%d] ShNext/ShPrev not mutually linked", i)
		}
	}
	if corners[3].ShNext != corners[0] {
		t.Error("boundary linkage does not wrap around")
	}
}

func TestShapeRefMakeActiveInactive(t *testing.T) {
	r := NewRouter(PolyLineRouting)
	poly := NewPolygon(NewPoint(0, 0), NewPoint(10, 0), NewPoint(10, 10))
	s := newShapeRef(r, 1, poly)

	s.MakeActive(r)
	if !s.Active {
		t.Fatal("MakeActive did not set Active")
	}
	if r.shapesByID[1] != s {
		t.Error("shape not registered in shapesByID")
	}
	if r.vertices.ConnectionsBegin() == nil {
		t.Error("corner vertices not added to the vertex sequence")
	}

	s.MakeInactive(r)
	if s.Active {
		t.Error("MakeInactive did not clear Active")
	}
	if _, ok := r.shapesByID[1]; ok {
		t.Error("shape still registered after MakeInactive")
	}
}

func TestShapeRefSetNewPolygonPreservesIdentity(t *testing.T) {
	r := NewRouter(PolyLineRouting)
	poly := NewPolygon(NewPoint(0, 0), NewPoint(10, 0), NewPoint(10, 10))
	s := newShapeRef(r, 1, poly)
	before := s.corners()
	ids := make([]VertexID, len(before))
	for i, c := range before {
		ids[i] = c.ID
	}

	moved := NewPolygon(NewPoint(5, 5), NewPoint(15, 5), NewPoint(15, 15))
	s.SetNewPolygon(moved)

	after := s.corners()
	for i, c := range after {
		if c.ID != ids[i] {
			t.Errorf("corner %d identity changed after SetNewPolygon: was %d, now %d", i, ids[i], c.ID)
		}
		if !PointsEqual(c.Pos, moved.Points[i]) {
			t.Errorf("corner %d position = %v, want %v", i, c.Pos, moved.Points[i])
		}
	}
}

func TestClusterRefContains(t *testing.T) {
	cl := newClusterRef(1, "group", NewPolygon(NewPoint(0, 0), NewPoint(10, 0), NewPoint(10, 10), NewPoint(0, 10)))
	if !cl.Contains(NewPoint(5, 5)) {
		t.Error("cluster should contain its interior point")
	}
	if cl.Contains(NewPoint(50, 50)) {
		t.Error("cluster should not contain a far-away point")
	}
}
