package avoid

import "testing"

func TestDirFlagBitsDisjoint(t *testing.T) {
	bits := []DirFlag{DirUp, DirDown, DirLeft, DirRight}
	seen := DirFlag(0)
	for _, b := range bits {
		if seen&b != 0 {
			t.Errorf("direction bit %v overlaps previously seen bits %v", b, seen)
		}
		seen |= b
	}
	if seen != DirAll {
		t.Errorf("DirUp|DirDown|DirLeft|DirRight = %v, want DirAll = %v", seen, DirAll)
	}
	if DirNone != 0 {
		t.Errorf("DirNone = %v, want 0", DirNone)
	}
}

func TestVertexListPartitionOrdering(t *testing.T) {
	l := &VertexList{}
	c1 := &VertInf{ID: 1, IsShapeCorner: false}
	c2 := &VertInf{ID: 2, IsShapeCorner: false}
	s1 := &VertInf{ID: 3, IsShapeCorner: true}
	s2 := &VertInf{ID: 4, IsShapeCorner: true}

	l.AddVertex(s1)
	l.AddVertex(c1)
	l.AddVertex(s2)
	l.AddVertex(c2)

	var order []VertexID
	for v := l.ConnectionsBegin(); v != l.End(); v = l.Next(v) {
		order = append(order, v.ID)
	}
	// Connector partition (most-recently-added-first: c2, c1) must come
	// entirely before the shape partition (s2, s1).
	want := []VertexID{2, 1, 4, 3}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %d, want %d (full: %v)", i, order[i], want[i], order)
		}
	}

	if err := l.checkInvariants(); err != nil {
		t.Errorf("checkInvariants() = %v", err)
	}
}

func TestVertexListRemoveVertexReturnsSuccessor(t *testing.T) {
	l := &VertexList{}
	c1 := &VertInf{ID: 1}
	c2 := &VertInf{ID: 2}
	l.AddVertex(c2)
	l.AddVertex(c1)

	next := l.RemoveVertex(c1)
	if next != c2 {
		t.Errorf("RemoveVertex successor = %v, want c2", next)
	}
	if err := l.checkInvariants(); err != nil {
		t.Errorf("checkInvariants() after removal = %v", err)
	}
}

func TestVertexListRemoveLastVertexReturnsNil(t *testing.T) {
	l := &VertexList{}
	v := &VertInf{ID: 1}
	l.AddVertex(v)
	if next := l.RemoveVertex(v); next != nil {
		t.Errorf("RemoveVertex of the only vertex returned %v, want nil", next)
	}
	if l.ConnectionsBegin() != nil {
		t.Errorf("list should be empty after removing its only vertex")
	}
}

func TestVertexListRemoveLastConnFixesUpShapePartition(t *testing.T) {
	l := &VertexList{}
	shapeCorner := &VertInf{ID: 1, IsShapeCorner: true}
	l.AddVertex(shapeCorner)
	conn := &VertInf{ID: 2}
	l.AddVertex(conn)

	// conn is both firstConn and lastConn here, and its seqNext is
	// shapeCorner (firstShape) rather than nil.
	if l.lastConn != conn || conn.seqNext != shapeCorner {
		t.Fatalf("setup invariant broken: lastConn=%v conn.seqNext=%v", l.lastConn, conn.seqNext)
	}

	l.RemoveVertex(conn)
	if err := l.checkInvariants(); err != nil {
		t.Fatalf("checkInvariants() after removing lastConn = %v", err)
	}
	if shapeCorner.seqPrev != nil {
		t.Errorf("shapeCorner.seqPrev = %v, want nil (dangling predecessor left over from removed connector)", shapeCorner.seqPrev)
	}
	if l.firstConn != nil || l.lastConn != nil {
		t.Errorf("firstConn/lastConn = %v/%v, want nil/nil after removing the only connector", l.firstConn, l.lastConn)
	}

	next := l.RemoveVertex(shapeCorner)
	if next != nil {
		t.Errorf("RemoveVertex(shapeCorner) successor = %v, want nil", next)
	}
	if l.firstShape != nil || l.lastShape != nil {
		t.Errorf("firstShape/lastShape = %v/%v, want nil/nil after removing the only shape vertex", l.firstShape, l.lastShape)
	}
}

func TestVertexListDestructiveIteration(t *testing.T) {
	l := &VertexList{}
	for i := VertexID(1); i <= 3; i++ {
		l.AddVertex(&VertInf{ID: i})
	}
	var removed []VertexID
	for v := l.ConnectionsBegin(); v != l.End(); {
		removed = append(removed, v.ID)
		v = l.RemoveVertex(v)
	}
	if len(removed) != 3 {
		t.Fatalf("destructive iteration visited %d vertices, want 3: %v", len(removed), removed)
	}
	if l.ConnectionsBegin() != nil {
		t.Errorf("list not empty after removing all vertices")
	}
}
