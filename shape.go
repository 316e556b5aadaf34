package avoid

// ShapeRef wraps a polygon with an identity, lifecycle flag, and the
// corner vertices it contributes to the graph. The router exclusively
// owns every ShapeRef; each ShapeRef owns its corner vertices.
type ShapeRef struct {
	ID      uint64
	Polygon Polygon
	Active  bool

	firstCorner, lastCorner *VertInf
	router                  *Router
}

// newShapeRef builds corner vertices for poly (one per polygon point),
// wires sh_prev/sh_next around the boundary, but does not yet attach them
// to the router's vertex sequence or graphs — call MakeActive for that.
func newShapeRef(r *Router, id uint64, poly Polygon) *ShapeRef {
	s := &ShapeRef{ID: id, Polygon: poly, router: r}
	n := len(poly.Points)
	if n == 0 {
		return s
	}
	corners := make([]*VertInf, n)
	for i, p := range poly.Points {
		corners[i] = &VertInf{
			ID:            VertexID(r.assignID(0)),
			IsShapeCorner: true,
			VertexNum:     i,
			Pos:           p,
			ShapeID:       id,
		}
	}
	for i := 0; i < n; i++ {
		corners[i].ShPrev = corners[(i-1+n)%n]
		corners[i].ShNext = corners[(i+1)%n]
	}
	s.firstCorner = corners[0]
	s.lastCorner = corners[n-1]
	return s
}

// corners returns every corner vertex of s in boundary order.
func (s *ShapeRef) corners() []*VertInf {
	if s.firstCorner == nil {
		return nil
	}
	out := []*VertInf{s.firstCorner}
	for v := s.firstCorner.ShNext; v != s.firstCorner; v = v.ShNext {
		out = append(out, v)
	}
	return out
}

// MakeActive registers the shape's corner vertices into the router's
// vertex sequence and the shape into the router's live shape list.
func (s *ShapeRef) MakeActive(r *Router) {
	if s.Active {
		return
	}
	for _, c := range s.corners() {
		r.vertices.AddVertex(c)
		r.containShapes[c.ID] = nil // lazily populated by containment recompute
	}
	r.shapesByID[s.ID] = s
	s.Active = true
}

// MakeInactive removes the shape's corner vertices from the router's
// vertex sequence (but does not destroy them — SetNewPolygon and a
// subsequent MakeActive may still reference them) and deregisters the
// shape from the router's live list.
func (s *ShapeRef) MakeInactive(r *Router) {
	if !s.Active {
		return
	}
	for _, c := range s.corners() {
		r.vertices.RemoveVertex(c)
	}
	delete(r.shapesByID, s.ID)
	s.Active = false
}

// RemoveFromGraph destroys every incident visibility, orthogonal-
// visibility, and invisibility edge at each of the shape's corners,
// alerting subscribers on visibility edges so their owning connectors are
// marked for reroute.
func (s *ShapeRef) RemoveFromGraph(r *Router) {
	for _, c := range s.corners() {
		r.deleteAllIncident(c)
	}
}

// SetNewPolygon requires newPoly to have the same vertex count as the
// shape's current polygon; it resets each corner vertex's position in
// place, preserving vertex identity so bookkeeping in connectors and
// containment maps remains valid. Callers must remove incident edges
// (RemoveFromGraph) before calling and recompute visibility afterward —
// SetNewPolygon itself is pure repositioning, matching the source's split
// between "reposition" and "reconnect" phases (see Router.reattachPhase).
func (s *ShapeRef) SetNewPolygon(newPoly Polygon) {
	corners := s.corners()
	assertf(len(corners) == len(newPoly.Points),
		"SetNewPolygon: vertex count mismatch (have %d, want %d)", len(corners), len(newPoly.Points))
	for i, c := range corners {
		c.Pos = newPoly.Points[i]
	}
	s.Polygon = newPoly
}

// ClusterRef is a named polygon used only as a containment region: it
// contributes no vertices or edges to the graph, but participates in
// crossing-penalty accounting and enclosing-cluster membership tests.
type ClusterRef struct {
	ID      uint64
	Name    string
	Polygon Polygon
}

func newClusterRef(id uint64, name string, poly Polygon) *ClusterRef {
	return &ClusterRef{ID: id, Name: name, Polygon: poly}
}

// Contains reports whether p lies inside the cluster's region.
func (c *ClusterRef) Contains(p Point) bool {
	return inPolyGeneral(c.Polygon, p)
}
