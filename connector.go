package avoid

// ConnType selects how a connector's route is searched and displayed.
type ConnType int

const (
	PolyLine ConnType = iota
	Orthogonal
)

// ConnEnd describes one endpoint of a connector: a position plus a
// visibility-direction mask used when the endpoint lies inside a shape
// (only consulted by orthogonal routing).
type ConnEnd struct {
	Point Point
	Dirs  DirFlag
}

// ConnDirNone is the zero mask: no permitted directions, meaning a target
// enclosed by a shape with this mask cannot be escaped orthogonally (used
// by scenario S5).
const ConnDirNone DirFlag = DirNone

// RerouteCallback is invoked synchronously, at the end of every reroute
// phase of ProcessTransaction, for each active connector that has one,
// whether or not its route changed (NeedsRepaint tells which). It must not
// reenter the Router.
type RerouteCallback func(c *ConnRef)

// ConnRef is a connector: an ordered pair of endpoints routed through the
// shared visibility graph. The router exclusively owns every ConnRef;
// each ConnRef owns its two endpoint vertices.
type ConnRef struct {
	ID   uint64
	Type ConnType

	srcEnd, dstEnd ConnEnd
	srcVert, dstVert *VertInf

	RouteRaw     Polygon
	routeLength  float64
	NeedsReroute bool
	needsRepaint bool
	FalsePath    bool // true once the route has degraded to a direct [src,tar] fallback
	Active       bool
	HateCrossings bool

	callback RerouteCallback
	router   *Router

	initialised bool
}

func newConnRef(r *Router, id uint64) *ConnRef {
	return &ConnRef{ID: id, router: r, Active: true}
}

// reroutingSubscriber adapts a ConnRef's NeedsReroute flag to Subscriber
// so edges it traversed can alert it without holding a raw pointer into
// arbitrary router state.
type reroutingSubscriber struct{ c *ConnRef }

func (s reroutingSubscriber) Alert() { s.c.NeedsReroute = true }

func (c *ConnRef) subscribeEdge(e *EdgeInf) {
	e.Subscribe(reroutingSubscriber{c})
}

// SetEndpoints stages new source/target endpoints. Per spec §4.6, updates
// are not applied immediately: they are deferred into the transaction
// queue as a ConnChange action and take effect during the next
// ProcessTransaction's endpoint phase.
func (c *ConnRef) SetEndpoints(src, dst ConnEnd) {
	c.router.enqueueConnChange(c, []endEndUpdate{{end: endSrc, val: src}, {end: endDst, val: dst}})
}

func (c *ConnRef) SetSourceEndpoint(src ConnEnd) {
	c.router.enqueueConnChange(c, []endEndUpdate{{end: endSrc, val: src}})
}

func (c *ConnRef) SetDestEndpoint(dst ConnEnd) {
	c.router.enqueueConnChange(c, []endEndUpdate{{end: endDst, val: dst}})
}

func (c *ConnRef) SetRoutingType(t ConnType) {
	if c.Type == t {
		return
	}
	c.Type = t
	c.MakePathInvalid()
}

func (c *ConnRef) SetCallback(fn RerouteCallback) { c.callback = fn }

func (c *ConnRef) SetHateCrossings(b bool) { c.HateCrossings = b }

// MakePathInvalid forces the connector to be rerouted on the next
// ProcessTransaction, even if nothing in the graph actually changed.
func (c *ConnRef) MakePathInvalid() { c.NeedsReroute = true }

// NeedsRepaint reports whether this connector's route changed during the
// most recent ProcessTransaction.
func (c *ConnRef) NeedsRepaint() bool { return c.needsRepaint }

// Route returns the raw (unsimplified) route: the list of graph vertices
// visited by path search.
func (c *ConnRef) Route() Polygon { return c.RouteRaw }

// DisplayRoute derives the connector's display route from its raw route:
// simplification, optional curved-corner expansion for polyline
// connectors, and improveOrthogonalRoute's removal of repeated points for
// orthogonal connectors. Orthogonal routes are not centred or nudged.
func (c *ConnRef) DisplayRoute() Polygon {
	simplified := c.RouteRaw.Simplify()
	if c.Type == PolyLine {
		if c.router.config.CurveAmount > 0 {
			return CurvedPolyline(simplified, c.router.config.CurveAmount, false)
		}
		return simplified
	}
	return c.router.improveOrthogonalRoute(c, simplified)
}

func (c *ConnRef) isInitialised() bool { return c.initialised }

// ensureEndpointVertex lazily creates the vertex for this connector's
// source or target the first time it is needed, idempotently: calling it
// twice in a row for the same end is a no-op rather than creating a
// duplicate vertex, closing the "endpoint added twice" hazard noted in
// spec §9 Open Questions.
func (c *ConnRef) ensureEndpointVertex(r *Router, isSrc bool, end ConnEnd) *VertInf {
	var existing **VertInf
	var num int
	if isSrc {
		existing = &c.srcVert
		num = 1
	} else {
		existing = &c.dstVert
		num = 2
	}
	if *existing != nil {
		(*existing).Pos = end.Point
		(*existing).Dirs = end.Dirs
		return *existing
	}
	v := &VertInf{
		ID:        VertexID(r.assignID(0)),
		VertexNum: num,
		Pos:       end.Point,
		Dirs:      end.Dirs,
	}
	r.vertices.AddVertex(v)
	*existing = v
	c.initialised = true
	return v
}

// generatePath is the internal entry point run when the router commits
// routing for c (spec §4.6):
//
//  1. If source and target are directly visible and endpoints are not
//     being kept in the persistent graph, emit a straight two-point route
//     and subscribe to a synthetic direct edge so later shape motion can
//     invalidate it.
//  2. Otherwise insert both endpoints into the graph, compute their
//     visibility, and run the configured path search. Every edge
//     consumed by the returned path subscribes this connector's
//     NeedsReroute flag. If no path is found, fall back to the direct
//     [src,tar] route and mark the direct edge a cycle blocker. Nothing
//     consults that mark, so the search runs again whenever the
//     connector is next rerouted.
func (r *Router) generatePath(c *ConnRef) {
	c.FalsePath = false
	src := c.ensureEndpointVertex(r, true, c.srcEnd)
	dst := c.ensureEndpointVertex(r, false, c.dstEnd)

	if PointsEqual(src.Pos, dst.Pos) {
		c.RouteRaw = NewPolygon(src.Pos, dst.Pos)
		c.routeLength = 0
		return
	}

	direct := r.directVisible(src, dst)
	if direct && !r.config.InvisibilityGraph {
		e := r.getOrCreateEdge(src, dst, edgeVisible)
		e.SetDistance(src.Pos.Dist(dst.Pos), &r.visGraph)
		c.subscribeEdge(e)
		c.RouteRaw = NewPolygon(src.Pos, dst.Pos)
		c.routeLength = e.Distance
		return
	}

	r.computeVertexVisibility(src, c.Type == Orthogonal)
	r.computeVertexVisibility(dst, c.Type == Orthogonal)

	path, length, ok := r.makePath(c)
	if !ok {
		e := r.getOrCreateEdge(src, dst, edgeInvisible)
		e.MarkCycleBlocker(&r.invisGraph)
		dst.pathNext = src
		c.RouteRaw = NewPolygon(src.Pos, dst.Pos)
		c.routeLength = src.Pos.Dist(dst.Pos)
		c.FalsePath = true
		return
	}

	pts := make([]Point, len(path))
	for i, v := range path {
		pts[i] = v.Pos
	}
	c.RouteRaw = NewPolygon(pts...)
	c.routeLength = length
}

// directVisible walks the shape-corner edges excluding shapes containing
// either endpoint, mirroring check_visibility's shape-skip fast-forward,
// to decide whether src and dst see each other with no intervening
// graph vertex at all.
func (r *Router) directVisible(src, dst *VertInf) bool {
	return r.segmentUnobstructed(src.Pos, dst.Pos, src, dst)
}

type endEnd int

const (
	endSrc endEnd = iota
	endDst
)

type endEndUpdate struct {
	end endEnd
	val ConnEnd
}
