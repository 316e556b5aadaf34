package avoid

import "math"

// CrossingFlags is a bitfield describing the relationship between two
// finished routes, returned alongside a real-crossing count by
// AnalyseCrossing.
type CrossingFlags uint8

const (
	// CrossTouches: the routes meet at an endpoint only.
	CrossTouches CrossingFlags = 1 << iota
	// CrossSharesPath: a common sub-segment exists between the routes.
	CrossSharesPath
	// CrossSharesPathAtEnd: the shared sub-segment touches one of the
	// routes' endpoints.
	CrossSharesPathAtEnd
	// CrossSharesFixedSegment: the shared sub-segment is a fixed
	// (already-orthogonal) segment that cannot be nudged apart.
	CrossSharesFixedSegment
)

// AnalyseCrossing counts real transversal crossings between two finished
// routes and reports their Touches/SharesPath relationship (spec §4.10).
func AnalyseCrossing(a, b Polygon, orthogonal bool) (int, CrossingFlags) {
	var flags CrossingFlags
	crossings := 0

	if routesTouchAtEndpoint(a, b) {
		flags |= CrossTouches
	}

	shared, atEnd := sharedSubsegment(a, b)
	if shared {
		flags |= CrossSharesPath
		if atEnd {
			flags |= CrossSharesPathAtEnd
		}
		if orthogonal {
			flags |= CrossSharesFixedSegment
		}
	}

	for i := 1; i < len(a.Points); i++ {
		for j := 1; j < len(b.Points); j++ {
			if segmentIntersect(a.Points[i-1], a.Points[i], b.Points[j-1], b.Points[j]) {
				crossings++
			}
		}
	}

	return crossings, flags
}

func routesTouchAtEndpoint(a, b Polygon) bool {
	if len(a.Points) == 0 || len(b.Points) == 0 {
		return false
	}
	ends := []Point{a.Points[0], a.Points[len(a.Points)-1]}
	others := []Point{b.Points[0], b.Points[len(b.Points)-1]}
	for _, e := range ends {
		for _, o := range others {
			if PointsEqual(e, o) {
				return true
			}
		}
	}
	return false
}

// sharedSubsegment looks for a maximal common run of collinear,
// coincident segment between a and b, reporting whether it touches either
// route's endpoint.
func sharedSubsegment(a, b Polygon) (shared bool, atEnd bool) {
	for i := 1; i < len(a.Points); i++ {
		a0, a1 := a.Points[i-1], a.Points[i]
		for j := 1; j < len(b.Points); j++ {
			b0, b1 := b.Points[j-1], b.Points[j]
			if segmentsCoincide(a0, a1, b0, b1) {
				shared = true
				if i == 1 || i == len(a.Points)-1 || j == 1 || j == len(b.Points)-1 {
					atEnd = true
				}
			}
		}
	}
	return
}

// segmentsCoincide reports whether two segments overlap collinearly (not
// just share a single endpoint).
func segmentsCoincide(a0, a1, b0, b1 Point) bool {
	if vecDir(a0, a1, b0) != dirNone || vecDir(a0, a1, b1) != dirNone {
		return false
	}
	// Collinear: check for genuine overlap, not just endpoint contact, by
	// intersecting the two ranges along the dominant axis.
	a0c, a1c, b0c, b1c := a0.X, a1.X, b0.X, b1.X
	if math.Abs(a1.X-a0.X) < math.Abs(a1.Y-a0.Y) {
		a0c, a1c, b0c, b1c = a0.Y, a1.Y, b0.Y, b1.Y
	}
	lo := math.Max(math.Min(a0c, a1c), math.Min(b0c, b1c))
	hi := math.Min(math.Max(a0c, a1c), math.Max(b0c, b1c))
	return hi-lo > coordTolerance
}

// countClusterCrossings counts how many active clusters' boundaries the
// segment a-b crosses, used by edgeCost's cluster-crossing penalty term.
func (r *Router) countClusterCrossings(a, b Point) int {
	count := 0
	for _, cl := range r.clustersByID {
		pts := cl.Polygon.Points
		for i := range pts {
			if segmentIntersect(a, b, pts[i], pts[(i+1)%len(pts)]) {
				count++
				break
			}
		}
	}
	return count
}

// countRouteCrossings counts, for candidate segment a-b, how many real
// crossings it would introduce against every other active connector's
// current raw route (excluding the connector currently being routed).
// Only consulted while r.inCrossingReroutingStage is true.
func (r *Router) countRouteCrossings(a, b Point, excluding *ConnRef) int {
	count := 0
	for _, c := range r.connsByID {
		if c == excluding || !c.Active || len(c.RouteRaw.Points) < 2 {
			continue
		}
		pts := c.RouteRaw.Points
		for i := 1; i < len(pts); i++ {
			if segmentIntersect(a, b, pts[i-1], pts[i]) {
				count++
			}
		}
	}
	return count
}

// segmentIsFixedShared reports whether a-b exactly coincides with a
// segment of another active orthogonal connector's current route, i.e.
// routing over it would create a SharesFixedSegment relationship.
func (r *Router) segmentIsFixedShared(a, b Point, excluding *ConnRef) bool {
	for _, c := range r.connsByID {
		if c == excluding || !c.Active || c.Type != Orthogonal || len(c.RouteRaw.Points) < 2 {
			continue
		}
		pts := c.RouteRaw.Points
		for i := 1; i < len(pts); i++ {
			if segmentsCoincide(a, b, pts[i-1], pts[i]) {
				return true
			}
		}
	}
	return false
}

// improveCrossings runs after the first routing pass (spec §4.10): if
// either the crossing or fixed-shared-path penalty is configured, every
// connector pair whose routes exhibit the relevant flags is collected,
// each such connector is marked invalid, and generatePath is re-run with
// inCrossingReroutingStage set so the cost function now penalises
// crossings. Returns the number of connectors rerouted by this pass.
func (r *Router) improveCrossings() int {
	if r.penalties.Crossing <= 0 && r.penalties.FixedSharedPath <= 0 {
		return 0
	}

	toReroute := map[*ConnRef]bool{}
	conns := r.activeConnsSorted()
	for i := 0; i < len(conns); i++ {
		for j := i + 1; j < len(conns); j++ {
			a, b := conns[i], conns[j]
			if len(a.RouteRaw.Points) < 2 || len(b.RouteRaw.Points) < 2 {
				continue
			}
			crossings, flags := AnalyseCrossing(a.RouteRaw, b.RouteRaw, a.Type == Orthogonal && b.Type == Orthogonal)
			if crossings > 0 && (a.HateCrossings || b.HateCrossings || r.penalties.Crossing > 0) {
				toReroute[a] = true
				toReroute[b] = true
			}
			if flags&CrossSharesFixedSegment != 0 && r.penalties.FixedSharedPath > 0 {
				toReroute[a] = true
				toReroute[b] = true
			}
		}
	}

	if len(toReroute) == 0 {
		return 0
	}

	r.inCrossingReroutingStage = true
	defer func() { r.inCrossingReroutingStage = false }()

	// conns is already sorted by id (activeConnsSorted); reroute in that
	// order rather than ranging over toReroute directly, since each
	// generatePath call consults other connectors' current RouteRaw and
	// map iteration order is randomized in Go.
	for _, c := range conns {
		if !toReroute[c] {
			continue
		}
		c.NeedsReroute = true
		r.currentRoutingConn = c
		r.generatePath(c)
	}
	r.currentRoutingConn = nil
	return len(toReroute)
}
