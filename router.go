package avoid

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"oss.avoidgo.dev/avoid/avoidlog"
)

// RoutingMode is a bitmask of the routing strategies a Router supports. At
// least one bit must be set.
type RoutingMode uint8

const (
	PolyLineRouting RoutingMode = 1 << iota
	OrthogonalRouting
)

// Config holds the router's behavioural flags (spec §6's "recognised
// configuration fields" table), mirroring the teacher's plain
// exported-struct-plus-DefaultOpts convention.
type Config struct {
	Mode RoutingMode

	IgnoreRegions     bool
	UseLeesAlgorithm  bool
	InvisibilityGraph bool
	SelectiveReroute  bool
	PartialFeedback   bool
	PartialTime       bool
	RubberBandRouting bool
	SimpleRouting     bool
	ClusteredRouting  bool
	UseAStar          bool

	CurveAmount             float64
	OrthogonalNudgeDistance float64
}

// DefaultConfig returns sane defaults for mode: sweep visibility, A* search,
// and a 4.0 orthogonal nudge distance per spec §6.
func DefaultConfig(mode RoutingMode) Config {
	return Config{
		Mode:                    mode,
		UseLeesAlgorithm:        true,
		UseAStar:                true,
		OrthogonalNudgeDistance: 4.0,
	}
}

// PenaltySet is the five named path-search penalties (spec §4.9, §6).
// Defaults mirror the original implementation: every penalty starts at
// zero except ClusterCrossing.
type PenaltySet struct {
	Segment         float64
	Angle           float64
	Crossing        float64
	ClusterCrossing float64
	FixedSharedPath float64
}

var DefaultPenalties = PenaltySet{ClusterCrossing: 4000}

type actionKind int

const (
	actionShapeAdd actionKind = iota
	actionShapeMove
	actionShapeRemove
	actionConnChange
)

type pendingAction struct {
	kind actionKind

	shape     *ShapeRef
	newPoly   Polygon
	firstMove bool

	conn       *ConnRef
	endUpdates []endEndUpdate
}

type actionKey struct {
	kind actionKind
	id   uint64
}

// Router is the transaction engine (C11): it owns every shape, connector,
// and cluster ref, the vertex sequence, and the three edge lists, and
// sequences every mutation through the fixed Detach → Blocked-edges →
// Reattach → Endpoints → Reroute phase order.
type Router struct {
	config    Config
	penalties PenaltySet

	vertices       VertexList
	visGraph       EdgeList
	invisGraph     EdgeList
	visOrthogGraph EdgeList
	dummyVerts     []*VertInf

	shapesByID   map[uint64]*ShapeRef
	clustersByID map[uint64]*ClusterRef
	connsByID    map[uint64]*ConnRef

	containShapes   map[VertexID]map[uint64]bool
	containClusters map[VertexID]map[uint64]bool

	idCounter uint64

	batched      bool
	actionQueue  []*pendingAction
	actionByKey  map[actionKey]*pendingAction
	pendingMoveTentative map[uint64]bool

	currentRoutingConn       *ConnRef
	inCrossingReroutingStage bool
	staticOrthogInvalidated  bool
}

// NewRouter constructs a Router in the given routing mode(s). At least one
// of PolyLineRouting/OrthogonalRouting must be set — a programmer error
// otherwise (spec §7).
func NewRouter(mode RoutingMode) *Router {
	assertf(mode&(PolyLineRouting|OrthogonalRouting) != 0,
		"NewRouter: at least one of PolyLineRouting/OrthogonalRouting is required")
	return &Router{
		config:               DefaultConfig(mode),
		batched:              true,
		penalties:            DefaultPenalties,
		shapesByID:           map[uint64]*ShapeRef{},
		clustersByID:         map[uint64]*ClusterRef{},
		connsByID:            map[uint64]*ConnRef{},
		containShapes:        map[VertexID]map[uint64]bool{},
		containClusters:      map[VertexID]map[uint64]bool{},
		actionByKey:          map[actionKey]*pendingAction{},
		pendingMoveTentative: map[uint64]bool{},
	}
}

// SetConfig replaces the router's configuration wholesale.
func (r *Router) SetConfig(c Config) {
	assertf(c.Mode&(PolyLineRouting|OrthogonalRouting) != 0,
		"SetConfig: at least one routing mode is required")
	r.config = c
}

// SetPenalty sets a named penalty (spec §6); a negative value resets it to
// DefaultPenalties' value for that name. Unknown names panic.
func (r *Router) SetPenalty(name string, value float64) {
	target := &r.penalties
	switch name {
	case "segment":
		target.Segment = orDefault(value, DefaultPenalties.Segment)
	case "angle":
		target.Angle = orDefault(value, DefaultPenalties.Angle)
	case "crossing":
		target.Crossing = orDefault(value, DefaultPenalties.Crossing)
	case "cluster_crossing":
		target.ClusterCrossing = orDefault(value, DefaultPenalties.ClusterCrossing)
	case "fixed_shared_path":
		target.FixedSharedPath = orDefault(value, DefaultPenalties.FixedSharedPath)
	default:
		assertf(false, "SetPenalty: unknown penalty name %q", name)
	}
}

func orDefault(value, def float64) float64 {
	if value < 0 {
		return def
	}
	return value
}

// SetOrthogonalNudgeDistance stores the non-negative nudge distance in the
// router's Config. No routing step reads it: improveOrthogonalRoute does
// not centre or nudge routes.
func (r *Router) SetOrthogonalNudgeDistance(d float64) {
	assertf(d >= 0, "SetOrthogonalNudgeDistance: must be non-negative, got %v", d)
	r.config.OrthogonalNudgeDistance = d
}

// SetTransactionMode toggles batched (deferred) vs immediate processing.
func (r *Router) SetTransactionMode(batched bool) { r.batched = batched }

// assignID returns suggested if non-zero (callers are trusted not to
// collide ids across shapes/connectors/clusters — spec §4.11), else mints
// a fresh id from the monotonic counter: one above the largest id assigned
// or suggested so far. assignID never calls NewExternalID.
func (r *Router) assignID(suggested uint64) uint64 {
	if suggested != 0 {
		if suggested > r.idCounter {
			r.idCounter = suggested
		}
		return suggested
	}
	r.idCounter++
	return r.idCounter
}

// NewExternalID mints an opaque UUIDv4-derived id for callers that want a
// stable id safe to persist or share across router instances; such an id
// can be passed to assignID as a suggested id. The router itself never
// calls NewExternalID. The low 64 bits of the UUID are folded with the
// high 64 via XOR to produce a single uint64 identifier.
func NewExternalID() uint64 {
	u := uuid.New()
	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(u[i])
	}
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(u[i])
	}
	return hi ^ lo
}

func (r *Router) enqueueAction(a *pendingAction, key actionKey) {
	if existing, ok := r.actionByKey[key]; ok {
		mergeAction(existing, a)
	} else {
		r.actionQueue = append(r.actionQueue, a)
		r.actionByKey[key] = a
	}
	if !r.batched {
		r.ProcessTransaction(context.Background())
	}
}

// mergeAction folds a newly enqueued action into an already-queued one for
// the same (kind, object): a move-then-move keeps the earliest firstMove
// flag and the latest polygon; a connector's endpoint updates accumulate.
func mergeAction(existing, incoming *pendingAction) {
	switch existing.kind {
	case actionShapeMove:
		existing.newPoly = incoming.newPoly
	case actionConnChange:
		existing.endUpdates = append(existing.endUpdates, incoming.endUpdates...)
	}
}

func (r *Router) enqueueConnChange(c *ConnRef, updates []endEndUpdate) {
	r.enqueueAction(&pendingAction{kind: actionConnChange, conn: c, endUpdates: updates},
		actionKey{actionConnChange, c.ID})
}

// AddShape constructs a shape from poly and enqueues its ShapeAdd action.
func (r *Router) AddShape(poly Polygon) *ShapeRef {
	id := r.assignID(0)
	s := newShapeRef(r, id, poly)
	r.enqueueAction(&pendingAction{kind: actionShapeAdd, shape: s}, actionKey{actionShapeAdd, id})
	return s
}

// MoveShape enqueues a ShapeMove action, applied in full on the next
// ProcessTransaction.
func (r *Router) MoveShape(s *ShapeRef, newPoly Polygon) {
	r.enqueueAction(&pendingAction{kind: actionShapeMove, shape: s, newPoly: newPoly, firstMove: true},
		actionKey{actionShapeMove, s.ID})
}

// MoveShapeTentative enqueues an intermediate drag position: the reattach
// phase will reposition the shape but skip the newBlockingShape scan for
// it until MoveShapeCommit (or a transaction with no pending tentative
// move), matching the original's PartialFeedback/PartialTime semantics
// (see SPEC_FULL.md).
func (r *Router) MoveShapeTentative(s *ShapeRef, newPoly Polygon) {
	r.pendingMoveTentative[s.ID] = true
	r.enqueueAction(&pendingAction{kind: actionShapeMove, shape: s, newPoly: newPoly, firstMove: false},
		actionKey{actionShapeMove, s.ID})
}

// MoveShapeCommit clears the tentative flag for s's most recent move so
// the next ProcessTransaction runs the full newBlockingShape scan.
func (r *Router) MoveShapeCommit(s *ShapeRef) {
	delete(r.pendingMoveTentative, s.ID)
	if !r.batched {
		r.ProcessTransaction(context.Background())
	}
}

// RemoveShape enqueues a ShapeRemove action.
func (r *Router) RemoveShape(s *ShapeRef) {
	r.enqueueAction(&pendingAction{kind: actionShapeRemove, shape: s}, actionKey{actionShapeRemove, s.ID})
}

// AddCluster registers a containment-only region immediately: clusters
// contribute no vertices or edges, so there is nothing for the action
// queue to defer.
func (r *Router) AddCluster(name string, poly Polygon) *ClusterRef {
	id := r.assignID(0)
	cl := newClusterRef(id, name, poly)
	r.clustersByID[id] = cl
	return cl
}

func (r *Router) RemoveCluster(cl *ClusterRef) {
	delete(r.clustersByID, cl.ID)
}

// CreateConnector allocates a connector and enqueues its initial endpoint
// placement.
func (r *Router) CreateConnector(t ConnType, src, dst ConnEnd) *ConnRef {
	id := r.assignID(0)
	c := newConnRef(r, id)
	c.Type = t
	c.srcEnd, c.dstEnd = src, dst
	r.connsByID[id] = c
	r.enqueueConnChange(c, []endEndUpdate{{end: endSrc, val: src}, {end: endDst, val: dst}})
	return c
}

// DestroyConnector deactivates c and removes its endpoint vertices (and
// their incident edges) from the graph.
func (r *Router) DestroyConnector(c *ConnRef) {
	c.Active = false
	if c.srcVert != nil {
		r.deleteAllIncident(c.srcVert)
		r.vertices.RemoveVertex(c.srcVert)
	}
	if c.dstVert != nil {
		r.deleteAllIncident(c.dstVert)
		r.vertices.RemoveVertex(c.dstVert)
	}
	delete(r.connsByID, c.ID)
}

// deleteAllIncident empties every edge incident at v across all three
// lists (visibility, invisibility, orthogonal-visibility), alerting
// subscribers of visibility edges before tearing them down so owning
// connectors reroute (spec §4.5's RemoveFromGraph / §4.11's Detach phase).
func (r *Router) deleteAllIncident(v *VertInf) {
	for _, e := range append([]*EdgeInf(nil), v.Vis...) {
		e.alertSubscribers()
		e.makeInactive()
	}
	for _, e := range append([]*EdgeInf(nil), v.OrthogVis...) {
		e.alertSubscribers()
		e.makeInactive()
	}
	for _, e := range append([]*EdgeInf(nil), v.Invis...) {
		e.makeInactive()
	}
}

// activeConnsSorted returns every active connector, ordered by id, giving
// crossing analysis and callback dispatch a deterministic order.
func (r *Router) activeConnsSorted() []*ConnRef {
	out := make([]*ConnRef, 0, len(r.connsByID))
	for _, c := range r.connsByID {
		if c.Active {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ProcessTransaction runs the fixed Detach → Blocked-edges → Reattach →
// Endpoints → Reroute phase order over every action enqueued since the
// last call (spec §4.11). With nothing queued and nothing already marked
// for reroute, no phase runs and no callback fires; only each connector's
// NeedsRepaint is cleared, since no route changed in this call
// (the idempotence invariant of spec §8).
func (r *Router) ProcessTransaction(ctx context.Context) {
	orthogPending := r.staticOrthogInvalidated && r.config.Mode&OrthogonalRouting != 0
	if len(r.actionQueue) == 0 && !orthogPending && !r.anyConnNeedsReroute() {
		for _, c := range r.connsByID {
			c.needsRepaint = false
		}
		return
	}

	actions := r.actionQueue
	r.actionQueue = nil
	r.actionByKey = map[actionKey]*pendingAction{}
	sort.SliceStable(actions, func(i, j int) bool { return actionOrder(actions[i]) < actionOrder(actions[j]) })

	avoidlog.Debug(ctx, "process_transaction: starting", "actions", len(actions))

	routeBefore := map[*ConnRef]Polygon{}
	for _, c := range r.connsByID {
		routeBefore[c] = c.RouteRaw
	}

	touchedShapes := r.detachPhase(ctx, actions)
	r.blockedEdgePhase(ctx, touchedShapes)
	r.reattachPhase(ctx, actions)
	r.endpointPhase(ctx, actions)
	r.reroutePhase(ctx, routeBefore)
}

func (r *Router) anyConnNeedsReroute() bool {
	for _, c := range r.connsByID {
		if c.Active && c.NeedsReroute {
			return true
		}
	}
	return false
}

func actionOrder(a *pendingAction) int {
	switch a.kind {
	case actionShapeAdd:
		return 0
	case actionShapeMove:
		return 1
	case actionShapeRemove:
		return 2
	default:
		return 3
	}
}

// detachPhase removes incident edges for every moved/removed shape,
// marks selectively-rerouted connectors, and deactivates the shape.
// Returns the set of shape ids touched this transaction (consulted by the
// blocked-edge phase).
func (r *Router) detachPhase(ctx context.Context, actions []*pendingAction) map[uint64]bool {
	touched := map[uint64]bool{}
	for _, a := range actions {
		if a.kind != actionShapeMove && a.kind != actionShapeRemove {
			continue
		}
		s := a.shape
		touched[s.ID] = true
		if !s.Active {
			continue
		}
		if r.config.SelectiveReroute && a.kind == actionShapeMove {
			r.markSelectivelyImproved(s)
		}
		s.RemoveFromGraph(r)
		if a.kind == actionShapeRemove {
			r.removeContainment(s)
		}
		s.MakeInactive(r)
		r.staticOrthogInvalidated = true
	}
	avoidlog.Debug(ctx, "process_transaction: detach phase complete", "touched_shapes", len(touched))
	return touched
}

// blockedEdgePhase re-checks visibility of every invisibility edge blocked
// by one of this transaction's touched shapes (spec §4.11 phase 2), only
// meaningful when PolyLineRouting is enabled and the invisibility graph is
// being kept — without it there is nothing cheap to re-check locally, and
// the reattach phase's full corner recompute (plus each endpoint's own
// recompute in the endpoint phase) already restores correctness.
func (r *Router) blockedEdgePhase(ctx context.Context, touchedShapes map[uint64]bool) {
	if len(touchedShapes) == 0 || r.config.Mode&PolyLineRouting == 0 {
		return
	}
	if !r.config.InvisibilityGraph {
		return
	}
	rechecked := 0
	for _, e := range append([]*EdgeInf(nil), r.invisGraph.All()...) {
		if !touchedShapes[uint64(e.Blocker)] {
			continue
		}
		r.checkEdgeVisibility(e.V1, e.V2)
		rechecked++
	}
	avoidlog.Debug(ctx, "process_transaction: blocked-edge phase complete", "rechecked", rechecked)
}

// reattachPhase reactivates added/moved shapes, repositions moved ones,
// invalidates any existing visibility edge the shape's new boundary now
// crosses (newBlockingShape), and recomputes visibility of the shape's own
// corners.
func (r *Router) reattachPhase(ctx context.Context, actions []*pendingAction) {
	for _, a := range actions {
		if a.kind != actionShapeAdd && a.kind != actionShapeMove {
			continue
		}
		s := a.shape
		if a.kind == actionShapeMove {
			s.SetNewPolygon(a.newPoly)
		}
		s.MakeActive(r)
		r.addContainment(s)
		r.staticOrthogInvalidated = true

		skipBlockingScan := r.config.PartialFeedback && r.pendingMoveTentative[s.ID]
		if !skipBlockingScan {
			r.newBlockingShape(s)
		}

		if r.config.Mode&PolyLineRouting != 0 {
			for _, c := range s.corners() {
				r.computeVertexVisibility(c, false)
			}
		}
	}
	avoidlog.Debug(ctx, "process_transaction: reattach phase complete")
}

// newBlockingShape scans every active visibility edge and invalidates any
// that the newly (re)activated shape s now crosses, per spec §4.11.
func (r *Router) newBlockingShape(s *ShapeRef) {
	corners := s.corners()
	for _, e := range append([]*EdgeInf(nil), r.visGraph.All()...) {
		if e.V1.ShapeID == s.ID || e.V2.ShapeID == s.ID {
			continue
		}
		for _, k := range corners {
			if segmentShapeIntersect(e.V1.Pos, e.V2.Pos, k.Pos, k.ShNext.Pos) {
				e.alertSubscribers()
				if r.config.InvisibilityGraph {
					e.AddBlocker(s.ID, &r.invisGraph)
				} else {
					e.makeInactive()
				}
				break
			}
		}
	}
}

// endpointPhase applies every queued ConnChange: reposition (or, on first
// use, create) each updated endpoint vertex and recompute its visibility.
func (r *Router) endpointPhase(ctx context.Context, actions []*pendingAction) {
	applied := 0
	for _, a := range actions {
		if a.kind != actionConnChange {
			continue
		}
		c := a.conn
		for _, u := range a.endUpdates {
			isSrc := u.end == endSrc
			if isSrc {
				c.srcEnd = u.val
			} else {
				c.dstEnd = u.val
			}
			v := c.ensureEndpointVertex(r, isSrc, u.val)
			r.updateVertexContainment(v)
			r.computeVertexVisibility(v, c.Type == Orthogonal)
			applied++
		}
	}
	avoidlog.Debug(ctx, "process_transaction: endpoint phase complete", "updates_applied", applied)
}

// reroutePhase regenerates every active connector's path, runs the
// crossing-improvement pass, rebuilds the orthogonal graph if needed, and
// fires callbacks (spec §4.11 phase 5).
func (r *Router) reroutePhase(ctx context.Context, routeBefore map[*ConnRef]Polygon) {
	if r.config.Mode&OrthogonalRouting != 0 {
		r.regenerateStaticBuiltGraph(ctx)
	}

	conns := r.activeConnsSorted()
	for _, c := range conns {
		c.needsRepaint = false
		c.NeedsReroute = false
		r.currentRoutingConn = c
		r.generatePath(c)
	}
	r.currentRoutingConn = nil

	r.improveCrossings()

	for _, c := range conns {
		before, seen := routeBefore[c]
		if !seen || !polygonsEqual(before, c.RouteRaw) {
			c.needsRepaint = true
		}
	}

	for _, c := range conns {
		if c.callback != nil {
			c.callback(c)
		}
	}
	avoidlog.Debug(ctx, "process_transaction: reroute phase complete", "connectors", len(conns))
}

func polygonsEqual(a, b Polygon) bool {
	if len(a.Points) != len(b.Points) {
		return false
	}
	for i := range a.Points {
		if !PointsEqual(a.Points[i], b.Points[i]) {
			return false
		}
	}
	return true
}

// markSelectivelyImproved implements spec §4.11's selective-reroute
// heuristic: for each active connector whose route is non-empty and not
// already marked, take the point on each boundary edge of the moved shape
// s closest to the route's source and mark the connector for reroute if
// the bent path source → that point → target is shorter than the current
// route.
func (r *Router) markSelectivelyImproved(s *ShapeRef) {
	for _, c := range r.connsByID {
		if !c.Active || c.NeedsReroute || len(c.RouteRaw.Points) < 2 {
			continue
		}
		src := c.RouteRaw.Points[0]
		dst := c.RouteRaw.Points[len(c.RouteRaw.Points)-1]
		current := c.routeLength
		for _, k := range s.corners() {
			proj := projectOntoSegment(src, k.Pos, k.ShNext.Pos)
			bent := src.Dist(proj) + proj.Dist(dst)
			if bent < current {
				c.NeedsReroute = true
				break
			}
		}
	}
}

// projectOntoSegment returns the closest point to p on segment a-b.
func projectOntoSegment(p, a, b Point) Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return Point{X: a.X + t*dx, Y: a.Y + t*dy}
}

// addContainment recomputes, for every connector endpoint vertex, whether
// it now lies inside s, updating the vertex→shape containment map in both
// directions: a shape move that pulls s away from a previously-contained
// endpoint must clear that entry, not just add newly-true ones (spec §8.1
// invariant 5 is an "iff", not an "implies").
func (r *Router) addContainment(s *ShapeRef) {
	for v := r.vertices.ConnectionsBegin(); v != nil && !v.IsShapeCorner; v = r.vertices.Next(v) {
		r.setContainment(v.ID, s.ID, r.pointInShape(v.Pos, s))
	}
}

// updateVertexContainment recomputes v's containment entries against every
// active shape, needed for connector endpoints: addContainment only walks
// existing endpoints when a shape is added or moved, so a newly created or
// repositioned endpoint needs its own containment check against every shape
// already on the board (spec §8.1 invariant 5), clearing stale entries for
// shapes it has moved out of just as it sets entries for shapes it has
// moved into.
func (r *Router) updateVertexContainment(v *VertInf) {
	for id, s := range r.shapesByID {
		if s.Active {
			r.setContainment(v.ID, id, r.pointInShape(v.Pos, s))
		}
	}
}

// removeContainment drops every containment-map entry referencing s.
func (r *Router) removeContainment(s *ShapeRef) {
	for _, set := range r.containShapes {
		delete(set, s.ID)
	}
}

// setContainment records or clears whether v lies inside shapeID, keeping
// containShapes an accurate "iff" rather than a monotonic write-once set.
func (r *Router) setContainment(v VertexID, shapeID uint64, contained bool) {
	if !contained {
		if set, ok := r.containShapes[v]; ok {
			delete(set, shapeID)
		}
		return
	}
	set, ok := r.containShapes[v]
	if !ok || set == nil {
		set = map[uint64]bool{}
		r.containShapes[v] = set
	}
	set[shapeID] = true
}

// debugCheckNoDuplicateEdges validates that no vertex pair has more than
// one active edge across the visibility and invisibility lists combined —
// an invariant tests assert after graph mutations (see edge.go).
func (r *Router) debugCheckNoDuplicateEdges() error {
	seen := map[[2]VertexID]bool{}
	check := func(list *EdgeList) error {
		for _, e := range list.All() {
			a, b := e.V1.ID, e.V2.ID
			if a > b {
				a, b = b, a
			}
			key := [2]VertexID{a, b}
			if seen[key] {
				return errf("duplicate edge between vertices %d and %d", a, b)
			}
			seen[key] = true
		}
		return nil
	}
	if err := check(&r.visGraph); err != nil {
		return err
	}
	return check(&r.invisGraph)
}
