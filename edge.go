package avoid

// blocker tags an invisibility edge with the shape that blocks it, or one
// of two sentinels.
type blockerTag int64

const (
	blockerNone  blockerTag = 0
	blockerCycle blockerTag = -1
)

// EdgeInf is an undirected edge between two vertices. An edge exists at
// most once between a given vertex pair, across both the visibility and
// invisibility lists combined (checked by Router.debugCheckNoDuplicateEdges
// in tests). Edges are owned jointly by their two endpoints: destroying
// either endpoint destroys the edge (see Router.deleteAllIncident).
type EdgeInf struct {
	V1, V2 *VertInf

	Visible    bool
	Distance   float64
	Orthogonal bool
	Blocker    blockerTag

	// subscribers are invalidation targets: bool pointers (here, flag
	// closures) that the engine "alerts" (sets to true) when this edge's
	// Visible/Blocker state changes. Modelled as an explicit subscription
	// set rather than raw bool*, so a destroyed connector's flag cannot be
	// dangled into (see the Subscriber type below).
	subscribers []Subscriber

	kind     edgeKind // which list(s) this edge is active in
	active   bool

	// Cached positions for O(1) removal from each incident slice and from
	// the owning EdgeList, analogous to the source's cached insertion
	// iterators.
	list        *EdgeList
	listIdx     int
	v1Idx, v2Idx int
}

type edgeKind int

const (
	edgeVisible edgeKind = iota
	edgeInvisible
	edgeOrthogonal
)

// Subscriber is notified when an edge it depends on changes visibility.
// Connector rerouting hooks into this via a closure over its own
// needsReroute flag (see ConnRef.subscribeEdge).
type Subscriber interface {
	Alert()
}

// SubscriberFunc adapts a plain function to Subscriber.
type SubscriberFunc func()

func (f SubscriberFunc) Alert() { f() }

// EdgeList is a set of all active edges of one kind (visible, invisible,
// or orthogonal), backed by a slice with O(1) removal via a cached index
// (swap-with-last), standing in for the source's doubly-linked list: Go's
// garbage collector removes the use-after-free hazard a hand-rolled
// intrusive list guards against in C++, so a slice with index caching gets
// the same O(1) bookkeeping more simply.
type EdgeList struct {
	edges []*EdgeInf
}

func (l *EdgeList) Len() int { return len(l.edges) }

func (l *EdgeList) insert(e *EdgeInf) {
	e.list = l
	e.listIdx = len(l.edges)
	l.edges = append(l.edges, e)
}

func (l *EdgeList) remove(e *EdgeInf) {
	if e.list != l {
		return
	}
	last := len(l.edges) - 1
	l.edges[e.listIdx] = l.edges[last]
	l.edges[e.listIdx].listIdx = e.listIdx
	l.edges = l.edges[:last]
	e.list = nil
	e.listIdx = -1
}

// All returns every edge currently active in the list. Callers must not
// mutate the list while iterating the returned slice (mirrors the
// source's "don't delete while iterating" rule); take a copy first if
// deletion-during-iteration is required.
func (l *EdgeList) All() []*EdgeInf { return l.edges }

// newEdge constructs an inactive edge between v1 and v2. Call makeActive
// to insert it into a list.
func newEdge(v1, v2 *VertInf) *EdgeInf {
	return &EdgeInf{V1: v1, V2: v2, v1Idx: -1, v2Idx: -1, listIdx: -1}
}

func incidentSlice(v *VertInf, kind edgeKind) *[]*EdgeInf {
	switch kind {
	case edgeVisible:
		return &v.Vis
	case edgeInvisible:
		return &v.Invis
	default:
		return &v.OrthogVis
	}
}

// makeActive inserts e into list and into each endpoint's incident list
// for kind, caching indices for O(1) later removal. If e is already active
// in a different list, it is first removed from that list.
func (e *EdgeInf) makeActive(list *EdgeList, kind edgeKind) {
	if e.active {
		e.makeInactive()
	}
	e.active = true
	e.kind = kind
	list.insert(e)

	s1 := incidentSlice(e.V1, kind)
	e.v1Idx = len(*s1)
	*s1 = append(*s1, e)

	s2 := incidentSlice(e.V2, kind)
	e.v2Idx = len(*s2)
	*s2 = append(*s2, e)
}

// makeInactive reverses makeActive: removes e from its list and both
// endpoints' incident lists, and clears its subscriber set (matching the
// source, which empties "alert connections" on deactivation).
func (e *EdgeInf) makeInactive() {
	if !e.active {
		return
	}
	if e.list != nil {
		e.list.remove(e)
	}
	removeFromIncident(incidentSlice(e.V1, e.kind), e, &e.v1Idx)
	removeFromIncident(incidentSlice(e.V2, e.kind), e, &e.v2Idx)
	e.subscribers = nil
	e.active = false
}

func removeFromIncident(s *[]*EdgeInf, e *EdgeInf, idx *int) {
	if *idx < 0 || *idx >= len(*s) {
		return
	}
	last := len(*s) - 1
	(*s)[*idx] = (*s)[last]
	updateIdxOf((*s)[*idx], e.V1, e.V2, *idx)
	*s = (*s)[:last]
	*idx = -1
}

// updateIdxOf fixes up the moved edge's cached index after a swap-remove;
// it must update whichever of v1Idx/v2Idx corresponds to the vertex this
// incident slice belongs to.
func updateIdxOf(moved *EdgeInf, v1, v2 *VertInf, newIdx int) {
	if moved.V1 == v1 || moved.V1 == v2 {
		if moved.v1Idx >= 0 {
			moved.v1Idx = newIdx
		}
	}
	if moved.V2 == v1 || moved.V2 == v2 {
		if moved.v2Idx >= 0 {
			moved.v2Idx = newIdx
		}
	}
}

// SetDistance records a real visibility distance. If the edge was
// inactive or sitting in the invisibility list, it is deactivated from
// wherever it was and reactivated as a visible edge; its blocker tag is
// cleared.
func (e *EdgeInf) SetDistance(d float64, vis *EdgeList) {
	if !e.active || e.kind != edgeVisible {
		e.makeInactive()
		e.makeActive(vis, edgeVisible)
	}
	e.Distance = d
	e.Visible = true
	e.Blocker = blockerNone
	e.alertSubscribers()
}

// AddBlocker marks e invisible with zero distance and the given blocker
// tag, only meaningful when the invisibility graph is being kept. The
// cycle-blocker sentinel cannot be passed as a shapeID; MarkCycleBlocker
// sets it.
func (e *EdgeInf) AddBlocker(shapeID uint64, invis *EdgeList) {
	if !e.active || e.kind != edgeInvisible {
		e.makeInactive()
		e.makeActive(invis, edgeInvisible)
	}
	e.Distance = 0
	e.Visible = false
	e.Blocker = blockerTag(shapeID)
	e.alertSubscribers()
}

// MarkCycleBlocker is AddBlocker with the -1 "cycle blocker" sentinel: a
// directly-connected endpoint pair that must stay invisible to prevent a
// degenerate zero-length path loop.
func (e *EdgeInf) MarkCycleBlocker(invis *EdgeList) {
	if !e.active || e.kind != edgeInvisible {
		e.makeInactive()
		e.makeActive(invis, edgeInvisible)
	}
	e.Distance = 0
	e.Visible = false
	e.Blocker = blockerCycle
	e.alertSubscribers()
}

func (e *EdgeInf) IsCycleBlocker() bool { return e.Blocker == blockerCycle }

// Subscribe registers s to be alerted whenever e's visibility/blocker
// state changes.
func (e *EdgeInf) Subscribe(s Subscriber) {
	e.subscribers = append(e.subscribers, s)
}

func (e *EdgeInf) alertSubscribers() {
	for _, s := range e.subscribers {
		s.Alert()
	}
}

// Other returns the endpoint of e that isn't v.
func (e *EdgeInf) Other(v *VertInf) *VertInf {
	if e.V1 == v {
		return e.V2
	}
	return e.V1
}

// findEdge does a linear scan of v's incident list of the given kind for
// an existing edge to other. Both endpoints' incident lists are kept in
// sync, so scanning either is equivalent; callers scan the shorter one
// where known.
func findEdge(v, other *VertInf, kind edgeKind) *EdgeInf {
	s := incidentSlice(v, kind)
	for _, e := range *s {
		if e.Other(v) == other {
			return e
		}
	}
	return nil
}
