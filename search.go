package avoid

import (
	"container/heap"
	"math"
)

// makePath runs the configured path search (Dijkstra or A*, per
// Config.UseAStar) over the graph appropriate to c.Type: the poly-line
// visibility graph for PolyLine connectors, the orthogonal visibility
// graph for Orthogonal ones. It returns the vertex path from source to
// target inclusive, the path's length (the sum of its edges' distances,
// without penalties), and false if no path exists.
//
// Every edge consumed by the returned path subscribes c's NeedsReroute
// flag (spec §4.9's "after a path is found, each consumed edge records
// the connector's needs_reroute flag in its subscriber list").
func (r *Router) makePath(c *ConnRef) ([]*VertInf, float64, bool) {
	src, dst := c.srcVert, c.dstVert
	var path []*VertInf
	var ok bool
	if r.config.UseAStar {
		path, ok = r.searchAStar(src, dst, c)
	} else {
		path, ok = r.searchDijkstra(src, dst, c)
	}
	if !ok {
		return nil, 0, false
	}
	length := 0.0
	for i := 1; i < len(path); i++ {
		e := r.edgeBetween(path[i-1], path[i], c.Type == Orthogonal)
		if e != nil {
			c.subscribeEdge(e)
			length += e.Distance
		}
	}
	return path, length, true
}

func (r *Router) edgeBetween(a, b *VertInf, orthogonal bool) *EdgeInf {
	kind := edgeVisible
	if orthogonal {
		kind = edgeOrthogonal
	}
	if e := findEdge(a, b, kind); e != nil {
		return e
	}
	if r.config.InvisibilityGraph {
		return findEdge(a, b, edgeInvisible)
	}
	return nil
}

// neighbourEdges returns the edges search may relax from v: the
// visibility (or orthogonal-visibility) list, plus — if the invisibility
// graph is kept — the invisibility list too, since a zero-weight
// invisible "rubber band" edge can still be legitimately reused once its
// blocker is later removed (spec §4.9).
func (r *Router) neighbourEdges(v *VertInf, orthogonal bool) []*EdgeInf {
	if orthogonal {
		if r.config.InvisibilityGraph {
			return append(append([]*EdgeInf(nil), v.OrthogVis...), v.Invis...)
		}
		return v.OrthogVis
	}
	if r.config.InvisibilityGraph {
		return append(append([]*EdgeInf(nil), v.Vis...), v.Invis...)
	}
	return v.Vis
}

// edgeCost implements spec §4.9's cost function:
//
//	cost = distance
//	     + segmentPenalty   · 1[angle > eps]
//	     + anglePenalty     · log(10·bendAngle/pi + 1)
//	     + clusterCrossingPenalty · (# clusters crossed)
//	     + crossingPenalty  · (# route crossings in current reroute phase)
//	     + fixedSharedPathPenalty · 1[shared]
//
// prev is the predecessor of u on the path so far (nil for the first
// segment, which contributes no bend term).
func (r *Router) edgeCost(prev, u, w *VertInf, e *EdgeInf) float64 {
	cost := e.Distance

	if prev != nil {
		bend := bendAngle(prev.Pos, u.Pos, w.Pos)
		if bend > bendEpsilon {
			cost += r.penalties.Segment
		}
		cost += r.penalties.Angle * math.Log(10*bend/math.Pi+1)
	}

	if r.config.ClusteredRouting && r.penalties.ClusterCrossing != 0 {
		cost += r.penalties.ClusterCrossing * float64(r.countClusterCrossings(u.Pos, w.Pos))
	}

	if r.inCrossingReroutingStage && r.penalties.Crossing != 0 {
		cost += r.penalties.Crossing * float64(r.countRouteCrossings(u.Pos, w.Pos, r.currentRoutingConn))
	}

	if r.penalties.FixedSharedPath != 0 && r.segmentIsFixedShared(u.Pos, w.Pos, r.currentRoutingConn) {
		cost += r.penalties.FixedSharedPath
	}

	return cost
}

const bendEpsilon = 1e-9

// bendAngle returns the absolute turn angle (radians, in [0, pi]) at b on
// the path a->b->c.
func bendAngle(a, b, c Point) float64 {
	v1x, v1y := b.X-a.X, b.Y-a.Y
	v2x, v2y := c.X-b.X, c.Y-b.Y
	n1 := math.Hypot(v1x, v1y)
	n2 := math.Hypot(v2x, v2y)
	if n1 == 0 || n2 == 0 {
		return 0
	}
	cosT := (v1x*v2x + v1y*v2y) / (n1 * n2)
	cosT = math.Max(-1, math.Min(1, cosT))
	return math.Acos(cosT)
}

// searchDijkstra implements spec §4.9's Dijkstra: path_dist initialised to
// +inf (modelled as math.Inf(1) with pathVisited distinguishing
// "unvisited" from "current best", rather than the source's negative-
// sentinel-flip trick, which Go's explicit bool field makes unnecessary).
func (r *Router) searchDijkstra(src, dst *VertInf, c *ConnRef) ([]*VertInf, bool) {
	orthogonal := c.Type == Orthogonal
	touched := r.resetPathScratch(src)

	src.pathDist = 0
	src.pathVisited = true
	src.pathNext = nil

	pq := &vertexPQ{{v: src, dist: 0}}
	heap.Init(pq)
	done := make(map[*VertInf]bool)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if done[cur.v] {
			continue
		}
		done[cur.v] = true
		if cur.v == dst {
			break
		}
		for _, e := range r.neighbourEdges(cur.v, orthogonal) {
			if !e.Visible && !r.config.InvisibilityGraph {
				continue
			}
			w := e.Other(cur.v)
			if done[w] {
				continue
			}
			if !touched[w] {
				w.pathDist = math.Inf(1)
				w.pathVisited = false
				touched[w] = true
			}
			nd := cur.dist + r.edgeCost(cur.v.pathNext, cur.v, w, e)
			if !w.pathVisited || nd < w.pathDist {
				w.pathDist = nd
				w.pathVisited = true
				w.pathNext = cur.v
				heap.Push(pq, pqItem{v: w, dist: nd})
			}
		}
	}

	if !done[dst] {
		return nil, false
	}
	return reconstructVertPath(src, dst), true
}

// searchAStar implements spec §4.9's A*: f = g + h with h = Euclidean
// distance to the target, an admissible heuristic that guarantees the
// first pop of the target is optimal.
func (r *Router) searchAStar(src, dst *VertInf, c *ConnRef) ([]*VertInf, bool) {
	orthogonal := c.Type == Orthogonal
	touched := r.resetPathScratch(src)

	src.pathDist = 0
	src.pathVisited = true
	src.pathNext = nil

	pq := &vertexPQ{{v: src, dist: src.Pos.Dist(dst.Pos)}}
	heap.Init(pq)
	done := make(map[*VertInf]bool)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if done[cur.v] {
			continue
		}
		done[cur.v] = true
		if cur.v == dst {
			return reconstructVertPath(src, dst), true
		}
		for _, e := range r.neighbourEdges(cur.v, orthogonal) {
			if !e.Visible && !r.config.InvisibilityGraph {
				continue
			}
			w := e.Other(cur.v)
			if done[w] {
				continue
			}
			if !touched[w] {
				w.pathDist = math.Inf(1)
				w.pathVisited = false
				touched[w] = true
			}
			ng := cur.v.pathDist + r.edgeCost(cur.v.pathNext, cur.v, w, e)
			if !w.pathVisited || ng < w.pathDist {
				w.pathDist = ng
				w.pathVisited = true
				w.pathNext = cur.v
				heap.Push(pq, pqItem{v: w, dist: ng + w.Pos.Dist(dst.Pos)})
			}
		}
	}
	return nil, false
}

// resetPathScratch clears pathVisited starting from src's reachable
// region lazily (via the touched set) rather than walking every vertex in
// the router up front.
func (r *Router) resetPathScratch(src *VertInf) map[*VertInf]bool {
	touched := map[*VertInf]bool{src: true}
	return touched
}

func reconstructVertPath(src, dst *VertInf) []*VertInf {
	var rev []*VertInf
	for v := dst; v != nil; v = v.pathNext {
		rev = append(rev, v)
		if v == src {
			break
		}
	}
	path := make([]*VertInf, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}
	return path
}

// pqItem/vertexPQ is the min-heap of candidate vertices used by both
// Dijkstra and A*, keyed on dist (plain g for Dijkstra, f=g+h for A*).
type pqItem struct {
	v    *VertInf
	dist float64
}

type vertexPQ []pqItem

func (pq vertexPQ) Len() int            { return len(pq) }
func (pq vertexPQ) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq vertexPQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *vertexPQ) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *vertexPQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
