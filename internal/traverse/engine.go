// Package traverse implements an in-memory, snapshot-based adjacency engine
// over the graph index: BFS/DFS reachability, weighted multi-hop walks, and
// shortest-path queries, plus pass-through claim lookups. It never mutates
// the index, and its adjacency snapshot is never refreshed (the claim
// lookups query the index directly); callers who want fresh adjacency
// rebuild it.
package traverse

import (
	"container/heap"
	"context"

	"github.com/nexus-kg/nexus/internal/graph"
)

// Neighbor is one adjacency-list entry: a reachable node and the edge
// strength connecting it.
type Neighbor struct {
	Name     string
	Strength float64
}

// Engine is a frozen snapshot of the graph's adjacency structure.
type Engine struct {
	idx *graph.Index
	adj map[string][]Neighbor
}

// NewEngine builds an adjacency list from a single DumpAllRelationships
// call: undirected rows contribute both directions, directed rows
// contribute source→target only.
func NewEngine(ctx context.Context, idx *graph.Index) (*Engine, error) {
	rows, err := idx.DumpAllRelationships(ctx)
	if err != nil {
		return nil, err
	}

	adj := make(map[string][]Neighbor)
	ensure := func(name string) {
		if _, ok := adj[name]; !ok {
			adj[name] = nil
		}
	}

	for _, r := range rows {
		ensure(r.SourceName)
		ensure(r.TargetName)
		adj[r.SourceName] = append(adj[r.SourceName], Neighbor{Name: r.TargetName, Strength: r.Strength})
		if !r.Directed {
			adj[r.TargetName] = append(adj[r.TargetName], Neighbor{Name: r.SourceName, Strength: r.Strength})
		}
	}

	return &Engine{idx: idx, adj: adj}, nil
}

// Neighbors returns node's adjacency entries, or nil if node is absent.
func (e *Engine) Neighbors(node string) []Neighbor {
	return e.adj[node]
}

// HasNode reports whether node appears in the snapshot.
func (e *Engine) HasNode(node string) bool {
	_, ok := e.adj[node]
	return ok
}

// BFS returns the set of nodes reachable from start within depth hops,
// excluding start itself.
func (e *Engine) BFS(start string, depth int) []string {
	if _, ok := e.adj[start]; !ok {
		return nil
	}

	visited := map[string]bool{start: true}
	frontier := []string{start}

	for i := 0; i < depth && len(frontier) > 0; i++ {
		var next []string
		for _, n := range frontier {
			for _, nbr := range e.adj[n] {
				if !visited[nbr.Name] {
					visited[nbr.Name] = true
					next = append(next, nbr.Name)
				}
			}
		}
		frontier = next
	}

	delete(visited, start)
	result := make([]string, 0, len(visited))
	for n := range visited {
		result = append(result, n)
	}
	return result
}

// DFS returns the depth-limited set of nodes reachable from start, in
// visitation order, excluding start itself.
func (e *Engine) DFS(start string, maxDepth int) []string {
	var result []string
	// depthAt holds the shallowest depth each node was reached at, so a node
	// first seen on a long path is revisited when a shorter one reaches it
	// and its own neighbors get the remaining depth budget.
	depthAt := map[string]int{}

	var walk func(node string, d int)
	walk = func(node string, d int) {
		if d > maxDepth {
			return
		}
		seen, ok := depthAt[node]
		if ok && seen <= d {
			return
		}
		if !ok {
			result = append(result, node)
		}
		depthAt[node] = d
		for _, nbr := range e.adj[node] {
			walk(nbr.Name, d+1)
		}
	}
	walk(start, 0)

	if len(result) > 0 && result[0] == start {
		result = result[1:]
	}
	return result
}

// Walk returns, for every node reachable from start within depth hops, the
// maximum product of edge strengths along any such path — cumulative
// weighted reachability rather than the sum the original engine's comment
// left as an open option.
func (e *Engine) Walk(start string, depth int) map[string]float64 {
	results := make(map[string]float64)
	type scored struct {
		node  string
		score float64
	}
	frontier := []scored{{start, 1.0}}

	for i := 0; i < depth; i++ {
		var next []scored
		for _, f := range frontier {
			for _, nbr := range e.adj[f.node] {
				newScore := f.score * nbr.Strength
				if existing, ok := results[nbr.Name]; !ok || newScore > existing {
					results[nbr.Name] = newScore
					next = append(next, scored{nbr.Name, newScore})
				}
			}
		}
		frontier = next
	}

	delete(results, start)
	return results
}

const shortestPathEpsilon = 1e-6

// ShortestPath finds the minimum-cost path from start to end, treating edge
// strength as a similarity: cost = 1 - strength, floored at a small epsilon
// so zero-strength edges are never free. Returns a *graph.RelationshipNotFoundError
// if end is unreachable.
func (e *Engine) ShortestPath(start, end string) ([]string, float64, error) {
	if start == end {
		return []string{start}, 0, nil
	}
	if _, ok := e.adj[start]; !ok {
		return nil, 0, &graph.RelationshipNotFoundError{Source: start, Target: end}
	}

	dist := map[string]float64{start: 0}
	prev := map[string]string{}
	pq := &priorityQueue{{node: start, dist: 0}}
	visited := map[string]bool{}

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true
		if cur.node == end {
			break
		}

		for _, nbr := range e.adj[cur.node] {
			cost := 1 - nbr.Strength
			if cost < shortestPathEpsilon {
				cost = shortestPathEpsilon
			}
			alt := dist[cur.node] + cost
			if existing, ok := dist[nbr.Name]; !ok || alt < existing {
				dist[nbr.Name] = alt
				prev[nbr.Name] = cur.node
				heap.Push(pq, pqItem{node: nbr.Name, dist: alt})
			}
		}
	}

	finalDist, ok := dist[end]
	if !ok {
		return nil, 0, &graph.RelationshipNotFoundError{Source: start, Target: end}
	}

	var path []string
	for n := end; n != start; n = prev[n] {
		path = append([]string{n}, path...)
	}
	path = append([]string{start}, path...)
	return path, finalDist, nil
}

// ClaimsForEntity delegates straight through to the underlying index.
func (e *Engine) ClaimsForEntity(ctx context.Context, name string) ([]graph.Claim, error) {
	return e.idx.LoadEntityClaims(ctx, name)
}

// ClaimsBetween delegates straight through to the underlying index.
func (e *Engine) ClaimsBetween(ctx context.Context, a, b string) ([]graph.Claim, error) {
	return e.idx.LoadRelationshipClaims(ctx, a, b, nil)
}

type pqItem struct {
	node string
	dist float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
