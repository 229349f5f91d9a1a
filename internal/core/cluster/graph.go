package cluster

// Graph is a simple undirected graph over the nodes 0..n-1. Adjacency lists
// keep insertion order so traversals are reproducible.
type Graph struct {
	adj   [][]int
	edges int
}

func NewGraph(n int) *Graph {
	if n < 0 {
		n = 0
	}
	return &Graph{adj: make([][]int, n)}
}

func (g *Graph) Len() int {
	return len(g.adj)
}

func (g *Graph) EdgeCount() int {
	return g.edges
}

// AddEdge links i and j in both directions. Self-loops, out-of-range nodes
// and repeated edges are ignored. It reports whether an edge was added.
func (g *Graph) AddEdge(i, j int) bool {
	if i == j || i < 0 || j < 0 || i >= len(g.adj) || j >= len(g.adj) {
		return false
	}
	if g.HasEdge(i, j) {
		return false
	}
	g.adj[i] = append(g.adj[i], j)
	g.adj[j] = append(g.adj[j], i)
	g.edges++
	return true
}

func (g *Graph) HasEdge(i, j int) bool {
	if i < 0 || i >= len(g.adj) {
		return false
	}
	for _, v := range g.adj[i] {
		if v == j {
			return true
		}
	}
	return false
}

// Neighbors returns the neighbors of i in insertion order. The slice must
// not be modified.
func (g *Graph) Neighbors(i int) []int {
	if i < 0 || i >= len(g.adj) {
		return nil
	}
	return g.adj[i]
}
