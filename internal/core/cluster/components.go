package cluster

// Components returns the connected components with at least minSize nodes.
// Start nodes are taken in index order and each component lists its nodes
// in depth-first preorder, matching a recursive traversal that follows
// adjacency insertion order.
func (g *Graph) Components(minSize int) [][]int {
	visited := make([]bool, len(g.adj))
	var components [][]int

	for start := range g.adj {
		if visited[start] {
			continue
		}
		component := g.walk(start, visited)
		if len(component) >= minSize {
			components = append(components, component)
		}
	}
	return components
}

func (g *Graph) walk(start int, visited []bool) []int {
	var component []int
	stack := []int{start}

	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[u] {
			continue
		}
		visited[u] = true
		component = append(component, u)

		// Reverse push so the first neighbor is popped first.
		neighbors := g.adj[u]
		for k := len(neighbors) - 1; k >= 0; k-- {
			if v := neighbors[k]; !visited[v] {
				stack = append(stack, v)
			}
		}
	}
	return component
}
