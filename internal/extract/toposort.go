package extract

import (
	"sort"

	"gradx/internal/ir"
)

// topoSortTemps orders temps so every temp is defined after all temps it
// references, via Kahn's algorithm on the dependency DAG — grounded on
// the directed topological-sort idiom in katalvlaran-lvlath/dfs (there
// implemented depth-first; Kahn's in-degree-draining variant is used
// here because it degrades gracefully on a cyclic e-graph: a cycle just
// leaves nodes undrained instead of requiring a separate detection
// pass). If a cycle is detected — a bug, since saturation shouldn't
// produce one — the undrained temps are appended in their original
// order rather than failing the compile.
func topoSortTemps(temps []Temp) []Temp {
	n := len(temps)
	if n == 0 {
		return temps
	}

	index := make(map[string]int, n)
	for i, t := range temps {
		index[t.Name] = i
	}

	dependents := make([][]int, n)
	inDegree := make([]int, n)
	for i, t := range temps {
		seen := make(map[int]bool)
		ir.Walk(t.Expr, func(e ir.Expr) {
			v, ok := e.(*ir.Variable)
			if !ok {
				return
			}
			j, ok := index[v.Name]
			if !ok || j == i || seen[j] {
				return
			}
			seen[j] = true
			dependents[j] = append(dependents[j], i)
			inDegree[i]++
		})
	}

	var queue []int
	for i := 0; i < n; i++ {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	visited := make([]bool, n)
	order := make([]int, 0, n)
	for len(queue) > 0 {
		sort.Ints(queue) // deterministic pop order
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		order = append(order, id)
		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	out := make([]Temp, 0, n)
	for _, id := range order {
		out = append(out, temps[id])
	}
	if len(order) < n {
		for i := 0; i < n; i++ {
			if !visited[i] {
				out = append(out, temps[i])
			}
		}
	}
	return out
}
