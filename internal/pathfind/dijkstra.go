// Package pathfind implements a step-wise Dijkstra search over a grid map.
//
// The search reads a grid it never mutates. Each Step settles exactly one
// cell, so a search over a rows×cols grid is done after at most rows*cols
// steps.
package pathfind

import (
	"container/heap"
	"math"

	"github.com/Garsondee/gridfind/internal/gridmap"
)

// Result is the outcome of a search.
type Result uint8

const (
	Searching Result = iota
	Found
	NoPath
)

func (r Result) String() string {
	switch r {
	case Found:
		return "found"
	case NoPath:
		return "no path"
	default:
		return "searching"
	}
}

// Visit is a settled cell and its final distance from the start.
type Visit struct {
	Point gridmap.Point
	Cost  float64
}

// Overlay is the debug view of a search in progress.
type Overlay struct {
	Visited  []Visit         // settle order
	Frontier []gridmap.Point // discovered, not yet settled
	// Path is the route to the goal once found, or to the most recently
	// settled cell while searching. Empty when no path exists.
	Path       []gridmap.Point
	Current    gridmap.Point
	HasCurrent bool
	Result     Result
	Cost       float64 // path cost to the goal when Result == Found
}

type pathNode struct {
	idx   int
	g     float64
	seq   int // insertion order, breaks ties
	index int // heap index
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	if ol[i].g != ol[j].g {
		return ol[i].g < ol[j].g
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

// Dijkstra is a resumable shortest-path search from start to goal.
type Dijkstra struct {
	grid        *gridmap.GridMap
	start, goal gridmap.Point

	dist    []float64
	parent  []int
	settled []bool
	order   []int

	open    openList
	seq     int
	current int
	result  Result
}

// New prepares a search. The caller guarantees start and goal are in bounds;
// the grid must not change while the search is alive.
func New(grid *gridmap.GridMap, start, goal gridmap.Point) *Dijkstra {
	n := grid.Len()
	d := &Dijkstra{
		grid:    grid,
		start:   start,
		goal:    goal,
		dist:    make([]float64, n),
		parent:  make([]int, n),
		settled: make([]bool, n),
		current: -1,
	}
	for i := range d.dist {
		d.dist[i] = math.Inf(1)
		d.parent[i] = -1
	}
	si := grid.Index(start)
	d.dist[si] = 0
	d.push(si, 0)
	return d
}

func (d *Dijkstra) push(idx int, g float64) {
	heap.Push(&d.open, &pathNode{idx: idx, g: g, seq: d.seq})
	d.seq++
}

// Done reports whether the search has finished, with or without a path.
func (d *Dijkstra) Done() bool { return d.result != Searching }

// Result returns the current outcome.
func (d *Dijkstra) Result() Result { return d.result }

// Steps returns how many cells have been settled.
func (d *Dijkstra) Steps() int { return len(d.order) }

// Step settles the next closest cell. It returns false once the search is
// done.
func (d *Dijkstra) Step() bool {
	if d.Done() {
		return false
	}
	d.prune()
	if d.open.Len() == 0 {
		d.result = NoPath
		return false
	}
	cur := heap.Pop(&d.open).(*pathNode)
	d.settled[cur.idx] = true
	d.order = append(d.order, cur.idx)
	d.current = cur.idx

	p := d.grid.PointAt(cur.idx)
	if p == d.goal {
		d.result = Found
		return true
	}
	for _, e := range d.grid.Neighbors(p) {
		ni := d.grid.Index(e.To)
		if d.settled[ni] {
			continue
		}
		g := cur.g + e.Cost
		if g >= d.dist[ni] {
			continue
		}
		d.dist[ni] = g
		d.parent[ni] = cur.idx
		d.push(ni, g)
	}
	d.prune()
	if d.open.Len() == 0 {
		d.result = NoPath
	}
	return true
}

// prune drops heap entries for cells already settled or since improved.
func (d *Dijkstra) prune() {
	for d.open.Len() > 0 {
		top := d.open[0]
		if !d.settled[top.idx] && top.g <= d.dist[top.idx] {
			return
		}
		heap.Pop(&d.open)
	}
}

// Path returns the route to the goal once found, the route to the most
// recently settled cell while searching, and nil when no path exists.
func (d *Dijkstra) Path() []gridmap.Point {
	switch {
	case d.result == NoPath:
		return nil
	case d.result == Found:
		return d.buildPath(d.grid.Index(d.goal))
	case d.current >= 0:
		return d.buildPath(d.current)
	}
	return nil
}

func (d *Dijkstra) buildPath(end int) []gridmap.Point {
	var cells []gridmap.Point
	for i := end; i >= 0; i = d.parent[i] {
		cells = append(cells, d.grid.PointAt(i))
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}

// Overlay snapshots the search for rendering.
func (d *Dijkstra) Overlay() Overlay {
	o := Overlay{
		Visited: make([]Visit, len(d.order)),
		Path:    d.Path(),
		Result:  d.result,
	}
	for i, idx := range d.order {
		o.Visited[i] = Visit{Point: d.grid.PointAt(idx), Cost: d.dist[idx]}
	}
	seen := make(map[int]bool, len(d.open))
	for _, n := range d.open {
		if d.settled[n.idx] || n.g > d.dist[n.idx] || seen[n.idx] {
			continue
		}
		seen[n.idx] = true
		o.Frontier = append(o.Frontier, d.grid.PointAt(n.idx))
	}
	if d.current >= 0 {
		o.Current = d.grid.PointAt(d.current)
		o.HasCurrent = true
	}
	if d.result == Found {
		o.Cost = d.dist[d.grid.Index(d.goal)]
	}
	return o
}
