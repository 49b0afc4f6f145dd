// Package maze generates perfect mazes as grid maps.
package maze

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/rand"

	"github.com/Garsondee/gridfind/internal/gridmap"
)

// ErrTooSmall is returned for mazes with fewer than 3 rows or columns.
var ErrTooSmall = errors.New("maze needs at least 3 rows and 3 columns")

// Generate carves a recursive-backtracker maze into a rows×cols map. Rooms sit
// on odd coordinates; the outer border and everything else starts as wall
// (Invalid) and corridors are Normal{1}. The same seed always gives the same
// maze.
func Generate(rows, cols int, seed int64) (*gridmap.GridMap, error) {
	if rows < 3 || cols < 3 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrTooSmall, rows, cols)
	}
	m, err := gridmap.New(rows, cols)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	free := gridmap.Normal(1)
	inside := func(p gridmap.Point) bool {
		return p.Row >= 1 && p.Row < rows-1 && p.Col >= 1 && p.Col < cols-1
	}

	start := gridmap.Point{Row: 1, Col: 1}
	visited := map[gridmap.Point]bool{start: true}
	stack := []gridmap.Point{start}
	if err := m.SetCell(start, free); err != nil {
		return nil, err
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		var next []gridmap.Point
		for _, d := range gridmap.Directions {
			dr, dc := d.Offset()
			n := cur.Add(2*dr, 2*dc)
			if inside(n) && !visited[n] {
				next = append(next, n)
			}
		}
		if len(next) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		n := next[rng.Intn(len(next))]
		visited[n] = true
		wall := gridmap.Point{Row: (cur.Row + n.Row) / 2, Col: (cur.Col + n.Col) / 2}
		if err := m.SetCell(wall, free); err != nil {
			return nil, err
		}
		if err := m.SetCell(n, free); err != nil {
			return nil, err
		}
		stack = append(stack, n)
	}
	return m, nil
}

// Endpoints returns the top-left and bottom-right rooms of a generated maze.
func Endpoints(rows, cols int) (start, goal gridmap.Point) {
	return gridmap.Point{Row: 1, Col: 1}, gridmap.Point{Row: lastRoom(rows), Col: lastRoom(cols)}
}

func lastRoom(n int) int {
	last := n - 2
	if last%2 == 0 {
		last--
	}
	return last
}

// Image paints m as a background raster with ppc×ppc pixels per cell: walls
// black, corridors white. Auto-fill over it reproduces the maze.
func Image(m *gridmap.GridMap, ppc int) *image.NRGBA {
	if ppc < 1 {
		ppc = 1
	}
	img := image.NewNRGBA(image.Rect(0, 0, m.Cols()*ppc, m.Rows()*ppc))
	for row := 0; row < m.Rows(); row++ {
		for col := 0; col < m.Cols(); col++ {
			c := color.NRGBA{A: 255}
			if m.CellAt(gridmap.Point{Row: row, Col: col}).Passable() {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			for y := row * ppc; y < (row+1)*ppc; y++ {
				for x := col * ppc; x < (col+1)*ppc; x++ {
					img.SetNRGBA(x, y, c)
				}
			}
		}
	}
	return img
}
