package domain

import "fmt"

// Point is a single cell coordinate (0-based).
type Point struct {
	X int
	Y int
}

// Grid is a page's cell occupancy. Each cell is empty or holds the id of one of the
// page's buttons; a spanning button occupies several cells with the same id.
type Grid struct {
	cells [][]string
}

// NewGrid creates an empty grid of the given size. The grid grows on Place.
func NewGrid(rows, cols int) *Grid {
	g := &Grid{}
	g.ensure(rows, cols)
	return g
}

// Rows returns the number of rows.
func (g *Grid) Rows() int {
	return len(g.cells)
}

// Columns returns the number of columns.
func (g *Grid) Columns() int {
	if len(g.cells) == 0 {
		return 0
	}
	return len(g.cells[0])
}

func (g *Grid) ensure(rows, cols int) {
	if cols < g.Columns() {
		cols = g.Columns()
	}
	for i := range g.cells {
		for len(g.cells[i]) < cols {
			g.cells[i] = append(g.cells[i], "")
		}
	}
	for len(g.cells) < rows {
		g.cells = append(g.cells, make([]string, cols))
	}
}

// At returns the button id at (x, y), or "" when the cell is empty or out of range.
func (g *Grid) At(x, y int) string {
	if y < 0 || y >= len(g.cells) || x < 0 || x >= len(g.cells[y]) {
		return ""
	}
	return g.cells[y][x]
}

// Place claims every cell covered by pos for buttonID. It fails without modifying
// the grid if any of those cells already belongs to a different button.
func (g *Grid) Place(buttonID string, pos Position) error {
	if buttonID == "" {
		return fmt.Errorf("cannot place a button without id")
	}
	pos = pos.Normalize()
	for y := pos.Y; y < pos.Y+pos.RowSpan; y++ {
		for x := pos.X; x < pos.X+pos.ColumnSpan; x++ {
			if owner := g.At(x, y); owner != "" && owner != buttonID {
				return &CellConflictError{X: x, Y: y, Owner: owner, Claimant: buttonID}
			}
		}
	}
	g.ensure(pos.Y+pos.RowSpan, pos.X+pos.ColumnSpan)
	for y := pos.Y; y < pos.Y+pos.RowSpan; y++ {
		for x := pos.X; x < pos.X+pos.ColumnSpan; x++ {
			g.cells[y][x] = buttonID
		}
	}
	return nil
}

// Remove clears every cell held by buttonID.
func (g *Grid) Remove(buttonID string) {
	for y := range g.cells {
		for x := range g.cells[y] {
			if g.cells[y][x] == buttonID {
				g.cells[y][x] = ""
			}
		}
	}
}

// Locate finds the first cell (row-major) held by buttonID and measures the
// contiguous span to the right and downwards.
func (g *Grid) Locate(buttonID string) (Position, bool) {
	for y := range g.cells {
		for x := range g.cells[y] {
			if g.cells[y][x] != buttonID {
				continue
			}
			colSpan := 1
			for g.At(x+colSpan, y) == buttonID {
				colSpan++
			}
			rowSpan := 1
			for g.At(x, y+rowSpan) == buttonID {
				rowSpan++
			}
			return Position{X: x, Y: y, ColumnSpan: colSpan, RowSpan: rowSpan}, true
		}
	}
	return Position{}, false
}

// Occupied returns every cell held by buttonID, row-major.
func (g *Grid) Occupied(buttonID string) []Point {
	var points []Point
	for y := range g.cells {
		for x := range g.cells[y] {
			if g.cells[y][x] == buttonID {
				points = append(points, Point{X: x, Y: y})
			}
		}
	}
	return points
}

// Extent returns the number of rows and columns up to the last occupied cell.
func (g *Grid) Extent() (rows, cols int) {
	for y := range g.cells {
		for x := range g.cells[y] {
			if g.cells[y][x] == "" {
				continue
			}
			if y+1 > rows {
				rows = y + 1
			}
			if x+1 > cols {
				cols = x + 1
			}
		}
	}
	return rows, cols
}

// Trim shrinks the grid to its occupied extent.
func (g *Grid) Trim() {
	rows, cols := g.Extent()
	g.cells = g.cells[:rows]
	for i := range g.cells {
		g.cells[i] = g.cells[i][:cols]
	}
}

// ButtonIDs returns the distinct button ids present in the grid, row-major.
func (g *Grid) ButtonIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for y := range g.cells {
		for x := range g.cells[y] {
			id := g.cells[y][x]
			if id != "" && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}
