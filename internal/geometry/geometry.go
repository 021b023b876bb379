// Package geometry holds the grid rules shared by converters: vendor coordinate
// encodings, the default sizing policy and auto-layout of unplaced buttons.
package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// ParseCoordinatePair parses "a,b" (whitespace tolerated) as used by Snap for
// positions ("x,y") and spans ("w,h").
func ParseCoordinatePair(s string) (int, int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid coordinate pair %q", s)
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid coordinate pair %q: %w", s, err)
	}
	b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid coordinate pair %q: %w", s, err)
	}
	return a, b, nil
}

// FormatCoordinatePair is the inverse of ParseCoordinatePair.
func FormatCoordinatePair(a, b int) string {
	return strconv.Itoa(a) + "," + strconv.Itoa(b)
}

// DefaultDimensions sizes a grid for n buttons when none was recorded:
// cols = ceil(sqrt(n)), rows = ceil(n/cols), never smaller than 1x1.
func DefaultDimensions(n int) (rows, cols int) {
	if n <= 1 {
		return 1, 1
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = (n + cols - 1) / cols
	return rows, cols
}

// Dimensions returns the export dimensions of a page: the occupied extent of its
// grid, or DefaultDimensions when the page has no placed buttons.
func Dimensions(page *domain.Page) (rows, cols int) {
	if page.Grid != nil {
		rows, cols = page.Grid.Extent()
		if rows > 0 && cols > 0 {
			return rows, cols
		}
	}
	return DefaultDimensions(len(page.Buttons))
}

// Plan computes a cell for every button of page accepted by include, without
// modifying the page. Buttons keep their recorded cells (page grid first, then
// Button.Position); the rest, including buttons whose stored position collides,
// fill the first free cells row-major using the wider of the occupied extent and
// the default width.
func Plan(page *domain.Page, include func(*domain.Button) bool) (*domain.Grid, error) {
	grid := domain.NewGrid(0, 0)
	var pending []*domain.Button
	n := 0
	for _, b := range page.Buttons {
		if include != nil && !include(b) {
			continue
		}
		n++
		if page.Grid != nil {
			if pos, ok := page.Grid.Locate(b.ID); ok {
				if grid.Place(b.ID, pos) == nil {
					continue
				}
			}
		}
		if b.Position != nil {
			if grid.Place(b.ID, *b.Position) == nil {
				continue
			}
		}
		pending = append(pending, b)
	}
	if len(pending) == 0 {
		return grid, nil
	}

	_, cols := DefaultDimensions(n)
	if _, used := grid.Extent(); used > cols {
		cols = used
	}
	placed := 0
	for x, y := 0, 0; placed < len(pending); {
		if grid.At(x, y) == "" {
			if err := grid.Place(pending[placed].ID, domain.Position{X: x, Y: y}); err != nil {
				return nil, err
			}
			placed++
		}
		x++
		if x >= cols {
			x = 0
			y++
		}
	}
	return grid, nil
}

// Layout applies Plan to the page: its grid is replaced and every button's
// Position updated. It returns the number of buttons whose cell changed.
func Layout(page *domain.Page) (int, error) {
	grid, err := Plan(page, nil)
	if err != nil {
		return 0, err
	}
	moved := 0
	for _, b := range page.Buttons {
		pos, ok := grid.Locate(b.ID)
		if !ok {
			continue
		}
		if b.Position == nil || b.Position.Normalize() != pos {
			moved++
		}
		p := pos
		b.Position = &p
	}
	page.Grid = grid
	return moved, nil
}
