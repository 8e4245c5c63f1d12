// Package calendar turns pointer drags over a site-by-day grid into
// reservation drafts. It holds no rendering code: callers feed it pointer
// coordinates in the grid's own space.
package calendar

import (
	"errors"
	"math"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
)

var (
	ErrEmptyGrid         = errors.New("grid needs at least one day and one site")
	ErrInvalidCellSize   = errors.New("cell width and row height must be positive")
	ErrIndexOutOfRange   = errors.New("day index out of range")
	ErrDragInProgress    = errors.New("a drag is already in progress")
	ErrNoDragInProgress  = errors.New("no drag in progress")
	ErrSelectionNotReady = errors.New("selection has not been committed")
)

// Cell addresses one site row and one day column.
type Cell struct {
	Row int
	Col int
}

// Grid maps pointer coordinates onto site rows and day columns. Row r spans
// [OriginY + r*RowHeight, OriginY + (r+1)*RowHeight) and column c likewise
// along x.
type Grid struct {
	OriginX   float64
	OriginY   float64
	CellWidth float64
	RowHeight float64
	Days      []time.Time
	SiteIDs   []uint
}

// NewGrid builds a grid of numDays consecutive days starting at windowStart.
func NewGrid(windowStart time.Time, numDays int, siteIDs []uint, cellWidth, rowHeight float64) (*Grid, error) {
	if numDays < 1 || len(siteIDs) == 0 {
		return nil, ErrEmptyGrid
	}
	if cellWidth <= 0 || rowHeight <= 0 {
		return nil, ErrInvalidCellSize
	}
	return &Grid{
		CellWidth: cellWidth,
		RowHeight: rowHeight,
		Days:      WindowDays(windowStart, numDays),
		SiteIDs:   append([]uint(nil), siteIDs...),
	}, nil
}

// WindowDays lists n consecutive dates starting at start.
func WindowDays(start time.Time, n int) []time.Time {
	first := models.DateOnly(start)
	days := make([]time.Time, n)
	for i := range days {
		days[i] = first.AddDate(0, 0, i)
	}
	return days
}

// HitTest returns the cell under (x, y). Points outside the grid resolve to
// the nearest edge cell, so a pointer that leaves and re-enters the grid
// never produces an invalid index.
func (g *Grid) HitTest(x, y float64) Cell {
	return Cell{
		Row: nearestIndex(y-g.OriginY, g.RowHeight, len(g.SiteIDs)),
		Col: nearestIndex(x-g.OriginX, g.CellWidth, len(g.Days)),
	}
}

// nearestIndex clamps in float space so huge or infinite offsets still land
// on an edge cell. A zero or negative size maps everything to the first cell.
func nearestIndex(offset, size float64, n int) int {
	if n <= 0 || !(size > 0) {
		return 0
	}
	f := math.Floor(offset / size)
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f >= float64(n):
		return n - 1
	}
	return int(f)
}
