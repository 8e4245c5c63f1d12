package calendar

import (
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
)

type State int

const (
	Idle State = iota
	Dragging
	Committed
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Committed:
		return "committed"
	default:
		return "idle"
	}
}

// Draft is a prospective stay produced by a selection.
type Draft struct {
	SiteID    uint      `json:"site_id"`
	Arrival   time.Time `json:"arrival_date"`
	Departure time.Time `json:"departure_date"`
}

func (d Draft) Nights() int {
	return models.NightsBetween(d.Arrival, d.Departure)
}

// DraftFromIndices maps an inclusive day-index span to a stay. The order of
// start and end does not matter; departure is the day after the later index.
func DraftFromIndices(siteID uint, days []time.Time, start, end int) (Draft, error) {
	if start < 0 || end < 0 || start >= len(days) || end >= len(days) {
		return Draft{}, ErrIndexOutOfRange
	}
	lo, hi := start, end
	if lo > hi {
		lo, hi = hi, lo
	}
	return Draft{
		SiteID:    siteID,
		Arrival:   models.DateOnly(days[lo]),
		Departure: models.DateOnly(days[hi]).AddDate(0, 0, 1),
	}, nil
}

// Selection is the drag interaction state machine:
// idle -> dragging on pointer down, dragging -> committed on pointer up,
// and back to idle on cancel or reset. Only one pointer drives a drag; the
// row is fixed by the pointer-down cell while the day span follows the
// pointer.
type Selection struct {
	grid    *Grid
	state   State
	pointer int
	row     int
	start   int
	end     int
	draft   Draft
}

func NewSelection(g *Grid) *Selection {
	return &Selection{grid: g}
}

func (s *Selection) State() State {
	return s.state
}

// PointerDown starts a drag. A committed selection is discarded; a drag
// already in progress is left alone.
func (s *Selection) PointerDown(pointerID int, x, y float64) error {
	if s.state == Dragging {
		return ErrDragInProgress
	}
	cell := s.grid.HitTest(x, y)
	s.state = Dragging
	s.pointer = pointerID
	s.row = cell.Row
	s.start = cell.Col
	s.end = cell.Col
	s.draft = Draft{}
	return nil
}

// PointerMove extends the span. Moves from other pointers, or while no drag
// is active, are ignored. Coordinates outside the grid clamp to the nearest
// day, so leaving and re-entering the grid keeps the drag intact.
func (s *Selection) PointerMove(pointerID int, x, y float64) {
	if s.state != Dragging || pointerID != s.pointer {
		return
	}
	s.end = s.grid.HitTest(x, y).Col
}

// PointerUp commits the drag and returns the resulting draft.
func (s *Selection) PointerUp(pointerID int, x, y float64) (Draft, error) {
	if s.state != Dragging || pointerID != s.pointer {
		return Draft{}, ErrNoDragInProgress
	}
	s.end = s.grid.HitTest(x, y).Col

	d, err := DraftFromIndices(s.grid.SiteIDs[s.row], s.grid.Days, s.start, s.end)
	if err != nil {
		s.Reset()
		return Draft{}, err
	}
	s.draft = d
	s.state = Committed
	return d, nil
}

// Cancel abandons an in-progress drag.
func (s *Selection) Cancel() {
	if s.state == Dragging {
		s.Reset()
	}
}

func (s *Selection) Reset() {
	*s = Selection{grid: s.grid}
}

// Span returns the ordered day indices currently selected.
func (s *Selection) Span() (int, int) {
	if s.start > s.end {
		return s.end, s.start
	}
	return s.start, s.end
}

// Draft returns the committed draft.
func (s *Selection) Draft() (Draft, error) {
	if s.state != Committed {
		return Draft{}, ErrSelectionNotReady
	}
	return s.draft, nil
}
