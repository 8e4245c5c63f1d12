package service

import "github.com/Eursukkul/booking-microservice/reservation-service/internal/models"

// pendingWrite stages an edit on a working copy of a reservation. The
// snapshot is what callers see again if the write does not commit.
type pendingWrite struct {
	snapshot models.Reservation
	working  *models.Reservation
}

func beginWrite(r *models.Reservation) *pendingWrite {
	working := *r
	return &pendingWrite{snapshot: *r, working: &working}
}

func (w *pendingWrite) rollback() models.Reservation {
	*w.working = w.snapshot
	return w.snapshot
}
