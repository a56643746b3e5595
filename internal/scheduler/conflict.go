package scheduler

import "time"

// Booking represents a room reservation over a half-open interval [Start, End).
type Booking struct {
	ID     int64
	RoomID int64
	Start  time.Time
	End    time.Time
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Intervals that merely touch do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// FindConflicts returns every existing booking in roomID whose interval
// overlaps [start, end). A booking whose ID equals excludeID is skipped so
// that edits never conflict with themselves; pass 0 when creating.
// Bookings in other rooms never conflict.
func FindConflicts(existing []Booking, roomID int64, start, end time.Time, excludeID int64) []Booking {
	var conflicts []Booking
	for _, booking := range existing {
		if booking.RoomID != roomID {
			continue
		}
		if excludeID != 0 && booking.ID == excludeID {
			continue
		}
		if Overlaps(booking.Start, booking.End, start, end) {
			conflicts = append(conflicts, booking)
		}
	}
	return conflicts
}
