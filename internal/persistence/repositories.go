// Package persistence defines the storage contract shared by the durable
// Postgres store and the non-durable in-process store used for local
// iteration. All writes are immediately visible to subsequent reads.
package persistence

import (
	"context"
	"time"
)

// SubmissionRepository stores talk proposals.
type SubmissionRepository interface {
	InsertSubmission(ctx context.Context, submission Submission) (Submission, error)
	// ListSubmissions returns all submissions ordered newest first.
	ListSubmissions(ctx context.Context) ([]Submission, error)
	GetSubmission(ctx context.Context, id int64) (Submission, error)
	// DeleteSubmission removes a submission and cascades to any scheduled
	// talk referencing it. It reports whether a row existed.
	DeleteSubmission(ctx context.Context, id int64) (bool, error)
}

// RoomRepository exposes the seeded room catalog.
type RoomRepository interface {
	// ListRooms returns active rooms ordered by name.
	ListRooms(ctx context.Context) ([]Room, error)
	GetRoom(ctx context.Context, id int64) (Room, error)
	// SeedRooms inserts the given rooms unless rooms already exist.
	SeedRooms(ctx context.Context, rooms []Room) error
}

// ScheduleRepository stores room bookings.
type ScheduleRepository interface {
	CreateScheduledTalk(ctx context.Context, talk ScheduledTalk) (ScheduledTalk, error)
	GetScheduledTalk(ctx context.Context, id int64) (ScheduledTalk, error)
	// ListScheduledTalks returns all bookings joined with submission and room
	// display fields, ordered by start time ascending.
	ListScheduledTalks(ctx context.Context) ([]ScheduledTalk, error)
	UpdateScheduledTalk(ctx context.Context, id int64, patch ScheduledTalkPatch) (ScheduledTalk, error)
	DeleteScheduledTalk(ctx context.Context, id int64) (bool, error)
	// FindConflicts returns bookings in roomID overlapping the half-open
	// interval [start, end), excluding excludeID when non-zero.
	FindConflicts(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) ([]ScheduledTalk, error)
}

// Store bundles the repositories behind one backend selected at startup.
type Store interface {
	SubmissionRepository
	RoomRepository
	ScheduleRepository
	Close() error
}
