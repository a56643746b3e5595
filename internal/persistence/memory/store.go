// Package memory implements the persistence contract with an in-process
// store for environments without a configured database. Data is lost on
// restart, conflict checking reports no conflicts, and joined listing carries
// only each booking's inline fields. These are documented limitations of the
// development mode, not bugs; the store is not safe under concurrent writers
// beyond the coarse lock it holds.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/talk-scheduler/internal/persistence"
)

// Store keeps all records in process memory.
type Store struct {
	mu sync.Mutex

	submissions []persistence.Submission
	rooms       []persistence.Room
	talks       []persistence.ScheduledTalk

	nextSubmissionID int64
	nextRoomID       int64
	nextTalkID       int64

	now func() time.Time
}

// NewStore returns an empty in-process store.
func NewStore() *Store {
	return &Store{
		nextSubmissionID: 1,
		nextRoomID:       1,
		nextTalkID:       1,
		now:              time.Now,
	}
}

// Close implements persistence.Store; there is nothing to release.
func (s *Store) Close() error { return nil }

// InsertSubmission stores a submission and assigns the next identifier.
func (s *Store) InsertSubmission(ctx context.Context, submission persistence.Submission) (persistence.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	submission.ID = s.nextSubmissionID
	s.nextSubmissionID++
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = s.now().UTC()
	}
	s.submissions = append(s.submissions, submission)
	return submission, nil
}

// ListSubmissions returns submissions newest first.
func (s *Store) ListSubmissions(ctx context.Context) ([]persistence.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]persistence.Submission, len(s.submissions))
	copy(out, s.submissions)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

func (s *Store) GetSubmission(ctx context.Context, id int64) (persistence.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, submission := range s.submissions {
		if submission.ID == id {
			return submission, nil
		}
	}
	return persistence.Submission{}, persistence.ErrNotFound
}

// DeleteSubmission removes a submission and any scheduled talk referencing it.
func (s *Store) DeleteSubmission(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := -1
	for i, submission := range s.submissions {
		if submission.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return false, nil
	}
	s.submissions = append(s.submissions[:index], s.submissions[index+1:]...)

	kept := s.talks[:0]
	for _, talk := range s.talks {
		if talk.SubmissionID != nil && *talk.SubmissionID == id {
			continue
		}
		kept = append(kept, talk)
	}
	s.talks = kept
	return true, nil
}

// ListRooms returns active rooms ordered by name.
func (s *Store) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []persistence.Room
	for _, room := range s.rooms {
		if room.Active {
			out = append(out, room)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *Store) GetRoom(ctx context.Context, id int64) (persistence.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, room := range s.rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return persistence.Room{}, persistence.ErrNotFound
}

// SeedRooms loads the room catalog once; subsequent calls are no-ops.
func (s *Store) SeedRooms(ctx context.Context, rooms []persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.rooms) > 0 {
		return nil
	}
	now := s.now().UTC()
	for _, room := range rooms {
		room.ID = s.nextRoomID
		s.nextRoomID++
		room.CreatedAt = now
		room.UpdatedAt = now
		s.rooms = append(s.rooms, room)
	}
	return nil
}

func (s *Store) CreateScheduledTalk(ctx context.Context, talk persistence.ScheduledTalk) (persistence.ScheduledTalk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	talk.ID = s.nextTalkID
	s.nextTalkID++
	talk.CreatedAt = now
	talk.UpdatedAt = now
	s.talks = append(s.talks, talk)
	return talk, nil
}

func (s *Store) GetScheduledTalk(ctx context.Context, id int64) (persistence.ScheduledTalk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, talk := range s.talks {
		if talk.ID == id {
			return talk, nil
		}
	}
	return persistence.ScheduledTalk{}, persistence.ErrNotFound
}

// ListScheduledTalks returns bookings ordered by start time. The joined
// submission and room columns stay empty in this mode.
func (s *Store) ListScheduledTalks(ctx context.Context) ([]persistence.ScheduledTalk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]persistence.ScheduledTalk, len(s.talks))
	copy(out, s.talks)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func (s *Store) UpdateScheduledTalk(ctx context.Context, id int64, patch persistence.ScheduledTalkPatch) (persistence.ScheduledTalk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, talk := range s.talks {
		if talk.ID != id {
			continue
		}
		applyPatch(&talk, patch)
		talk.UpdatedAt = s.now().UTC()
		s.talks[i] = talk
		return talk, nil
	}
	return persistence.ScheduledTalk{}, persistence.ErrNotFound
}

func (s *Store) DeleteScheduledTalk(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, talk := range s.talks {
		if talk.ID == id {
			s.talks = append(s.talks[:i], s.talks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// FindConflicts always reports no conflicts in the in-process mode.
func (s *Store) FindConflicts(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) ([]persistence.ScheduledTalk, error) {
	return nil, nil
}

func applyPatch(talk *persistence.ScheduledTalk, patch persistence.ScheduledTalkPatch) {
	if patch.SubmissionID != nil {
		talk.SubmissionID = patch.SubmissionID
	}
	if patch.RoomID != nil {
		talk.RoomID = *patch.RoomID
	}
	if patch.EventTitle != nil {
		talk.EventTitle = patch.EventTitle
	}
	if patch.EventSpeaker != nil {
		talk.EventSpeaker = patch.EventSpeaker
	}
	if patch.EventAffiliation != nil {
		talk.EventAffiliation = patch.EventAffiliation
	}
	if patch.EventAbstract != nil {
		talk.EventAbstract = patch.EventAbstract
	}
	if patch.Start != nil {
		talk.Start = *patch.Start
	}
	if patch.End != nil {
		talk.End = *patch.End
	}
	if patch.Status != nil {
		talk.Status = *patch.Status
	}
	if patch.PublishToWebsite != nil {
		talk.PublishToWebsite = *patch.PublishToWebsite
	}
	if patch.Notes != nil {
		talk.Notes = patch.Notes
	}
}
