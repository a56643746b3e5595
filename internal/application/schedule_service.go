package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/example/talk-scheduler/internal/persistence"
	"github.com/example/talk-scheduler/internal/scheduler"
)

// validStatuses are the lifecycle states a scheduled talk can be in. A new
// booking defaults to StatusScheduled.
const (
	StatusScheduled = "scheduled"
	StatusPublished = "published"
	StatusDraft     = "draft"
	StatusCancelled = "cancelled"
)

var validStatuses = []string{StatusScheduled, StatusPublished, StatusDraft, StatusCancelled}

// ScheduleService books talks into rooms and enforces the no-double-booking
// rule. The conflict check and the subsequent write are separate statements;
// the exclusion constraint noted in the initial migration closes the
// remaining window when enabled.
type ScheduleService struct {
	schedules   persistence.ScheduleRepository
	rooms       persistence.RoomRepository
	submissions persistence.SubmissionRepository
	now         func() time.Time
	logger      *slog.Logger
}

// NewScheduleService wires dependencies for scheduling operations.
func NewScheduleService(schedules persistence.ScheduleRepository, rooms persistence.RoomRepository, submissions persistence.SubmissionRepository, now func() time.Time) *ScheduleService {
	return NewScheduleServiceWithLogger(schedules, rooms, submissions, now, nil)
}

// NewScheduleServiceWithLogger constructs a ScheduleService with a specified logger.
func NewScheduleServiceWithLogger(schedules persistence.ScheduleRepository, rooms persistence.RoomRepository, submissions persistence.SubmissionRepository, now func() time.Time, logger *slog.Logger) *ScheduleService {
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{
		schedules:   schedules,
		rooms:       rooms,
		submissions: submissions,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ScheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScheduleService", operation, attrs...)
}

// Rooms returns the active room catalog.
func (s *ScheduleService) Rooms(ctx context.Context) ([]persistence.Room, error) {
	if s == nil || s.rooms == nil {
		return nil, fmt.Errorf("room repository not configured")
	}
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return rooms, nil
}

// CheckConflicts reports the bookings that overlap the half-open interval
// [start, end) in the given room, without writing anything. excludeID skips a
// booking being moved so it does not conflict with itself.
func (s *ScheduleService) CheckConflicts(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) ([]persistence.ScheduledTalk, error) {
	if s == nil || s.schedules == nil {
		return nil, fmt.Errorf("schedule repository not configured")
	}

	vErr := &ValidationError{}
	validateInterval(roomID, start, end, vErr)
	if vErr.HasErrors() {
		return nil, vErr
	}

	return s.findConflicts(ctx, roomID, start, end, excludeID)
}

// Schedule validates the booking, rejects it with a ConflictError when the
// slot is taken, and stores it otherwise.
func (s *ScheduleService) Schedule(ctx context.Context, input ScheduleInput) (talk persistence.ScheduledTalk, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}
	if s.schedules == nil {
		err = fmt.Errorf("schedule repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Schedule",
		"room_id", input.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "scheduling failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("scheduled_talk_id", talk.ID).InfoContext(ctx, "talk scheduled")
	}()

	input.EventTitle = strings.TrimSpace(input.EventTitle)
	input.EventSpeaker = strings.TrimSpace(input.EventSpeaker)
	input.EventAffiliation = strings.TrimSpace(input.EventAffiliation)
	input.EventAbstract = strings.TrimSpace(input.EventAbstract)
	if input.Status == "" {
		input.Status = StatusScheduled
	}

	vErr := &ValidationError{}
	validateInterval(input.RoomID, input.Start, input.End, vErr)
	if input.SubmissionID == nil && input.EventTitle == "" {
		vErr.add("eventTitle", "event title is required when no submission is linked")
	}
	if !slices.Contains(validStatuses, input.Status) {
		vErr.add("status", "status must be one of: "+strings.Join(validStatuses, ", "))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureRoomExists(ctx, input.RoomID); err != nil {
		return
	}
	if err = s.ensureSubmissionExists(ctx, input.SubmissionID); err != nil {
		return
	}

	var conflicts []persistence.ScheduledTalk
	conflicts, err = s.findConflicts(ctx, input.RoomID, input.Start, input.End, 0)
	if err != nil {
		return
	}
	if len(conflicts) > 0 {
		err = &ConflictError{Conflicts: conflicts}
		return
	}

	talk, err = s.schedules.CreateScheduledTalk(ctx, persistence.ScheduledTalk{
		SubmissionID:     input.SubmissionID,
		RoomID:           input.RoomID,
		EventTitle:       optional(input.EventTitle),
		EventSpeaker:     optional(input.EventSpeaker),
		EventAffiliation: optional(input.EventAffiliation),
		EventAbstract:    optional(input.EventAbstract),
		Start:            input.Start,
		End:              input.End,
		Status:           input.Status,
		PublishToWebsite: input.PublishToWebsite,
		Notes:            optional(input.Notes),
	})
	if err != nil {
		err = mapRepoError(err)
		talk = persistence.ScheduledTalk{}
	}
	return
}

// Reschedule applies a partial update to an existing booking. The conflict
// check runs against the effective room and interval after the patch, with
// the booking itself excluded.
func (s *ScheduleService) Reschedule(ctx context.Context, id int64, patch persistence.ScheduledTalkPatch) (talk persistence.ScheduledTalk, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}
	if s.schedules == nil {
		err = fmt.Errorf("schedule repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Reschedule", "scheduled_talk_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "reschedule failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "talk rescheduled")
	}()

	var existing persistence.ScheduledTalk
	existing, err = s.schedules.GetScheduledTalk(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	roomID := existing.RoomID
	if patch.RoomID != nil {
		roomID = *patch.RoomID
	}
	start := existing.Start
	if patch.Start != nil {
		start = *patch.Start
	}
	end := existing.End
	if patch.End != nil {
		end = *patch.End
	}

	vErr := &ValidationError{}
	validateInterval(roomID, start, end, vErr)
	if patch.Status != nil && !slices.Contains(validStatuses, *patch.Status) {
		vErr.add("status", "status must be one of: "+strings.Join(validStatuses, ", "))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if patch.RoomID != nil {
		if err = s.ensureRoomExists(ctx, roomID); err != nil {
			return
		}
	}
	if patch.SubmissionID != nil {
		submissionID := *patch.SubmissionID
		if err = s.ensureSubmissionExists(ctx, &submissionID); err != nil {
			return
		}
	}

	var conflicts []persistence.ScheduledTalk
	conflicts, err = s.findConflicts(ctx, roomID, start, end, id)
	if err != nil {
		return
	}
	if len(conflicts) > 0 {
		err = &ConflictError{Conflicts: conflicts}
		return
	}

	talk, err = s.schedules.UpdateScheduledTalk(ctx, id, patch)
	if err != nil {
		err = mapRepoError(err)
		talk = persistence.ScheduledTalk{}
	}
	return
}

// Unschedule removes a booking. The underlying submission, if any, is kept
// and becomes schedulable again.
func (s *ScheduleService) Unschedule(ctx context.Context, id int64) error {
	if s == nil || s.schedules == nil {
		return fmt.Errorf("schedule repository not configured")
	}

	logger := s.loggerWith(ctx, "Unschedule", "scheduled_talk_id", id)

	existed, err := s.schedules.DeleteScheduledTalk(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "unschedule failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if !existed {
		return ErrNotFound
	}
	logger.InfoContext(ctx, "talk unscheduled")
	return nil
}

// ListScheduled returns every booking with its joined display fields, ordered
// by start time.
func (s *ScheduleService) ListScheduled(ctx context.Context) ([]persistence.ScheduledTalk, error) {
	if s == nil || s.schedules == nil {
		return nil, fmt.Errorf("schedule repository not configured")
	}
	talks, err := s.schedules.ListScheduledTalks(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return talks, nil
}

// ListUnscheduled returns the submissions that no booking references,
// computed per call as the set difference of submissions and bookings.
func (s *ScheduleService) ListUnscheduled(ctx context.Context) ([]persistence.Submission, error) {
	if s == nil || s.schedules == nil || s.submissions == nil {
		return nil, fmt.Errorf("schedule repository not configured")
	}

	submissions, err := s.submissions.ListSubmissions(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	talks, err := s.schedules.ListScheduledTalks(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	scheduled := make(map[int64]struct{}, len(talks))
	for _, talk := range talks {
		if talk.SubmissionID != nil {
			scheduled[*talk.SubmissionID] = struct{}{}
		}
	}

	unscheduled := make([]persistence.Submission, 0, len(submissions))
	for _, submission := range submissions {
		if _, ok := scheduled[submission.ID]; ok {
			continue
		}
		unscheduled = append(unscheduled, submission)
	}
	return unscheduled, nil
}

// findConflicts asks the repository for candidate bookings and keeps only
// those the overlap predicate confirms for the requested room and interval.
// The predicate decides; a backend may over-report candidates but can never
// widen a conflict.
func (s *ScheduleService) findConflicts(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) ([]persistence.ScheduledTalk, error) {
	candidates, err := s.schedules.FindConflicts(ctx, roomID, start, end, excludeID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	var conflicts []persistence.ScheduledTalk
	for _, candidate := range candidates {
		if candidate.RoomID != roomID {
			continue
		}
		if excludeID != 0 && candidate.ID == excludeID {
			continue
		}
		if scheduler.Overlaps(candidate.Start, candidate.End, start, end) {
			conflicts = append(conflicts, candidate)
		}
	}
	return conflicts, nil
}

func (s *ScheduleService) ensureRoomExists(ctx context.Context, roomID int64) error {
	if s.rooms == nil {
		return nil
	}
	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			vErr := &ValidationError{}
			vErr.add("roomId", "room does not exist")
			return vErr
		}
		return mapRepoError(err)
	}
	return nil
}

func (s *ScheduleService) ensureSubmissionExists(ctx context.Context, submissionID *int64) error {
	if submissionID == nil || s.submissions == nil {
		return nil
	}
	if _, err := s.submissions.GetSubmission(ctx, *submissionID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			vErr := &ValidationError{}
			vErr.add("submissionId", "submission does not exist")
			return vErr
		}
		return mapRepoError(err)
	}
	return nil
}

func validateInterval(roomID int64, start, end time.Time, vErr *ValidationError) {
	if roomID <= 0 {
		vErr.add("roomId", "room is required")
	}
	if start.IsZero() {
		vErr.add("startTime", "start time is required")
	}
	if end.IsZero() {
		vErr.add("endTime", "end time is required")
	}
	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		vErr.add("time", "end must be after start")
	}
}
