package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/talk-scheduler/internal/application"
	"github.com/example/talk-scheduler/internal/persistence"
)

type scheduleService interface {
	Rooms(ctx context.Context) ([]persistence.Room, error)
	CheckConflicts(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) ([]persistence.ScheduledTalk, error)
	Schedule(ctx context.Context, input application.ScheduleInput) (persistence.ScheduledTalk, error)
	Reschedule(ctx context.Context, id int64, patch persistence.ScheduledTalkPatch) (persistence.ScheduledTalk, error)
	Unschedule(ctx context.Context, id int64) error
	ListScheduled(ctx context.Context) ([]persistence.ScheduledTalk, error)
	ListUnscheduled(ctx context.Context) ([]persistence.Submission, error)
}

type ScheduleHandler struct {
	service   scheduleService
	responder responder
}

func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{service: service, responder: newResponder(logger)}
}

// Rooms lists the active room catalog.
func (h *ScheduleHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rooms, err := h.service.Rooms(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRoomDTOs(rooms))
}

// Scheduled lists every booking with joined display fields.
func (h *ScheduleHandler) Scheduled(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	talks, err := h.service.ListScheduled(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduledTalkDTOs(talks))
}

// Unscheduled lists submissions that no booking references yet.
func (h *ScheduleHandler) Unscheduled(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	submissions, err := h.service.ListUnscheduled(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSubmissionDTOs(submissions))
}

// Create books a talk or free-standing event into a room.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	talk, err := h.service.Schedule(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toScheduledTalkDTO(talk))
}

// Patch applies a partial update to a booking.
func (h *ScheduleHandler) Patch(w http.ResponseWriter, r *http.Request, rawID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, err := parseID(rawID)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req schedulePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	talk, err := h.service.Reschedule(r.Context(), id, req.toPatch())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduledTalkDTO(talk))
}

// Delete removes a booking.
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request, rawID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, err := parseID(rawID)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.service.Unschedule(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// CheckConflict answers whether an interval is free without writing anything.
func (h *ScheduleHandler) CheckConflict(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req conflictCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	conflicts, err := h.service.CheckConflicts(r.Context(), req.RoomID, parseTime(req.StartTime), parseTime(req.EndTime), req.ExcludeID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, conflictCheckResponse{
		HasConflict: len(conflicts) > 0,
		Conflicts:   toScheduledTalkDTOs(conflicts),
	})
}

type scheduleRequest struct {
	SubmissionID     *int64 `json:"submissionId"`
	RoomID           int64  `json:"roomId"`
	EventTitle       string `json:"eventTitle"`
	EventSpeaker     string `json:"eventSpeaker"`
	EventAffiliation string `json:"eventAffiliation"`
	EventAbstract    string `json:"eventAbstract"`
	StartTime        string `json:"startTime"`
	EndTime          string `json:"endTime"`
	Status           string `json:"status"`
	PublishToWebsite bool   `json:"publishToWebsite"`
	Notes            string `json:"notes"`
}

func (r scheduleRequest) toInput() application.ScheduleInput {
	return application.ScheduleInput{
		SubmissionID:     r.SubmissionID,
		RoomID:           r.RoomID,
		EventTitle:       r.EventTitle,
		EventSpeaker:     r.EventSpeaker,
		EventAffiliation: r.EventAffiliation,
		EventAbstract:    r.EventAbstract,
		Start:            parseTime(r.StartTime),
		End:              parseTime(r.EndTime),
		Status:           r.Status,
		PublishToWebsite: r.PublishToWebsite,
		Notes:            r.Notes,
	}
}

type schedulePatchRequest struct {
	SubmissionID     *int64  `json:"submissionId"`
	RoomID           *int64  `json:"roomId"`
	EventTitle       *string `json:"eventTitle"`
	EventSpeaker     *string `json:"eventSpeaker"`
	EventAffiliation *string `json:"eventAffiliation"`
	EventAbstract    *string `json:"eventAbstract"`
	StartTime        *string `json:"startTime"`
	EndTime          *string `json:"endTime"`
	Status           *string `json:"status"`
	PublishToWebsite *bool   `json:"publishToWebsite"`
	Notes            *string `json:"notes"`
}

func (r schedulePatchRequest) toPatch() persistence.ScheduledTalkPatch {
	patch := persistence.ScheduledTalkPatch{
		SubmissionID:     r.SubmissionID,
		RoomID:           r.RoomID,
		EventTitle:       r.EventTitle,
		EventSpeaker:     r.EventSpeaker,
		EventAffiliation: r.EventAffiliation,
		EventAbstract:    r.EventAbstract,
		Status:           r.Status,
		PublishToWebsite: r.PublishToWebsite,
		Notes:            r.Notes,
	}
	if r.StartTime != nil {
		start := parseTime(*r.StartTime)
		patch.Start = &start
	}
	if r.EndTime != nil {
		end := parseTime(*r.EndTime)
		patch.End = &end
	}
	return patch
}

type conflictCheckRequest struct {
	RoomID    int64  `json:"roomId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	ExcludeID int64  `json:"excludeId"`
}

type conflictCheckResponse struct {
	HasConflict bool               `json:"hasConflict"`
	Conflicts   []scheduledTalkDTO `json:"conflicts"`
}
