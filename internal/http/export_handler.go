package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/talk-scheduler/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	submissions submissionService
	schedules   scheduleService
	now         func() time.Time
	responder   responder
}

func NewExportHandler(submissions submissionService, schedules scheduleService, now func() time.Time, logger *slog.Logger) *ExportHandler {
	if now == nil {
		now = time.Now
	}
	return &ExportHandler{
		submissions: submissions,
		schedules:   schedules,
		now:         now,
		responder:   newResponder(logger),
	}
}

// Submissions streams the submission dump workbook.
func (h *ExportHandler) Submissions(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.submissions == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	submissions, err := h.submissions.List(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteSubmissions(&buf, submissions); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.sendWorkbook(w, r, &buf, export.ExportFilename("Talk_Submissions", h.now()))
}

// Schedule streams the schedule dump workbook.
func (h *ExportHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.schedules == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	talks, err := h.schedules.ListScheduled(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteSchedule(&buf, talks); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.sendWorkbook(w, r, &buf, export.ExportFilename("Schedule", h.now()))
}

// EventApp streams the event-app import workbook, published rows only.
func (h *ExportHandler) EventApp(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.schedules == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	talks, err := h.schedules.ListScheduled(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteEventApp(&buf, talks); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.sendWorkbook(w, r, &buf, export.ExportFilename("EventApp_Schedule", h.now()))
}

func (h *ExportHandler) sendWorkbook(w http.ResponseWriter, r *http.Request, buf *bytes.Buffer, filename string) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := buf.WriteTo(w); err != nil {
		h.responder.loggerFor(r.Context()).ErrorContext(r.Context(), "failed to stream workbook", "error", err)
	}
}
