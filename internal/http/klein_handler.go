package http

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/example/talk-scheduler/internal/export"
)

// kleinMaxUploadBytes caps converter uploads at 10 MB.
const kleinMaxUploadBytes = 10 << 20

type KleinHandler struct {
	responder responder
}

func NewKleinHandler(logger *slog.Logger) *KleinHandler {
	return &KleinHandler{responder: newResponder(logger)}
}

// Convert accepts a multipart upload under the "file" field, parses the
// schedule workbook and answers with the event-app import workbook.
func (h *KleinHandler) Convert(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, kleinMaxUploadBytes)
	if err := r.ParseMultipartForm(kleinMaxUploadBytes); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errNoFileUploaded)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errNoFileUploaded)
		return
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".xlsx", ".xls":
	default:
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errNotExcelFile)
		return
	}

	activities, err := export.ParseKleinSchedule(file)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("Excel file is empty or invalid"))
		return
	}
	if len(activities) == 0 {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("No valid activities found in the schedule"))
		return
	}

	var buf bytes.Buffer
	if err := export.WriteActivities(&buf, activities); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename=ProgramImport.xlsx`)
	if _, err := buf.WriteTo(w); err != nil {
		h.responder.loggerFor(r.Context()).ErrorContext(r.Context(), "failed to stream workbook", "error", err)
	}
}
