package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/talk-scheduler/internal/application"
	"github.com/example/talk-scheduler/internal/persistence"
)

type submissionService interface {
	Submit(ctx context.Context, input application.SubmissionInput) (persistence.Submission, error)
	List(ctx context.Context) ([]persistence.Submission, error)
	Get(ctx context.Context, id int64) (persistence.Submission, error)
	Delete(ctx context.Context, id int64) error
}

type SubmissionHandler struct {
	service   submissionService
	responder responder
}

func NewSubmissionHandler(service submissionService, logger *slog.Logger) *SubmissionHandler {
	return &SubmissionHandler{service: service, responder: newResponder(logger)}
}

// Submit handles the public proposal form.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	input, ok := readSubmissionInput(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	submission, err := h.service.Submit(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toSubmissionDTO(submission))
}

// Dashboard lists every submission with a count.
func (h *SubmissionHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	submissions, err := h.service.List(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, dashboardResponse{
		Submissions: toSubmissionDTOs(submissions),
		Count:       len(submissions),
	})
}

// View returns a single submission.
func (h *SubmissionHandler) View(w http.ResponseWriter, r *http.Request, rawID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, err := parseID(rawID)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	submission, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSubmissionDTO(submission))
}

// Delete removes a submission and sends the admin back to the dashboard.
func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request, rawID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, err := parseID(rawID)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	http.Redirect(w, r, "/admin/dashboard?deleted=true", http.StatusFound)
}

type dashboardResponse struct {
	Submissions []submissionDTO `json:"submissions"`
	Count       int             `json:"count"`
}

type submissionRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	SendCopy    any    `json:"sendCopy"`
	TalkTitle   string `json:"talkTitle"`
	Abstract    string `json:"talkAbstract"`
	Affiliation string `json:"affiliation"`
	Questions   string `json:"questions"`
}

func readSubmissionInput(r *http.Request) (application.SubmissionInput, bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var req submissionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return application.SubmissionInput{}, false
		}
		return application.SubmissionInput{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			SendCopy:    parseCheckbox(req.SendCopy),
			Title:       req.TalkTitle,
			Abstract:    req.Abstract,
			Affiliation: req.Affiliation,
			Questions:   req.Questions,
		}, true
	}

	if err := r.ParseForm(); err != nil {
		return application.SubmissionInput{}, false
	}
	return application.SubmissionInput{
		FirstName:   r.PostFormValue("firstName"),
		LastName:    r.PostFormValue("lastName"),
		Email:       r.PostFormValue("email"),
		SendCopy:    parseCheckbox(r.PostFormValue("sendCopy")),
		Title:       r.PostFormValue("talkTitle"),
		Abstract:    r.PostFormValue("talkAbstract"),
		Affiliation: r.PostFormValue("affiliation"),
		Questions:   r.PostFormValue("questions"),
	}, true
}

// parseCheckbox accepts the shapes a checkbox arrives in: a bool from JSON
// clients, "on" from plain HTML forms, "true"/"1" from scripts.
func parseCheckbox(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "on", "true", "1", "yes":
			return true
		}
	}
	return false
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
