package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/talk-scheduler/internal/application"
	"github.com/example/talk-scheduler/internal/persistence"
	"github.com/example/talk-scheduler/internal/persistence/memory"
	"github.com/example/talk-scheduler/internal/session"
)

const testAdminPassword = "hunter2"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	if err := store.SeedRooms(context.Background(), []persistence.Room{
		{Name: "Aula", Building: "Main", Capacity: 120, Active: true},
		{Name: "Library", Building: "Annex", Capacity: 40, Active: true},
	}); err != nil {
		t.Fatalf("seed rooms: %v", err)
	}

	logger := discardLogger()
	var tokenCounter int
	tokens := func() string {
		tokenCounter++
		return fmt.Sprintf("test-token-%d", tokenCounter)
	}

	auth := application.NewAuthServiceWithLogger(testAdminPassword, session.NewStore(), tokens, nil, time.Hour, logger)
	submissions := application.NewSubmissionServiceWithLogger(store, logger)
	schedules := application.NewScheduleServiceWithLogger(store, store, store, nil, logger)

	router := NewRouter(RouterConfig{
		Auth:         NewAuthHandler(auth, logger),
		Submissions:  NewSubmissionHandler(submissions, logger),
		Schedules:    NewScheduleHandler(schedules, logger),
		Exports:      NewExportHandler(submissions, schedules, nil, logger),
		Klein:        NewKleinHandler(logger),
		RequireAdmin: RequireAdmin(auth),
		Middleware:   []func(http.Handler) http.Handler{RequestLogger(logger)},
	})
	return router, store
}

func login(t *testing.T, router http.Handler) *http.Cookie {
	t.Helper()

	form := url.Values{"password": {testAdminPassword}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("login status = %d, want %d", rec.Code, http.StatusFound)
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == SessionCookieName {
			return cookie
		}
	}
	t.Fatalf("login response carried no session cookie")
	return nil
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func validSubmissionPayload() map[string]any {
	return map[string]any{
		"firstName":    "Ada",
		"lastName":     "Lovelace",
		"email":        "ada@example.org",
		"sendCopy":     true,
		"talkTitle":    "Notes on the Analytical Engine",
		"talkAbstract": strings.Repeat("The engine weaves algebraic patterns. ", 3),
		"affiliation":  "University of London",
	}
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "ok" {
		t.Fatalf("unexpected body %v", body)
	}
	if body["timestamp"] == "" {
		t.Fatalf("expected timestamp")
	}
}

func TestSubmitEndpoint(t *testing.T) {
	t.Run("valid JSON submission", func(t *testing.T) {
		router, _ := newTestRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/api/submit", validSubmissionPayload(), nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
		}

		var body submissionDTO
		decodeBody(t, rec, &body)
		if body.ID == 0 || body.FirstName != "Ada" {
			t.Fatalf("unexpected body %+v", body)
		}
	})

	t.Run("form submission", func(t *testing.T) {
		router, _ := newTestRouter(t)

		form := url.Values{
			"firstName":    {"Grace"},
			"lastName":     {"Hopper"},
			"email":        {"grace@example.org"},
			"sendCopy":     {"on"},
			"talkTitle":    {"Compilers"},
			"talkAbstract": {strings.Repeat("Automatic programming for everyone. ", 3)},
			"affiliation":  {"Navy"},
		}
		req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
		}
		var body submissionDTO
		decodeBody(t, rec, &body)
		if !body.SendCopy {
			t.Fatalf("expected send_copy to be true")
		}
	})

	t.Run("validation failure", func(t *testing.T) {
		router, _ := newTestRouter(t)

		payload := validSubmissionPayload()
		payload["email"] = "not-an-email"
		payload["talkAbstract"] = "too short"

		rec := doJSON(t, router, http.MethodPost, "/api/submit", payload, nil)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}

		var body errorResponse
		decodeBody(t, rec, &body)
		if _, ok := body.Errors["email"]; !ok {
			t.Fatalf("expected email error, got %v", body.Errors)
		}
		if _, ok := body.Errors["talkAbstract"]; !ok {
			t.Fatalf("expected talkAbstract error, got %v", body.Errors)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		router, _ := newTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/api/submit", strings.NewReader("{nope"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestAdminGuard(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("redirects anonymous requests to login", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/admin/dashboard", nil, nil)
		if rec.Code != http.StatusFound {
			t.Fatalf("status = %d, want 302", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/admin/login" {
			t.Fatalf("redirect location = %q", loc)
		}
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		form := url.Values{"password": {"wrong"}}
		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("session cookie unlocks the admin area", func(t *testing.T) {
		cookie := login(t, router)

		rec := doJSON(t, router, http.MethodGet, "/admin/dashboard", nil, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var body dashboardResponse
		decodeBody(t, rec, &body)
		if body.Count != len(body.Submissions) {
			t.Fatalf("count %d does not match %d submissions", body.Count, len(body.Submissions))
		}
	})

	t.Run("logout invalidates the session", func(t *testing.T) {
		cookie := login(t, router)

		rec := doJSON(t, router, http.MethodGet, "/admin/logout", nil, cookie)
		if rec.Code != http.StatusFound {
			t.Fatalf("logout status = %d, want 302", rec.Code)
		}

		rec = doJSON(t, router, http.MethodGet, "/admin/dashboard", nil, cookie)
		if rec.Code != http.StatusFound {
			t.Fatalf("status = %d, want 302 after logout", rec.Code)
		}
	})
}

func TestSchedulingEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	cookie := login(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/submit", validSubmissionPayload(), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d", rec.Code)
	}
	var submitted submissionDTO
	decodeBody(t, rec, &submitted)

	t.Run("rooms", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/scheduling/rooms", nil, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var rooms []roomDTO
		decodeBody(t, rec, &rooms)
		if len(rooms) != 2 {
			t.Fatalf("expected 2 rooms, got %d", len(rooms))
		}
	})

	var scheduled scheduledTalkDTO
	t.Run("schedule a talk", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/scheduling/schedule", map[string]any{
			"submissionId": submitted.ID,
			"roomId":       1,
			"startTime":    "2026-06-15T10:00:00Z",
			"endTime":      "2026-06-15T11:00:00Z",
		}, cookie)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		decodeBody(t, rec, &scheduled)
		if scheduled.Status != "scheduled" {
			t.Fatalf("unexpected status %q", scheduled.Status)
		}
	})

	t.Run("unscheduled list shrinks", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/scheduling/unscheduled", nil, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var submissions []submissionDTO
		decodeBody(t, rec, &submissions)
		if len(submissions) != 0 {
			t.Fatalf("expected no unscheduled submissions, got %d", len(submissions))
		}
	})

	t.Run("check conflict", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/scheduling/check-conflict", map[string]any{
			"roomId":    1,
			"startTime": "2026-06-15T10:30:00Z",
			"endTime":   "2026-06-15T11:30:00Z",
		}, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var body conflictCheckResponse
		decodeBody(t, rec, &body)
		// The in-process store does not detect conflicts.
		if body.Conflicts == nil {
			t.Fatalf("expected conflicts array, got null")
		}
	})

	t.Run("patch booking", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/scheduling/schedule/%d", scheduled.ID), map[string]any{
			"status": "published",
		}, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var body scheduledTalkDTO
		decodeBody(t, rec, &body)
		if body.Status != "published" {
			t.Fatalf("unexpected status %q", body.Status)
		}
	})

	t.Run("invalid patch rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/scheduling/schedule/%d", scheduled.ID), map[string]any{
			"status": "archived",
		}, cookie)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
	})

	t.Run("delete booking", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/scheduling/schedule/%d", scheduled.ID), nil, cookie)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}

		rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/scheduling/schedule/%d", scheduled.ID), nil, cookie)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func TestExportEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	cookie := login(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/submit", validSubmissionPayload(), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d", rec.Code)
	}

	for _, path := range []string{"/admin/export", "/admin/scheduling/export", "/admin/scheduling/export-app"} {
		rec := doJSON(t, router, http.MethodGet, path, nil, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
		if got := rec.Header().Get("Content-Type"); got != xlsxContentType {
			t.Fatalf("%s content type = %q", path, got)
		}
		if _, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes())); err != nil {
			t.Fatalf("%s produced invalid workbook: %v", path, err)
		}
	}
}

func TestKleinConvertEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	cookie := login(t, router)

	buildUpload := func(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write form file: %v", err)
		}
		mw.Close()
		return &buf, mw.FormDataContentType()
	}

	kleinContent := func(t *testing.T) []byte {
		t.Helper()
		f := excelize.NewFile()
		defer f.Close()
		rows := [][]any{
			{"Tisdag 13 januari"},
			{"08.00-09.00", "Registrering", "Aulan"},
		}
		for i, row := range rows {
			if err := f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &row); err != nil {
				t.Fatalf("write row: %v", err)
			}
		}
		out, err := f.WriteToBuffer()
		if err != nil {
			t.Fatalf("write workbook: %v", err)
		}
		return out.Bytes()
	}

	t.Run("converts a valid workbook", func(t *testing.T) {
		body, contentType := buildUpload(t, "klein.xlsx", kleinContent(t))
		req := httptest.NewRequest(http.MethodPost, "/api/klein-converter/convert", body)
		req.Header.Set("Content-Type", contentType)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		if err != nil {
			t.Fatalf("invalid output workbook: %v", err)
		}
		defer f.Close()
		title, err := f.GetCellValue("Sheet1", "E2")
		if err != nil {
			t.Fatalf("read cell: %v", err)
		}
		if title != "Registrering" {
			t.Fatalf("unexpected title %q", title)
		}
	})

	t.Run("rejects non-excel uploads", func(t *testing.T) {
		body, contentType := buildUpload(t, "notes.txt", []byte("plain text"))
		req := httptest.NewRequest(http.MethodPost, "/api/klein-converter/convert", body)
		req.Header.Set("Content-Type", contentType)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("rejects empty schedules", func(t *testing.T) {
		f := excelize.NewFile()
		out, err := f.WriteToBuffer()
		f.Close()
		if err != nil {
			t.Fatalf("write workbook: %v", err)
		}

		body, contentType := buildUpload(t, "empty.xlsx", out.Bytes())
		req := httptest.NewRequest(http.MethodPost, "/api/klein-converter/convert", body)
		req.Header.Set("Content-Type", contentType)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}
