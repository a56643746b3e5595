package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/talk-scheduler/internal/persistence"
)

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func reopen(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	value, err := f.GetCellValue(sheet, cell)
	if err != nil {
		t.Fatalf("get cell %s: %v", cell, err)
	}
	return value
}

func TestWriteSubmissions(t *testing.T) {
	submissions := []persistence.Submission{
		{
			ID:          7,
			FirstName:   "Ada",
			LastName:    "Lovelace",
			Email:       "ada@example.org",
			SendCopy:    true,
			Title:       "Notes on the Analytical Engine",
			Abstract:    "A survey of number weaving.",
			Affiliation: "University of London",
			Questions:   strPtr("Is there a projector?"),
			SubmittedAt: time.Date(2026, time.February, 10, 14, 30, 0, 0, time.UTC),
		},
		{
			ID:          8,
			FirstName:   "Grace",
			LastName:    "Hopper",
			Email:       "grace@example.org",
			Title:       "Compilers",
			Abstract:    "On automatic programming.",
			Affiliation: "Navy",
			SubmittedAt: time.Date(2026, time.February, 11, 9, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	if err := WriteSubmissions(&buf, submissions); err != nil {
		t.Fatalf("WriteSubmissions returned error: %v", err)
	}

	f := reopen(t, &buf)
	const sheet = "Talk Submissions"

	if got := cellValue(t, f, sheet, "A1"); got != "ID" {
		t.Fatalf("unexpected header %q", got)
	}
	if got := cellValue(t, f, sheet, "J1"); got != "Submitted At" {
		t.Fatalf("unexpected header %q", got)
	}
	if got := cellValue(t, f, sheet, "B2"); got != "Ada" {
		t.Fatalf("unexpected first name %q", got)
	}
	if got := cellValue(t, f, sheet, "I2"); got != "Yes" {
		t.Fatalf("unexpected send copy %q", got)
	}
	if got := cellValue(t, f, sheet, "I3"); got != "No" {
		t.Fatalf("unexpected send copy %q", got)
	}
	if got := cellValue(t, f, sheet, "J2"); got != "February 10, 2026 2:30 PM" {
		t.Fatalf("unexpected submitted at %q", got)
	}
	if got := cellValue(t, f, sheet, "H3"); got != "" {
		t.Fatalf("expected empty questions, got %q", got)
	}
}

func TestWriteSchedule(t *testing.T) {
	talks := []persistence.ScheduledTalk{
		{
			ID:               1,
			SubmissionID:     int64Ptr(7),
			RoomID:           1,
			Start:            time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC),
			End:              time.Date(2026, time.June, 15, 11, 0, 0, 0, time.UTC),
			Status:           "scheduled",
			PublishToWebsite: true,
			SpeakerFirstName: strPtr("Ada"),
			SpeakerLastName:  strPtr("Lovelace"),
			TalkTitle:        strPtr("Notes on the Analytical Engine"),
			TalkAbstract:     strPtr("A survey of number weaving."),
			TalkAffiliation:  strPtr("University of London"),
			RoomName:         strPtr("Aula"),
		},
		{
			ID:         2,
			RoomID:     2,
			Start:      time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC),
			End:        time.Date(2026, time.June, 15, 13, 0, 0, 0, time.UTC),
			Status:     "scheduled",
			EventTitle: strPtr("Lunch"),
			RoomName:   strPtr("Foyer"),
		},
	}

	var buf bytes.Buffer
	if err := WriteSchedule(&buf, talks); err != nil {
		t.Fatalf("WriteSchedule returned error: %v", err)
	}

	f := reopen(t, &buf)
	const sheet = "Schedule"

	if got := cellValue(t, f, sheet, "A2"); got != "6/15/2026, 10:00:00 AM" {
		t.Fatalf("unexpected start %q", got)
	}
	if got := cellValue(t, f, sheet, "C2"); got != "Ada Lovelace" {
		t.Fatalf("unexpected speaker %q", got)
	}
	if got := cellValue(t, f, sheet, "H2"); got != "website" {
		t.Fatalf("unexpected tag %q", got)
	}
	if got := cellValue(t, f, sheet, "C3"); got != "" {
		t.Fatalf("expected empty speaker for event row, got %q", got)
	}
	if got := cellValue(t, f, sheet, "D3"); got != "Lunch" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := cellValue(t, f, sheet, "H3"); got != "" {
		t.Fatalf("expected empty tag, got %q", got)
	}
}

func TestWriteEventApp(t *testing.T) {
	talks := []persistence.ScheduledTalk{
		{
			ID:               1,
			SubmissionID:     int64Ptr(7),
			RoomID:           1,
			Start:            time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC),
			End:              time.Date(2026, time.June, 15, 11, 0, 0, 0, time.UTC),
			Status:           "published",
			PublishToWebsite: true,
			SpeakerFirstName: strPtr("Ada"),
			SpeakerLastName:  strPtr("Lovelace"),
			TalkTitle:        strPtr("Notes on the Analytical Engine"),
			TalkAbstract:     strPtr("A survey of number weaving."),
			TalkAffiliation:  strPtr("University of London"),
			RoomName:         strPtr("Aula"),
		},
		{
			ID:         2,
			RoomID:     2,
			Start:      time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC),
			End:        time.Date(2026, time.June, 15, 13, 0, 0, 0, time.UTC),
			Status:     "scheduled",
			EventTitle: strPtr("Lunch"),
		},
	}

	var buf bytes.Buffer
	if err := WriteEventApp(&buf, talks); err != nil {
		t.Fatalf("WriteEventApp returned error: %v", err)
	}

	f := reopen(t, &buf)
	const sheet = "Sheet1"

	if got := cellValue(t, f, sheet, "E2"); got != "Ada Lovelace: Notes on the Analytical Engine" {
		t.Fatalf("unexpected title %q", got)
	}
	want := "<b>Speaker</b><br/>Ada Lovelace, University of London<br/><br/><b>Abstract</b><br/>A survey of number weaving."
	if got := cellValue(t, f, sheet, "F2"); got != want {
		t.Fatalf("unexpected description %q", got)
	}
	if got := cellValue(t, f, sheet, "A2"); got != "2026-06-15" {
		t.Fatalf("unexpected start date %q", got)
	}
	if got := cellValue(t, f, sheet, "B2"); got != "10:00" {
		t.Fatalf("unexpected start time %q", got)
	}
	if got := cellValue(t, f, sheet, "H2"); got != "website" {
		t.Fatalf("unexpected tag %q", got)
	}

	// The unpublished row must not be present.
	if got := cellValue(t, f, sheet, "E3"); got != "" {
		t.Fatalf("expected only published rows, found %q", got)
	}
}
