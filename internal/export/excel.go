// Package export renders submissions and the schedule as xlsx workbooks and
// converts third-party schedule workbooks into the event-app import format.
// Column order in every sheet is a compatibility contract with downstream
// spreadsheet consumers.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/talk-scheduler/internal/persistence"
)

const (
	submittedAtLayout = "January 2, 2006 3:04 PM"
	scheduleLayout    = "1/2/2006, 3:04:05 PM"

	headerFillColor = "D4AF37"
)

// WriteSubmissions renders all submissions as a single-sheet workbook.
func WriteSubmissions(w io.Writer, submissions []persistence.Submission) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Talk Submissions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headers := []any{"ID", "First Name", "Last Name", "Email", "Affiliation", "Talk Title", "Abstract", "Questions", "Send Copy", "Submitted At"}
	widths := []float64{10, 20, 20, 30, 40, 50, 80, 50, 15, 25}
	if err := setUpSheet(f, sheet, headers, widths); err != nil {
		return err
	}
	if err := styleHeader(f, sheet, true); err != nil {
		return err
	}

	for i, submission := range submissions {
		questions := ""
		if submission.Questions != nil {
			questions = *submission.Questions
		}
		sendCopy := "No"
		if submission.SendCopy {
			sendCopy = "Yes"
		}
		row := []any{
			submission.ID,
			submission.FirstName,
			submission.LastName,
			submission.Email,
			submission.Affiliation,
			submission.Title,
			submission.Abstract,
			questions,
			sendCopy,
			submission.SubmittedAt.Format(submittedAtLayout),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	if err := wrapColumns(f, sheet, "G", "H"); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteSchedule renders every booking as a single-sheet workbook, one row per
// talk with resolved display fields.
func WriteSchedule(w io.Writer, talks []persistence.ScheduledTalk) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Schedule"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headers := []any{"Start", "End", "Speaker", "Title", "Affiliation", "Abstract", "Room", "Tag"}
	widths := []float64{20, 20, 30, 50, 40, 80, 30, 15}
	if err := setUpSheet(f, sheet, headers, widths); err != nil {
		return err
	}
	if err := styleHeader(f, sheet, true); err != nil {
		return err
	}

	for i, talk := range talks {
		display := resolveDisplay(talk)
		tag := ""
		if talk.PublishToWebsite {
			tag = "website"
		}
		row := []any{
			talk.Start.Format(scheduleLayout),
			talk.End.Format(scheduleLayout),
			display.Speaker,
			display.Title,
			display.Affiliation,
			display.Abstract,
			deref(talk.RoomName),
			tag,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	if err := wrapColumns(f, sheet, "D", "F"); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteEventApp renders published bookings in the event-app import format.
// Date and time cells carry real date values with display formats so the
// importing application can parse them.
func WriteEventApp(w io.Writer, talks []persistence.ScheduledTalk) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"

	if err := setUpSheet(f, sheet, eventAppHeaders(), eventAppWidths()); err != nil {
		return err
	}
	if err := styleHeader(f, sheet, false); err != nil {
		return err
	}

	dateFmt := "yyyy-mm-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}
	timeFmt := "hh:mm"
	timeStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &timeFmt})
	if err != nil {
		return fmt.Errorf("time style: %w", err)
	}

	rowNum := 1
	for _, talk := range talks {
		if talk.Status != "published" {
			continue
		}
		rowNum++

		display := resolveDisplay(talk)
		title := display.Title
		if display.Speaker != "" {
			title = display.Speaker + ": " + display.Title
		}
		tag := ""
		if talk.PublishToWebsite {
			tag = "website"
		}

		row := []any{
			talk.Start,
			talk.Start,
			talk.End,
			talk.End,
			title,
			eventAppDescription(display),
			"",
			tag,
			deref(talk.RoomName),
			"",
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}

		for col, style := range map[string]int{"A": dateStyle, "B": timeStyle, "C": dateStyle, "D": timeStyle} {
			cell := fmt.Sprintf("%s%d", col, rowNum)
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return fmt.Errorf("style cell: %w", err)
			}
		}
	}

	if err := wrapColumns(f, sheet, "E", "F"); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// displayFields is the resolved speaker/title/affiliation/abstract set used
// by the schedule-shaped exports.
type displayFields struct {
	Speaker     string
	Title       string
	Affiliation string
	Abstract    string
}

// resolveDisplay prefers the linked submission's fields and falls back to the
// inline event fields for free-standing entries.
func resolveDisplay(talk persistence.ScheduledTalk) displayFields {
	if talk.SubmissionID == nil {
		return displayFields{
			Speaker:     deref(talk.EventSpeaker),
			Title:       deref(talk.EventTitle),
			Affiliation: deref(talk.EventAffiliation),
			Abstract:    deref(talk.EventAbstract),
		}
	}

	speaker := deref(talk.SpeakerFirstName)
	if last := deref(talk.SpeakerLastName); last != "" {
		if speaker != "" {
			speaker += " "
		}
		speaker += last
	}
	return displayFields{
		Speaker:     speaker,
		Title:       deref(talk.TalkTitle),
		Affiliation: deref(talk.TalkAffiliation),
		Abstract:    deref(talk.TalkAbstract),
	}
}

func eventAppDescription(display displayFields) string {
	description := ""
	if display.Speaker != "" {
		description = "<b>Speaker</b><br/>" + display.Speaker
		if display.Affiliation != "" {
			description += ", " + display.Affiliation
		}
		description += "<br/><br/>"
	}
	if display.Abstract != "" {
		description += "<b>Abstract</b><br/>" + display.Abstract
	}
	return description
}

func eventAppHeaders() []any {
	return []any{"Start date", "Start time", "End date", "End time", "Title", "Description", "Track", "Tag(s)", "Room location", "Group(s)"}
}

func eventAppWidths() []float64 {
	return []float64{15, 12, 15, 12, 60, 80, 15, 15, 30, 15}
}

func setUpSheet(f *excelize.File, sheet string, headers []any, widths []float64) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("set width: %w", err)
		}
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, fill bool) error {
	style := &excelize.Style{Font: &excelize.Font{Bold: true}}
	if fill {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}}
	}
	styleID, err := f.NewStyle(style)
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, styleID); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	return nil
}

func wrapColumns(f *excelize.File, sheet string, cols ...string) error {
	styleID, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return fmt.Errorf("wrap style: %w", err)
	}
	for _, col := range cols {
		if err := f.SetColStyle(sheet, col, styleID); err != nil {
			return fmt.Errorf("wrap column %s: %w", col, err)
		}
	}
	return nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// ExportFilename builds a download filename carrying the export date.
func ExportFilename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", prefix, now.Format("2006-01-02"))
}
