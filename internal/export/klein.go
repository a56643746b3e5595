package export

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Activity is one parsed schedule row in the event-app import shape. All
// fields are plain text.
type Activity struct {
	StartDate   string
	StartTime   string
	EndDate     string
	EndTime     string
	Title       string
	Description string
	Track       string
	Tags        string
	Location    string
	Groups      string
}

var (
	// kleinDatePattern matches date header rows such as "Tisdag 13 januari".
	kleinDatePattern = regexp.MustCompile(`(?i)(\d+)\s+januari`)
	// kleinTimePattern matches the three time notations used in the source
	// sheets: a range ("08.00-09.00", "09:00–09:30"), an open start
	// ("Från 15.00") and a bare time ("10.00").
	kleinTimePattern = regexp.MustCompile(`(\d{1,2})[:.](\d{2})\s*[-–]\s*(\d{1,2})[:.](\d{2})|Från\s+(\d{1,2})[:.](\d{2})|^(\d{1,2})[:.](\d{2})$`)
)

// ParseKleinSchedule reads the first worksheet of an uploaded workbook and
// extracts the activities it describes. Rows that match none of the known
// patterns are skipped, never errors.
func ParseKleinSchedule(r io.Reader) ([]Activity, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	var activities []Activity
	currentDate := ""

	for _, row := range rows {
		first := cellAt(row, 0)
		if first == "" {
			continue
		}

		if m := kleinDatePattern.FindStringSubmatch(first); m != nil {
			day, _ := strconv.Atoi(m[1])
			currentDate = fmt.Sprintf("2026-01-%02d", day)
			continue
		}

		lower := strings.ToLower(first)
		if lower == "tid" || lower == "nan" {
			continue
		}

		m := kleinTimePattern.FindStringSubmatch(first)
		if m == nil || currentDate == "" {
			continue
		}
		startTime, endTime, ok := kleinInterval(m)
		if !ok {
			continue
		}

		title := cellAt(row, 1)
		if title == "" || strings.EqualFold(title, "nan") {
			continue
		}
		location := cellAt(row, 2)
		if strings.EqualFold(location, "nan") {
			location = ""
		}
		speaker := cellAt(row, 3)
		abstract := cellAt(row, 4)

		description := ""
		if speaker != "" && !strings.EqualFold(speaker, "nan") {
			description = speaker
		}
		if abstract != "" && !strings.EqualFold(abstract, "nan") {
			if description != "" {
				description += "\n" + abstract
			} else {
				description = abstract
			}
		}

		activities = append(activities, Activity{
			StartDate:   currentDate,
			StartTime:   startTime,
			EndDate:     currentDate,
			EndTime:     endTime,
			Title:       title,
			Description: description,
			Location:    location,
		})
	}

	return activities, nil
}

// kleinInterval derives the start and end clock times from a time pattern
// match. An open start runs one hour; a bare time runs fifteen minutes.
func kleinInterval(m []string) (string, string, bool) {
	switch {
	case m[1] != "":
		return clock(m[1], m[2]), clock(m[3], m[4]), true
	case m[5] != "":
		hour, _ := strconv.Atoi(m[5])
		return clock(m[5], m[6]), fmt.Sprintf("%02d:%s", (hour+1)%24, m[6]), true
	case m[7] != "":
		hour, _ := strconv.Atoi(m[7])
		minute, _ := strconv.Atoi(m[8])
		minute += 15
		if minute >= 60 {
			hour++
			minute -= 60
		}
		return clock(m[7], m[8]), fmt.Sprintf("%02d:%02d", hour, minute), true
	}
	return "", "", false
}

func clock(hour, minute string) string {
	h, _ := strconv.Atoi(hour)
	return fmt.Sprintf("%02d:%s", h, minute)
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// WriteActivities renders parsed activities as the fixed 10-column event-app
// sheet with every cell text-formatted.
func WriteActivities(w io.Writer, activities []Activity) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	headers := eventAppHeaders()
	widths := []float64{15, 15, 15, 15, 40, 50, 10, 15, 18, 34}
	if err := setUpSheet(f, sheet, headers, widths); err != nil {
		return err
	}

	for i, activity := range activities {
		row := []any{
			activity.StartDate,
			activity.StartTime,
			activity.EndDate,
			activity.EndTime,
			activity.Title,
			activity.Description,
			activity.Track,
			activity.Tags,
			activity.Location,
			activity.Groups,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	textFmt := "@"
	textStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &textFmt})
	if err != nil {
		return fmt.Errorf("text style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return fmt.Errorf("column name: %w", err)
	}
	end := fmt.Sprintf("%s%d", lastCol, len(activities)+1)
	if err := f.SetCellStyle(sheet, "A1", end, textStyle); err != nil {
		return fmt.Errorf("style cells: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
