package course

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const scheduleDateLayout = "01/02/2006"

// scheduleEntry is one row of the course schedule CSV.
type scheduleEntry struct {
	Date              time.Time
	Session           string
	Topics            string
	Speakers          string
	TechAssignment    string
	AnalystAssignment string
}

func (e scheduleEntry) assignment(track string) string {
	if strings.EqualFold(track, "Analyst") {
		return e.AnalystAssignment
	}
	return e.TechAssignment
}

// loadSchedule reads and parses the schedule on every call. Rows that fail to
// parse are skipped rather than failing the whole schedule.
func loadSchedule(fileSys afero.Fs, path string) ([]scheduleEntry, error) {
	file, err := fileSys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schedule: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule: %w", err)
	}

	entries := make([]scheduleEntry, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			// header row
			continue
		}

		date, err := time.Parse(scheduleDateLayout, strings.TrimSpace(row[0]))
		if err != nil {
			continue
		}

		entry := scheduleEntry{Date: date, Session: strings.TrimSpace(row[1])}
		if len(row) > 2 {
			entry.Topics = strings.TrimSpace(row[2])
		}
		if len(row) > 3 {
			entry.Speakers = strings.TrimSpace(row[3])
		}
		if len(row) > 4 {
			entry.TechAssignment = strings.TrimSpace(row[4])
		}
		if len(row) > 5 {
			entry.AnalystAssignment = strings.TrimSpace(row[5])
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// upcoming returns entries on or after the given day in schedule order.
func upcoming(entries []scheduleEntry, after time.Time) []scheduleEntry {
	day := after.Truncate(24 * time.Hour)
	var future []scheduleEntry
	for _, entry := range entries {
		if !entry.Date.Before(day) {
			future = append(future, entry)
		}
	}
	return future
}

// within returns upcoming entries inside the given window.
func within(entries []scheduleEntry, after time.Time, window time.Duration) []scheduleEntry {
	var inside []scheduleEntry
	for _, entry := range upcoming(entries, after) {
		if entry.Date.Sub(after) <= window {
			inside = append(inside, entry)
		}
	}
	return inside
}

func describeEntries(entries []scheduleEntry) string {
	var builder strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&builder, "%s — %s", entry.Date.Format(scheduleDateLayout), entry.Session)
		if entry.Topics != "" {
			fmt.Fprintf(&builder, ": %s", entry.Topics)
		}
		if entry.Speakers != "" {
			fmt.Fprintf(&builder, " (speakers: %s)", entry.Speakers)
		}
		builder.WriteString("\n")
	}
	return builder.String()
}
