// Package export serializes the rows Coordinator's GetActivities and
// GetPomodoroSessions queries already return, in CSV or JSON, with no
// format-specific business logic of its own — per the Non-goals, exporting
// is a thin encoding step over data the core already produces.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kodeflow/tempod/internal/domain"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Activities writes activities to w in the given format.
func Activities(w io.Writer, format Format, activities []*domain.Activity) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(activities)
	case FormatCSV:
		return activitiesCSV(w, activities)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func activitiesCSV(w io.Writer, activities []*domain.Activity) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"id", "app_name", "window_title", "start_time", "duration_seconds", "category", "is_productive", "project_id"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, a := range activities {
		projectID := ""
		if a.ProjectID != nil {
			projectID = strconv.FormatInt(*a.ProjectID, 10)
		}
		row := []string{
			strconv.FormatInt(a.ID, 10),
			a.AppName,
			a.WindowTitle,
			a.StartTime.Format(time.RFC3339),
			strconv.FormatFloat(a.Duration.Seconds(), 'f', -1, 64),
			a.Category,
			strconv.FormatBool(a.IsProductive),
			projectID,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

// PomodoroSessions writes sessions to w in the given format.
func PomodoroSessions(w io.Writer, format Format, sessions []*domain.PomodoroSession) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sessions)
	case FormatCSV:
		return sessionsCSV(w, sessions)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func sessionsCSV(w io.Writer, sessions []*domain.PomodoroSession) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"id", "start_time", "end_time", "duration_seconds", "status", "break_kind", "project_id", "tags"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range sessions {
		endTime := ""
		if s.EndTime != nil {
			endTime = s.EndTime.Format(time.RFC3339)
		}
		projectID := ""
		if s.ProjectID != nil {
			projectID = strconv.FormatInt(*s.ProjectID, 10)
		}
		row := []string{
			strconv.FormatInt(s.ID, 10),
			s.StartTime.Format(time.RFC3339),
			endTime,
			strconv.FormatFloat(s.Duration.Seconds(), 'f', -1, 64),
			string(s.Status),
			string(s.BreakKind),
			projectID,
			joinTags(s.Tags),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

func joinTags(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += ";"
		}
		out += t
	}
	return out
}
