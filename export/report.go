// Package export renders committee events as the reconciliation report and
// delivers it to the configured sinks.
package export

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"hearingwatch/types"
)

const dateLayout = "2006-01-02"

// Header is the first report row. Status stays the 7th column.
var Header = []string{
	"Chamber",
	"Committee Name",
	"Event ID",
	"Event Date",
	"Event Type",
	"Title",
	"Status",
	"YouTube Link",
	"Event Link",
	"Published Date",
}

// Rows renders events in the given order. Committees are looked up by
// thomas_id; an unknown committee leaves chamber and name empty.
func Rows(events []*types.CommitteeEvent, committees map[string]types.Committee) [][]string {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		c := committees[e.CommitteeID]
		rows = append(rows, []string{
			c.Type,
			c.Name,
			strconv.FormatInt(e.EventID, 10),
			meetingDay(e),
			types.EventTypeLabel(e.EventType),
			e.Title,
			types.Classify(e).String(),
			e.YouTubeLink(),
			e.CommitteeEventURL,
			publishedDay(e),
		})
	}
	return rows
}

func meetingDay(e *types.CommitteeEvent) string {
	if e.MeetingDate == nil || e.MeetingDate.IsZero() {
		return ""
	}
	return e.MeetingDate.Format(dateLayout)
}

func publishedDay(e *types.CommitteeEvent) string {
	if e.PublishedDate.IsZero() {
		return e.PublishedDateRaw
	}
	return e.PublishedDate.Format(dateLayout)
}

// Render returns the full report, header included, as CSV.
func Render(events []*types.CommitteeEvent, committees map[string]types.Committee) []byte {
	var buf bytes.Buffer
	_ = WriteCSV(&buf, append([][]string{Header}, Rows(events, committees)...))
	return buf.Bytes()
}

// WriteCSV writes records with every field quoted.
func WriteCSV(w io.Writer, records [][]string) error {
	var b strings.Builder
	for _, record := range records {
		b.Reset()
		for i, field := range record {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(field, `"`, `""`))
			b.WriteByte('"')
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}
