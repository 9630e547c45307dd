package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hearingwatch/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

var committeeIndex = map[string]types.Committee{
	"HSAG": {Type: "house", Name: "House Committee on Agriculture", ThomasID: "HSAG"},
}

func sampleEvents() []*types.CommitteeEvent {
	est := time.FixedZone("EST", -5*3600)
	meeting := time.Date(2021, 3, 3, 22, 30, 0, 0, est)
	return []*types.CommitteeEvent{
		{
			CommitteeID:       "HSAG",
			EventID:           111906,
			EventType:         "HMKP",
			MeetingDate:       &meeting,
			PublishedDate:     time.Date(2021, 2, 24, 14, 32, 57, 0, est),
			Title:             `Markup of "H.R. 1"`,
			CommitteeEventURL: "https://docs.house.gov/Committee/Calendar/ByEvent.aspx?EventID=111906",
			YoutubeID:         "abc123",
			TaggedIn:          types.TaggedInTitle,
		},
		{
			CommitteeID:       "HSXX",
			EventID:           7,
			EventType:         "ZZZZ",
			PublishedDateRaw:  "sometime soon",
			Title:             "Member Briefing (Closed)",
			ClosedOrPostponed: true,
			CommitteeEventURL: "https://docs.house.gov/Committee/Calendar/ByEvent.aspx?EventID=7",
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleEvents(), committeeIndex)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{
		"house",
		"House Committee on Agriculture",
		"111906",
		"2021-03-03",
		"Markup",
		`Markup of "H.R. 1"`,
		"Event ID correctly on video",
		"https://www.youtube.com/watch?v=abc123",
		"https://docs.house.gov/Committee/Calendar/ByEvent.aspx?EventID=111906",
		"2021-02-24",
	}, rows[0])

	assert.Equal(t, []string{
		"", "", "7", "", "ZZZZ", "Member Briefing (Closed)", "No video expected", "",
		"https://docs.house.gov/Committee/Calendar/ByEvent.aspx?EventID=7", "sometime soon",
	}, rows[1])
}

func TestRenderQuotesEveryField(t *testing.T) {
	report := string(Render(sampleEvents()[:1], committeeIndex))

	lines := strings.Split(strings.TrimSuffix(report, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Chamber","Committee Name","Event ID","Event Date","Event Type","Title","Status","YouTube Link","Event Link","Published Date"`, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `"house","House Committee on Agriculture","111906","2021-03-03","Markup","Markup of ""H.R. 1""",`))

	records, err := csv.NewReader(strings.NewReader(report)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, `Markup of "H.R. 1"`, records[1][5])
}

func TestFileSinkReplacesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tmp", "export.csv")
	sink := FileSink{Path: path}

	require.NoError(t, sink.Write(context.Background(), []byte("first\n")))
	require.NoError(t, sink.Write(context.Background(), []byte("second\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))
}

type fakePutter struct {
	key, contentType string
	body             []byte
	err              error
}

func (f *fakePutter) Put(_ context.Context, key string, body io.Reader, contentType string) error {
	if f.err != nil {
		return f.err
	}
	f.key, f.contentType = key, contentType
	f.body, _ = io.ReadAll(body)
	return nil
}

func TestObjectSink(t *testing.T) {
	putter := &fakePutter{}
	sink := ObjectSink{Store: putter, Key: "reports/export.csv"}

	require.NoError(t, sink.Write(context.Background(), []byte("data")))
	assert.Equal(t, "reports/export.csv", putter.key)
	assert.Equal(t, "text/csv", putter.contentType)
	assert.Equal(t, "data", string(putter.body))
}

func TestSheetsSinkPastesAtOrigin(t *testing.T) {
	var (
		gotPath string
		gotBody map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","replies":[{}]}`))
	}))
	defer srv.Close()

	sink, err := NewSheetsSinkWithOptions(context.Background(), "sheet-1", 0,
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	require.NoError(t, sink.Write(context.Background(), []byte(`"a","b"`+"\n")))
	assert.Equal(t, "/v4/spreadsheets/sheet-1:batchUpdate", gotPath)

	requests := gotBody["requests"].([]any)
	paste := requests[0].(map[string]any)["pasteData"].(map[string]any)
	coordinate := paste["coordinate"].(map[string]any)

	assert.Equal(t, `"a","b"`+"\n", paste["data"])
	assert.Equal(t, "PASTE_VALUES", paste["type"])
	assert.Equal(t, ",", paste["delimiter"])
	assert.Equal(t, float64(0), coordinate["sheetId"])
	assert.Equal(t, float64(0), coordinate["rowIndex"])
	assert.Equal(t, float64(0), coordinate["columnIndex"])
}

type recordingSink struct {
	name string
	got  []byte
	err  error
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Write(_ context.Context, report []byte) error {
	s.got = report
	return s.err
}

func TestExporterAttemptsEverySink(t *testing.T) {
	broken := &recordingSink{name: "broken", err: errors.New("access denied")}
	ok := &recordingSink{name: "ok"}

	err := NewExporter(nil, broken, ok).Export(context.Background(), sampleEvents(), committeeIndex)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken sink: access denied")
	assert.NotEmpty(t, ok.got)
	assert.Equal(t, broken.got, ok.got)
}

func TestExporterWithoutSinks(t *testing.T) {
	assert.NoError(t, NewExporter(nil).Export(context.Background(), sampleEvents(), committeeIndex))
}
