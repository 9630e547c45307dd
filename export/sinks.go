package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Sink receives the rendered report.
type Sink interface {
	Name() string
	Write(ctx context.Context, report []byte) error
}

// FileSink replaces a local file with the report.
type FileSink struct {
	Path string
}

func (s FileSink) Name() string { return "file" }

func (s FileSink) Write(_ context.Context, report []byte) error {
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, report, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("failed to replace export: %w", err)
	}
	return nil
}

// ObjectPutter is the object-store operation the S3 sink needs.
type ObjectPutter interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}

// ObjectSink uploads the report as a single object.
type ObjectSink struct {
	Store ObjectPutter
	Key   string
}

func (s ObjectSink) Name() string { return "s3" }

func (s ObjectSink) Write(ctx context.Context, report []byte) error {
	return s.Store.Put(ctx, s.Key, bytes.NewReader(report), "text/csv")
}

// SheetsSink pastes the report into the top-left cell of one sheet tab.
type SheetsSink struct {
	service       *sheets.Service
	spreadsheetID string
	sheetID       int64
}

// NewSheetsSink authenticates with a service-account key file.
func NewSheetsSink(ctx context.Context, keyPath, spreadsheetID string, sheetID int64) (*SheetsSink, error) {
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account file: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account: %w", err)
	}

	return NewSheetsSinkWithOptions(ctx, spreadsheetID, sheetID, option.WithHTTPClient(conf.Client(ctx)))
}

// NewSheetsSinkWithOptions builds the Sheets client from explicit options.
func NewSheetsSinkWithOptions(ctx context.Context, spreadsheetID string, sheetID int64, opts ...option.ClientOption) (*SheetsSink, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	return &SheetsSink{service: service, spreadsheetID: spreadsheetID, sheetID: sheetID}, nil
}

func (s *SheetsSink) Name() string { return "sheets" }

func (s *SheetsSink) Write(ctx context.Context, report []byte) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			PasteData: &sheets.PasteDataRequest{
				Coordinate: &sheets.GridCoordinate{
					SheetId:         s.sheetID,
					RowIndex:        0,
					ColumnIndex:     0,
					ForceSendFields: []string{"SheetId", "RowIndex", "ColumnIndex"},
				},
				Data:      string(report),
				Type:      "PASTE_VALUES",
				Delimiter: ",",
			},
		}},
	}

	_, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to paste report into spreadsheet %s: %w", s.spreadsheetID, err)
	}
	return nil
}
