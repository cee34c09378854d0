// Package sheets implements the spreadsheet Gateway on the Google Sheets
// and Drive APIs. It is the only package that talks to the remote backend.
//
// The client performs no rate limiting and no retries; the goal store
// wraps every call externally. All reads and writes are bulk: a batched
// values update is one HTTP call regardless of how many cells it touches.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mesh-intelligence/stride/internal/registry"
	"github.com/mesh-intelligence/stride/pkg/types"
)

// Header rows written when a sheet is created.
var (
	indexHeader = []string{"goal_id", "title", "priority", "tags", "status", "deadline", "progress", "created_at"}
	goalHeader  = []string{"date", "weekday", "task", "status"}
)

// rawInput writes cell values verbatim, without spreadsheet-side parsing.
const rawInput = "RAW"

// Client is the production Gateway. One instance serves all users.
type Client struct {
	svc   *sheetsapi.Service
	drive *drive.Service
	reg   *registry.Registry
	log   *slog.Logger
}

// Compile-time interface check: Client must implement Gateway.
var _ types.Gateway = (*Client)(nil)

// NewClient builds a Gateway authenticated with a service-account key.
// The registry makes EnsureDocument idempotent across restarts.
func NewClient(ctx context.Context, credentialsFile string, reg *registry.Registry, log *slog.Logger) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	drv, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	if log == nil {
		log = slog.Default()
	}
	return &Client{svc: svc, drive: drv, reg: reg, log: log}, nil
}

// documentTitle names a user's spreadsheet.
func documentTitle(userID int64) string {
	return fmt.Sprintf("stride-%d", userID)
}

// EnsureDocument returns the user's spreadsheet, creating it with the
// index sheet and header on first use.
func (c *Client) EnsureDocument(ctx context.Context, userID int64) (types.DocumentHandle, error) {
	id, err := c.reg.Lookup(userID)
	if err == nil {
		return types.DocumentHandle{UserID: userID, SpreadsheetID: id}, nil
	}
	if !errors.Is(err, registry.ErrNoDocument) {
		return types.DocumentHandle{}, fmt.Errorf("registry lookup: %w", err)
	}

	spreadsheet := &sheetsapi.Spreadsheet{
		Properties: &sheetsapi.SpreadsheetProperties{Title: documentTitle(userID)},
		Sheets: []*sheetsapi.Sheet{
			{Properties: &sheetsapi.SheetProperties{Title: types.IndexSheet}},
		},
	}
	created, err := c.svc.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return types.DocumentHandle{}, classify("create document", err)
	}

	doc := types.DocumentHandle{UserID: userID, SpreadsheetID: created.SpreadsheetId}
	if err := c.writeHeader(ctx, doc, types.IndexSheet, indexHeader); err != nil {
		return types.DocumentHandle{}, err
	}
	if err := c.reg.Save(userID, doc.SpreadsheetID); err != nil {
		return types.DocumentHandle{}, fmt.Errorf("registry save: %w", err)
	}

	c.log.Info("created document", "user_id", userID, "spreadsheet_id", doc.SpreadsheetID)
	return doc, nil
}

// EnsureGoalSheet returns the goal's worksheet, creating it with its header
// if absent.
func (c *Client) EnsureGoalSheet(ctx context.Context, doc types.DocumentHandle, goalID string) (types.SheetHandle, error) {
	title := types.GoalSheetTitle(goalID)

	meta, err := c.svc.Spreadsheets.Get(doc.SpreadsheetID).
		Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return types.SheetHandle{}, classify("get document", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return types.SheetHandle{Doc: doc, Title: title}, nil
		}
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(doc.SpreadsheetID, req).Context(ctx).Do(); err != nil {
		return types.SheetHandle{}, classify("add sheet", err)
	}
	if err := c.writeHeader(ctx, doc, title, goalHeader); err != nil {
		return types.SheetHandle{}, err
	}

	c.log.Info("created goal sheet", "user_id", doc.UserID, "sheet", title)
	return types.SheetHandle{Doc: doc, Title: title}, nil
}

// ReadRows bulk-reads every data row below the header.
func (c *Client) ReadRows(ctx context.Context, sheet types.SheetHandle) ([][]string, error) {
	readRange := fmt.Sprintf("%s!A2:H", sheet.Title)
	resp, err := c.svc.Spreadsheets.Values.Get(sheet.Doc.SpreadsheetID, readRange).
		Context(ctx).Do()
	if err != nil {
		return nil, classify("read rows", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// BatchWrite coalesces all cell updates into one batched values call.
func (c *Client) BatchWrite(ctx context.Context, sheet types.SheetHandle, updates []types.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	data := make([]*sheetsapi.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheetsapi.ValueRange{
			Range:  fmt.Sprintf("%s!%s", sheet.Title, cellRef(u.Row, u.Col)),
			Values: [][]any{{u.Value}},
		})
	}
	req := &sheetsapi.BatchUpdateValuesRequest{
		ValueInputOption: rawInput,
		Data:             data,
	}
	if _, err := c.svc.Spreadsheets.Values.BatchUpdate(sheet.Doc.SpreadsheetID, req).Context(ctx).Do(); err != nil {
		return classify("batch write", err)
	}
	return nil
}

// AppendRows appends rows after the last data row in one call.
func (c *Client) AppendRows(ctx context.Context, sheet types.SheetHandle, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}
	vr := &sheetsapi.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.
		Append(sheet.Doc.SpreadsheetID, sheet.Title+"!A1", vr).
		ValueInputOption(rawInput).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return classify("append rows", err)
	}
	return nil
}

// DeleteSheet removes one worksheet. The numeric sheet ID is resolved from
// the title first; a sheet already gone surfaces as ErrNotFound.
func (c *Client) DeleteSheet(ctx context.Context, doc types.DocumentHandle, sheet types.SheetHandle) error {
	meta, err := c.svc.Spreadsheets.Get(doc.SpreadsheetID).
		Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return classify("get document", err)
	}

	var sheetID int64 = -1
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == sheet.Title {
			sheetID = s.Properties.SheetId
			break
		}
	}
	if sheetID < 0 {
		return fmt.Errorf("sheet %q: %w", sheet.Title, types.ErrNotFound)
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			DeleteSheet: &sheetsapi.DeleteSheetRequest{SheetId: sheetID},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(doc.SpreadsheetID, req).Context(ctx).Do(); err != nil {
		return classify("delete sheet", err)
	}
	return nil
}

// DeleteDocument tears down the spreadsheet via the Drive API and drops the
// registry entry.
func (c *Client) DeleteDocument(ctx context.Context, doc types.DocumentHandle) error {
	if err := c.drive.Files.Delete(doc.SpreadsheetID).Context(ctx).Do(); err != nil {
		return classify("delete document", err)
	}
	if err := c.reg.Delete(doc.UserID); err != nil {
		return fmt.Errorf("registry delete: %w", err)
	}
	c.log.Info("deleted document", "user_id", doc.UserID, "spreadsheet_id", doc.SpreadsheetID)
	return nil
}

// writeHeader fills row 1 of a freshly created sheet.
func (c *Client) writeHeader(ctx context.Context, doc types.DocumentHandle, title string, header []string) error {
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	vr := &sheetsapi.ValueRange{Values: [][]any{cells}}
	_, err := c.svc.Spreadsheets.Values.
		Update(doc.SpreadsheetID, title+"!A1", vr).
		ValueInputOption(rawInput).
		Context(ctx).Do()
	if err != nil {
		return classify("write header", err)
	}
	return nil
}

// cellRef converts 1-based row/col coordinates to A1 notation.
func cellRef(row, col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return fmt.Sprintf("%s%d", letters, row)
}
