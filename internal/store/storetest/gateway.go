// Package storetest provides an in-memory Gateway implementation for
// exercising the store and orchestrator without a remote backend. It
// counts calls per method and supports scripted error injection, so
// tests can assert batching, retry, and rate-limit behavior by observing
// exactly which remote calls would have been made.
package storetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/stride/pkg/types"
)

// Gateway is an in-memory types.Gateway. The zero value is not usable;
// construct with NewGateway.
type Gateway struct {
	mu   sync.Mutex
	docs map[int64]*document

	calls map[string]int

	// FailHook, when set, runs at the start of every method with the
	// method name and the sheet title the call targets (empty for
	// document-level calls). A non-nil return aborts the call with that
	// error; the call still counts.
	FailHook func(method, sheet string) error
}

type document struct {
	id     string
	sheets map[string][][]string
}

// NewGateway creates an empty in-memory gateway.
func NewGateway() *Gateway {
	return &Gateway{
		docs:  make(map[int64]*document),
		calls: make(map[string]int),
	}
}

var _ types.Gateway = (*Gateway)(nil)

// Calls returns how many times the named method was invoked.
func (g *Gateway) Calls(method string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[method]
}

// TotalCalls returns the total number of gateway invocations.
func (g *Gateway) TotalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, n := range g.calls {
		total += n
	}
	return total
}

// ResetCalls zeroes all per-method call counts.
func (g *Gateway) ResetCalls() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = make(map[string]int)
}

// SheetRows returns a copy of a sheet's data rows, and whether the sheet
// exists. For assertions only; it does not count as a gateway call.
func (g *Gateway) SheetRows(userID int64, title string) ([][]string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	doc, ok := g.docs[userID]
	if !ok {
		return nil, false
	}
	rows, ok := doc.sheets[title]
	if !ok {
		return nil, false
	}
	return copyRows(rows), true
}

// SheetCount returns the number of worksheets in a user's document.
func (g *Gateway) SheetCount(userID int64) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	doc, ok := g.docs[userID]
	if !ok {
		return 0
	}
	return len(doc.sheets)
}

// HasDocument reports whether the user's document exists.
func (g *Gateway) HasDocument(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.docs[userID]
	return ok
}

// Seed installs a sheet's data rows directly, creating the document if
// needed. For test setup only.
func (g *Gateway) Seed(userID int64, title string, rows [][]string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	doc := g.docs[userID]
	if doc == nil {
		doc = newDocument(userID)
		g.docs[userID] = doc
	}
	doc.sheets[title] = copyRows(rows)
}

func newDocument(userID int64) *document {
	return &document{
		id:     fmt.Sprintf("doc-%d", userID),
		sheets: map[string][][]string{types.IndexSheet: {}},
	}
}

// enter records the call and runs the failure hook.
func (g *Gateway) enter(method, sheet string) error {
	g.calls[method]++
	if g.FailHook != nil {
		return g.FailHook(method, sheet)
	}
	return nil
}

func (g *Gateway) EnsureDocument(_ context.Context, userID int64) (types.DocumentHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("EnsureDocument", ""); err != nil {
		return types.DocumentHandle{}, err
	}
	doc, ok := g.docs[userID]
	if !ok {
		doc = newDocument(userID)
		g.docs[userID] = doc
	}
	return types.DocumentHandle{UserID: userID, SpreadsheetID: doc.id}, nil
}

func (g *Gateway) EnsureGoalSheet(_ context.Context, doc types.DocumentHandle, goalID string) (types.SheetHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	title := types.GoalSheetTitle(goalID)
	if err := g.enter("EnsureGoalSheet", title); err != nil {
		return types.SheetHandle{}, err
	}
	d, ok := g.docs[doc.UserID]
	if !ok {
		return types.SheetHandle{}, fmt.Errorf("document for user %d: %w", doc.UserID, types.ErrNotFound)
	}
	if _, ok := d.sheets[title]; !ok {
		d.sheets[title] = [][]string{}
	}
	return types.SheetHandle{Doc: doc, Title: title}, nil
}

func (g *Gateway) ReadRows(_ context.Context, sheet types.SheetHandle) ([][]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("ReadRows", sheet.Title); err != nil {
		return nil, err
	}
	rows, err := g.sheet(sheet)
	if err != nil {
		return nil, err
	}
	return copyRows(rows), nil
}

func (g *Gateway) BatchWrite(_ context.Context, sheet types.SheetHandle, updates []types.CellUpdate) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("BatchWrite", sheet.Title); err != nil {
		return err
	}
	rows, err := g.sheet(sheet)
	if err != nil {
		return err
	}
	for _, u := range updates {
		// Row is a 1-based sheet coordinate; row 1 is the header, so
		// data row i lives at sheet row i+2.
		i := u.Row - 2
		if i < 0 || i >= len(rows) {
			return fmt.Errorf("cell row %d out of range: %w", u.Row, types.ErrNotFound)
		}
		for len(rows[i]) < u.Col {
			rows[i] = append(rows[i], "")
		}
		rows[i][u.Col-1] = u.Value
	}
	return nil
}

func (g *Gateway) AppendRows(_ context.Context, sheet types.SheetHandle, rows [][]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("AppendRows", sheet.Title); err != nil {
		return err
	}
	existing, err := g.sheet(sheet)
	if err != nil {
		return err
	}
	d := g.docs[sheet.Doc.UserID]
	d.sheets[sheet.Title] = append(existing, copyRows(rows)...)
	return nil
}

func (g *Gateway) DeleteSheet(_ context.Context, doc types.DocumentHandle, sheet types.SheetHandle) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("DeleteSheet", sheet.Title); err != nil {
		return err
	}
	d, ok := g.docs[doc.UserID]
	if !ok {
		return fmt.Errorf("document for user %d: %w", doc.UserID, types.ErrNotFound)
	}
	if _, ok := d.sheets[sheet.Title]; !ok {
		return fmt.Errorf("sheet %q: %w", sheet.Title, types.ErrNotFound)
	}
	delete(d.sheets, sheet.Title)
	return nil
}

func (g *Gateway) DeleteDocument(_ context.Context, doc types.DocumentHandle) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("DeleteDocument", ""); err != nil {
		return err
	}
	if _, ok := g.docs[doc.UserID]; !ok {
		return fmt.Errorf("document for user %d: %w", doc.UserID, types.ErrNotFound)
	}
	delete(g.docs, doc.UserID)
	return nil
}

// sheet resolves the stored rows for a handle. Caller holds g.mu.
func (g *Gateway) sheet(sheet types.SheetHandle) ([][]string, error) {
	d, ok := g.docs[sheet.Doc.UserID]
	if !ok {
		return nil, fmt.Errorf("document for user %d: %w", sheet.Doc.UserID, types.ErrNotFound)
	}
	rows, ok := d.sheets[sheet.Title]
	if !ok {
		return nil, fmt.Errorf("sheet %q: %w", sheet.Title, types.ErrNotFound)
	}
	return rows, nil
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
