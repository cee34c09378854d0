package types

import "context"

// IndexSheet is the title of the per-user index worksheet. Goal sheets are
// titled "goal-<id>" and never collide with it.
const IndexSheet = "Index"

// GoalSheetPrefix prefixes every goal worksheet title.
const GoalSheetPrefix = "goal-"

// GoalSheetTitle derives the worksheet title for a goal ID.
func GoalSheetTitle(goalID string) string {
	return GoalSheetPrefix + goalID
}

// DocumentHandle identifies one user's backing spreadsheet.
type DocumentHandle struct {
	UserID        int64
	SpreadsheetID string
}

// SheetHandle identifies one worksheet within a user's document.
type SheetHandle struct {
	Doc   DocumentHandle
	Title string
}

// CellUpdate addresses a single cell write within a batched call.
// Row and Col are 1-based sheet coordinates (row 1 is the header).
type CellUpdate struct {
	Row   int
	Col   int
	Value string
}

// Gateway is the only abstraction that talks to the remote spreadsheet
// backend. Every method maps to one remote call; reads and writes are
// always bulk, never per-cell. The gateway knows nothing about rate
// limiting or retries; callers wrap each invocation externally.
//
// Failure signals: missing documents/sheets surface as ErrNotFound,
// transient conditions as ErrUnavailable, and auth problems as
// ErrPermission, each wrapping the underlying cause.
type Gateway interface {
	// EnsureDocument returns the user's document, creating it together
	// with the index sheet and its header row on first use. Idempotent:
	// calling it twice never creates a second document.
	EnsureDocument(ctx context.Context, userID int64) (DocumentHandle, error)

	// EnsureGoalSheet returns the worksheet for a goal, creating it with
	// its header row if absent. Idempotent.
	EnsureGoalSheet(ctx context.Context, doc DocumentHandle, goalID string) (SheetHandle, error)

	// ReadRows bulk-reads all data rows (below the header) of a sheet.
	// Cells come back as strings; typed decoding happens upstream.
	ReadRows(ctx context.Context, sheet SheetHandle) ([][]string, error)

	// BatchWrite coalesces multiple cell writes into one remote call.
	BatchWrite(ctx context.Context, sheet SheetHandle, updates []CellUpdate) error

	// AppendRows appends rows after the last data row in one remote call.
	AppendRows(ctx context.Context, sheet SheetHandle, rows [][]string) error

	// DeleteSheet removes one worksheet from the document.
	DeleteSheet(ctx context.Context, doc DocumentHandle, sheet SheetHandle) error

	// DeleteDocument tears down the user's entire document. Used only by
	// full account reset.
	DeleteDocument(ctx context.Context, doc DocumentHandle) error
}
