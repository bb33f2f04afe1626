package rank

import (
	"encoding/base64"
	"fmt"

	"github.com/jonathan/talent-sourcer/internal/types"
)

// ErrInvalidCursor indicates a cursor that does not belong to the
// snapshot being paginated.
type ErrInvalidCursor struct {
	Cursor string
}

func (e *ErrInvalidCursor) Error() string {
	return fmt.Sprintf("invalid pagination cursor %q", e.Cursor)
}

// encodeCursor marks a position after the given profile id.
func encodeCursor(profileID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(profileID))
}

func decodeCursor(cursor string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", &ErrInvalidCursor{Cursor: cursor}
	}
	return string(raw), nil
}

// Page returns the next pageSize results after the cursor position
// (all ordered results from the start when cursor is empty), plus the
// cursor for the following page. The returned cursor is empty when the
// snapshot is exhausted. Over a fixed, ordered snapshot, consecutive
// pages neither omit nor duplicate results.
func Page(ordered []types.MatchResult, cursor string, pageSize int) ([]types.MatchResult, string, error) {
	if pageSize <= 0 {
		return nil, "", fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	start := 0
	if cursor != "" {
		afterID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		found := false
		for i := range ordered {
			if ordered[i].ProfileID == afterID {
				start = i + 1
				found = true
				break
			}
		}
		if !found {
			return nil, "", &ErrInvalidCursor{Cursor: cursor}
		}
	}

	end := start + pageSize
	if end > len(ordered) {
		end = len(ordered)
	}
	page := ordered[start:end]

	next := ""
	if end < len(ordered) && len(page) > 0 {
		next = encodeCursor(page[len(page)-1].ProfileID)
	}
	return page, next, nil
}
