package content

import (
	"errors"
	"fmt"
)

// ErrInvalidInput indicates content that can never be rendered. It is the only
// error the render pipeline surfaces to callers as terminal.
var ErrInvalidInput = errors.New("invalid input")

// ErrEmptyContent indicates content that is empty after sanitization.
var ErrEmptyContent = fmt.Errorf("%w: content is empty after sanitization", ErrInvalidInput)

// TableRenderError reports a table that could not be drawn as a grid.
// Renderers recover from it locally by degrading the table to text.
type TableRenderError struct {
	Rows int
	Cols int
	Err  error
}

func (e *TableRenderError) Error() string {
	return fmt.Sprintf("render table %dx%d: %v", e.Rows, e.Cols, e.Err)
}

func (e *TableRenderError) Unwrap() error {
	return e.Err
}
