package analysis

import (
	"errors"
	"fmt"
)

// ErrEmptyResult means the text was read but no transaction could be
// parsed from it. The (empty) report is returned alongside it.
var ErrEmptyResult = errors.New("no transactions could be parsed from the statement")

// ExtractionError reports that no text could be obtained from a document.
// It is terminal for that document.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract text from %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
