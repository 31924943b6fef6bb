package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryContract   Category = "contract"
	CategoryConfig     Category = "config"
	CategoryManifest   Category = "manifest"
	CategoryPrecompile Category = "precompile"
	CategoryServer     Category = "server"
	CategoryCLI        Category = "cli"
)

// Location represents a position in a file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// AssetError is a structured error with an optional file location and hints.
type AssetError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the file position the error refers to.
	Location *Location

	// Context contains surrounding file lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *AssetError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *AssetError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *AssetError with the same code.
func (e *AssetError) Is(target error) bool {
	t, ok := target.(*AssetError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithLocation adds a file location and reads the surrounding lines.
func (e *AssetError) WithLocation(file string, line, column int) *AssetError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *AssetError) WithSuggestion(s string) *AssetError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *AssetError) WithDetail(d string) *AssetError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *AssetError) Wrap(err error) *AssetError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates an AssetError from a registered error code.
func New(code string) *AssetError {
	template, ok := registry[code]
	if !ok {
		return &AssetError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &AssetError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new AssetError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *AssetError {
	return &AssetError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an AssetError.
func FromError(err error, code string) *AssetError {
	if err == nil {
		return nil
	}
	var ae *AssetError
	if stderrors.As(err, &ae) {
		return ae
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err, or anything it wraps, is an AssetError with
// the given code.
func HasCode(err error, code string) bool {
	return stderrors.Is(err, &AssetError{Code: code})
}

// IsCategory reports whether err, or anything it wraps, is an AssetError in
// the given category.
func IsCategory(err error, category Category) bool {
	var ae *AssetError
	if !stderrors.As(err, &ae) {
		return false
	}
	return ae.Category == category
}
