// Package importer reads broker and finagle files into transactions.
//
// Every supported format is a Parser. A Registry tries its parsers in order
// and uses the first one that recognizes the file.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/etnz/finagle"
)

// ErrUnrecognised is returned when no parser handles a file.
var ErrUnrecognised = errors.New("unrecognised file format")

// Parser reads one file format.
type Parser interface {
	// Name identifies the format, e.g. "pearler".
	Name() string
	// CanHandle reports whether content looks like this format. It must not fail.
	CanHandle(filename string, content []byte) bool
	// Parse reads every row, collecting one error per invalid row.
	Parse(filename string, content []byte) ([]finagle.Transaction, []error)
}

// RowError is a problem found on one row of a file. Rows are numbered from 1,
// the header included.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("Row %d: %v", e.Row, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

// Result is the outcome of parsing a file.
type Result struct {
	Format       string
	Transactions []finagle.Transaction
	Errors       []error
}

// Err joins all the errors of the result, nil if there are none.
func (r Result) Err() error { return errors.Join(r.Errors...) }

// Registry is an ordered list of parsers.
type Registry struct {
	parsers []Parser
}

// NewRegistry returns a registry that tries parsers in the given order.
func NewRegistry(parsers ...Parser) *Registry {
	return &Registry{parsers: parsers}
}

// DefaultRegistry returns a registry of every supported format.
func DefaultRegistry() *Registry {
	return NewRegistry(Native{}, JSONL{}, Sharesight{}, Pearler{})
}

// Names returns the names of the registered formats.
func (r *Registry) Names() []string {
	names := make([]string, len(r.parsers))
	for i, p := range r.parsers {
		names[i] = p.Name()
	}
	return names
}

// Find returns the first parser that handles the file.
func (r *Registry) Find(filename string, content []byte) (Parser, error) {
	for _, p := range r.parsers {
		if p.CanHandle(filename, content) {
			return p, nil
		}
	}
	return nil, ErrUnrecognised
}

// Parse parses the file with the first parser that handles it.
// Imports are all or nothing: callers must reject a Result with errors.
func (r *Registry) Parse(filename string, content []byte) (Result, error) {
	p, err := r.Find(filename, content)
	if err != nil {
		return Result{}, err
	}
	txs, errs := p.Parse(filename, content)
	return Result{Format: p.Name(), Transactions: txs, Errors: errs}, nil
}

// Template returns an empty file in the native format.
func Template() []byte {
	var buf bytes.Buffer
	// a header only never fails to encode.
	_ = finagle.EncodeCSV(&buf, nil)
	return buf.Bytes()
}

var bom = []byte("\xef\xbb\xbf")

// text returns the content without its UTF-8 byte order mark. ok is false if
// content is not UTF-8.
func text(content []byte) (string, bool) {
	content = bytes.TrimPrefix(content, bom)
	if !utf8.Valid(content) {
		return "", false
	}
	return string(content), true
}

func hasExt(filename, ext string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ext)
}

func isEOF(err error) bool { return errors.Is(err, io.EOF) }
