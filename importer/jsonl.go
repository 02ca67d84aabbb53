package importer

import (
	"bytes"

	"github.com/etnz/finagle"
)

// JSONL reads the one transaction per line archives written by finagle.EncodeJSONL.
type JSONL struct{}

func (JSONL) Name() string { return "jsonl" }

func (JSONL) CanHandle(filename string, content []byte) bool {
	_, ok := text(content)
	return ok && hasExt(filename, ".jsonl")
}

func (JSONL) Parse(filename string, content []byte) ([]finagle.Transaction, []error) {
	txs, err := finagle.DecodeJSONL(bytes.NewReader(bytes.TrimPrefix(content, bom)))
	if err != nil {
		return nil, []error{err}
	}
	return txs, nil
}
