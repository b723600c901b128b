package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"unicode/utf8"

	"csvdash/domain/core"
	"csvdash/domain/dataset"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVDecoder reads comma-separated text with a header row
type CSVDecoder struct {
	// Comma is the field delimiter, ',' when zero
	Comma rune
}

// NewCSVDecoder creates a decoder for standard comma-separated files
func NewCSVDecoder() *CSVDecoder {
	return &CSVDecoder{Comma: ','}
}

// Extensions implements ports.TableDecoder
func (d *CSVDecoder) Extensions() []string {
	return []string{".csv"}
}

// Decode implements ports.TableDecoder
func (d *CSVDecoder) Decode(name string, r io.Reader) (*dataset.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, core.NewParseError("failed to read file: %v", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		return nil, core.NewParseError("file is not UTF-8 encoded text")
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, core.NewParseError("file contains binary data")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, core.NewParseError("no columns to parse from file")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	if d.Comma != 0 {
		reader.Comma = d.Comma
	}

	header, err := reader.Read()
	if err != nil {
		return nil, csvError(err)
	}

	var records [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		if len(rec) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, core.NewParseError("expected %d fields in line %d, saw %d", len(header), line, len(rec))
		}
		records = append(records, rec)
	}

	return BuildTable(name, header, records)
}

func csvError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return core.NewParseError("line %d, column %d: %v", parseErr.Line, parseErr.Column, parseErr.Err)
	}
	if errors.Is(err, io.EOF) {
		return core.NewParseError("no columns to parse from file")
	}
	return core.NewParseError("%v", err)
}
