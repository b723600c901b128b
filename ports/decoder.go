package ports

import (
	"io"

	"csvdash/domain/dataset"
)

// TableDecoder turns the bytes of one uploaded file into a Table
type TableDecoder interface {
	// Decode parses r; failures must match core.ErrDataParse
	Decode(name string, r io.Reader) (*dataset.Table, error)

	// Extensions lists the lower-cased file extensions (with dot) the decoder accepts
	Extensions() []string
}
