package dataset

import (
	"io"
	"path/filepath"
	"strings"
)

// Upload is one file submitted through the dashboard or the CLI
type Upload struct {
	Filename string
	Size     int64
	File     io.Reader
}

// Extension returns the lower-cased file extension including the dot
func (u Upload) Extension() string {
	return strings.ToLower(filepath.Ext(u.Filename))
}
