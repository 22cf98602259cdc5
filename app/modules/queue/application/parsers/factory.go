package parsers

import (
	"fmt"
	"path/filepath"
	"strings"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
)

// Parser turns an uploaded file into entry requests, one per row.
type Parser interface {
	Parse(data []byte) ([]queuedomain.Request, error)
}

// ParserFactory selects a parser for an uploaded file.
type ParserFactory interface {
	GetParser(filename string) (Parser, error)
}

// Factory creates the appropriate parser based on file extension
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// GetParser returns the parser for the filename's extension. Unknown
// extensions are rejected with queuedomain.ErrInvalidRequest.
func (f *Factory) GetParser(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".csv":
		return NewCSVParser(), nil
	case ".xlsx":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("unsupported file type %q: %w", ext, queuedomain.ErrInvalidRequest)
	}
}
