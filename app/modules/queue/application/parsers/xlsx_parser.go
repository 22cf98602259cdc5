package parsers

import (
	"bytes"
	"fmt"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	"github.com/xuri/excelize/v2"
)

// XLSXParser parses the first sheet of a workbook.
type XLSXParser struct{}

func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

func (p *XLSXParser) Parse(data []byte) ([]queuedomain.Request, error) {
	return parseWorkbook(data)
}

func parseWorkbook(data []byte) ([]queuedomain.Request, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w: %w", err, queuedomain.ErrInvalidRequest)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets: %w", queuedomain.ErrInvalidRequest)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return requestsFromRows(rows)
}
