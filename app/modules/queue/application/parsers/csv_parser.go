package parsers

import (
	"bytes"
	"encoding/csv"
	"fmt"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
)

// zipMagic prefixes every xlsx file.
var zipMagic = []byte("PK\x03\x04")

// CSVParser parses comma separated entry lists.
type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse reads the CSV rows. Workbooks uploaded with a .csv name are handed
// to the xlsx reader.
func (p *CSVParser) Parse(data []byte) ([]queuedomain.Request, error) {
	if bytes.HasPrefix(data, zipMagic) {
		return parseWorkbook(data)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w: %w", err, queuedomain.ErrInvalidRequest)
	}
	return requestsFromRows(records)
}
