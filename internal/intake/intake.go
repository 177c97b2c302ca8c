// Package intake turns uploaded tabular complaint data into complaint rows.
package intake

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spec-kit/complaint-tickets/internal/domain"
)

// Column names of an uploaded batch.
const (
	ColComplaintID = "Complaint_ID"
	ColMessage     = "Message"
	ColSupplier    = "Supplier"
	ColProduct     = "Product"
	ColOrderID     = "Order_ID"
)

// RequiredColumns must all be present in a batch header.
var RequiredColumns = []string{ColComplaintID, ColMessage, ColSupplier, ColProduct}

// MissingColumnsError reports required columns absent from a header.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%v: missing required columns: %s", domain.ErrPrecondition, strings.Join(e.Missing, ", "))
}

// Is lets errors.Is match domain.ErrPrecondition.
func (e *MissingColumnsError) Is(target error) bool {
	return target == domain.ErrPrecondition
}

// FromRecords maps header-indexed records to complaint rows. A header lacking
// any required column is rejected before any row is looked at.
func FromRecords(header []string, records [][]string) ([]domain.ComplaintRow, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	field := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := make([]domain.ComplaintRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, domain.ComplaintRow{
			ComplaintID: field(record, ColComplaintID),
			Supplier:    field(record, ColSupplier),
			Product:     field(record, ColProduct),
			OrderID:     field(record, ColOrderID),
			Message:     field(record, ColMessage),
		})
	}
	return rows, nil
}

// FromCSV reads a CSV upload whose first line is the header.
func FromCSV(r io.Reader) ([]domain.ComplaintRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MissingColumnsError{Missing: RequiredColumns}
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return FromRecords(header, records)
}
