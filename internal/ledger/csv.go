package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spec-kit/complaint-tickets/internal/domain"
)

// CSVLedger stores tickets in a CSV file with a header row. Each append is a
// single write of one complete record on an O_APPEND descriptor, so
// independent processes sharing the file never interleave partial records.
type CSVLedger struct {
	mu   sync.Mutex
	path string
}

// NewCSV returns a ledger backed by the file at path.
func NewCSV(path string) *CSVLedger {
	return &CSVLedger{path: path}
}

// Path returns the backing file path.
func (l *CSVLedger) Path() string {
	return l.path
}

// EnsureInitialized creates the file with its header if it does not exist.
// The header is written to a temporary file and linked into place, so a
// concurrent caller sees either no file or a file with a complete header.
func (l *CSVLedger) EnsureInitialized(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ensureInitialized()
}

func (l *CSVLedger) ensureInitialized() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: stat %s: %v", domain.ErrLedgerWrite, l.path, err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create dir %s: %v", domain.ErrLedgerWrite, dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.csv")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", domain.ErrLedgerWrite, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	header, err := encodeRecord(Columns)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("%w: encode header: %v", domain.ErrLedgerWrite, err)
	}
	if _, err := tmp.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write header: %v", domain.ErrLedgerWrite, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync header: %v", domain.ErrLedgerWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp: %v", domain.ErrLedgerWrite, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: chmod temp: %v", domain.ErrLedgerWrite, err)
	}
	if err := os.Link(tmpName, l.path); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: link %s: %v", domain.ErrLedgerWrite, l.path, err)
	}
	return nil
}

// Append writes one ticket record and syncs it to disk.
func (l *CSVLedger) Append(_ context.Context, ticket domain.Ticket) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureInitialized(); err != nil {
		return err
	}
	record, err := encodeRecord(toRecord(ticket))
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrLedgerWrite, ticket.ID, err)
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", domain.ErrLedgerWrite, l.path, err)
	}
	if _, err := f.Write(record); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %v", domain.ErrLedgerWrite, ticket.ID, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("%w: sync %s: %v", domain.ErrLedgerWrite, ticket.ID, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", domain.ErrLedgerWrite, l.path, err)
	}
	return nil
}

// ReadAll returns every ticket in file order.
func (l *CSVLedger) ReadAll(_ context.Context) ([]domain.Ticket, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return []domain.Ticket{}, fmt.Errorf("%w: open %s: %v", domain.ErrLedgerRead, l.path, err)
	}
	defer f.Close()

	tickets, err := decode(f)
	if err != nil {
		return []domain.Ticket{}, fmt.Errorf("%w: %s: %v", domain.ErrLedgerRead, l.path, err)
	}
	return tickets, nil
}

func decode(r io.Reader) ([]domain.Ticket, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Columns)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range Columns {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i, header[i], col)
		}
	}

	tickets := []domain.Ticket{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return tickets, nil
		}
		if err != nil {
			return nil, err
		}
		ticket, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
}

func encodeRecord(fields []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(fields); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toRecord(t domain.Ticket) []string {
	return []string{
		t.ID, t.ComplaintID, t.Supplier, t.Product, t.OrderID,
		t.Issue, t.CreatedAtString(), string(t.Status), t.Notes,
	}
}

func fromRecord(record []string) (domain.Ticket, error) {
	createdAt, err := time.ParseInLocation(domain.CreatedAtLayout, record[6], time.Local)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("ticket %s: created_at: %w", record[0], err)
	}
	return domain.Ticket{
		ID:          record[0],
		ComplaintID: record[1],
		Supplier:    record[2],
		Product:     record[3],
		OrderID:     record[4],
		Issue:       record[5],
		CreatedAt:   createdAt,
		Status:      domain.TicketStatus(record[7]),
		Notes:       record[8],
	}, nil
}
