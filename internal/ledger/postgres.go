package ledger

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-tickets/internal/domain"
	"github.com/spec-kit/complaint-tickets/internal/persistence"
)

// PostgresLedger stores tickets in the tickets_ledger table. Each append is
// one INSERT, so a record either lands completely or not at all.
type PostgresLedger struct {
	pool          *pgxpool.Pool
	runMigrations bool
	migrated      atomic.Bool
	logger        *zap.Logger
}

// NewPostgres returns a ledger on pool. With runMigrations unset the schema
// is expected to exist already.
func NewPostgres(pool *pgxpool.Pool, runMigrations bool, logger *zap.Logger) *PostgresLedger {
	return &PostgresLedger{pool: pool, runMigrations: runMigrations, logger: logger}
}

// EnsureInitialized applies the ledger schema once per process, then only
// checks connectivity.
func (l *PostgresLedger) EnsureInitialized(ctx context.Context) error {
	if l.pool == nil {
		return fmt.Errorf("%w: postgres not configured", domain.ErrLedgerWrite)
	}
	if !l.runMigrations || l.migrated.Load() {
		if err := l.pool.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrLedgerWrite, err)
		}
		return nil
	}
	if err := persistence.RunMigrations(ctx, l.pool, l.logger); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLedgerWrite, err)
	}
	l.migrated.Store(true)
	return nil
}

// Append inserts one ticket.
func (l *PostgresLedger) Append(ctx context.Context, t domain.Ticket) error {
	if l.pool == nil {
		return fmt.Errorf("%w: postgres not configured", domain.ErrLedgerWrite)
	}
	const query = `
        INSERT INTO tickets_ledger (ticket_id, complaint_id, supplier, product, order_id, issue, created_at, status, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	if _, err := l.pool.Exec(ctx, query,
		t.ID,
		t.ComplaintID,
		t.Supplier,
		t.Product,
		t.OrderID,
		t.Issue,
		t.CreatedAt,
		string(t.Status),
		t.Notes,
	); err != nil {
		return fmt.Errorf("%w: insert %s: %v", domain.ErrLedgerWrite, t.ID, err)
	}
	return nil
}

// ReadAll returns every ticket in insertion order.
func (l *PostgresLedger) ReadAll(ctx context.Context) ([]domain.Ticket, error) {
	if l.pool == nil {
		return []domain.Ticket{}, fmt.Errorf("%w: postgres not configured", domain.ErrLedgerRead)
	}
	const query = `
        SELECT ticket_id, complaint_id, supplier, product, order_id, issue, created_at, status, notes
        FROM tickets_ledger ORDER BY seq ASC`
	rows, err := l.pool.Query(ctx, query)
	if err != nil {
		return []domain.Ticket{}, fmt.Errorf("%w: %v", domain.ErrLedgerRead, err)
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		var (
			t      domain.Ticket
			status string
		)
		if err := rows.Scan(
			&t.ID,
			&t.ComplaintID,
			&t.Supplier,
			&t.Product,
			&t.OrderID,
			&t.Issue,
			&t.CreatedAt,
			&status,
			&t.Notes,
		); err != nil {
			return []domain.Ticket{}, fmt.Errorf("%w: scan: %v", domain.ErrLedgerRead, err)
		}
		t.Status = domain.TicketStatus(status)
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return []domain.Ticket{}, fmt.Errorf("%w: %v", domain.ErrLedgerRead, err)
	}
	return result, nil
}
