package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nexchain_go/internal/domain"
	"nexchain_go/pkg/quant"

	_ "github.com/glebarez/go-sqlite"
)

var (
	// ErrNotFound is returned when an order or alert does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a state transition loses the race,
	// e.g. executing an order that was already cancelled.
	ErrConflict = errors.New("state conflict")
)

// Store persists orders and alerts in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;", // 2MB cache
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	// Prices and quantities are stored as scaled integers, matching the
	// in-memory representation.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			category TEXT NOT NULL,
			limit_micros INTEGER NOT NULL DEFAULT 0,
			stop_micros INTEGER NOT NULL DEFAULT 0,
			qty_sats INTEGER NOT NULL,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			executed_micros INTEGER NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create orders table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_orders_owner_status
		ON orders (owner_id, status);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create orders index: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			target_micros INTEGER NOT NULL,
			direction TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create alerts table: %w", err)
	}

	return &Store{db: db}, nil
}

// CreateOrder inserts a new pending order.
func (s *Store) CreateOrder(ctx context.Context, o *domain.PendingOrder) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.CreatedUnixM == 0 {
		o.CreatedUnixM = quant.TimeStamp(time.Now().UnixMicro())
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders
		(id, owner_id, symbol, side, category, limit_micros, stop_micros, qty_sats, status, created_at, executed_micros)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.OwnerID, o.Symbol, string(o.Side), string(o.Category),
		int64(o.LimitMicros), int64(o.StopMicros), int64(o.QtySats),
		string(o.Status), int64(o.CreatedUnixM), int64(o.ExecutedMicros),
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// GetOrder fetches a single order by id.
func (s *Store) GetOrder(ctx context.Context, id string) (*domain.PendingOrder, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, symbol, side, category, limit_micros, stop_micros, qty_sats, status, created_at, executed_micros
		FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// ListPendingByOwner returns a user's pending orders, oldest first.
func (s *Store) ListPendingByOwner(ctx context.Context, ownerID string) ([]domain.PendingOrder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, symbol, side, category, limit_micros, stop_micros, qty_sats, status, created_at, executed_micros
		FROM orders WHERE owner_id = ? AND status = ? ORDER BY created_at ASC`,
		ownerID, string(domain.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var out []domain.PendingOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// ExecuteOrder transitions a pending order to executed at the given price.
// The status check is part of the UPDATE, so two concurrent executions of
// the same order cannot both succeed.
func (s *Store) ExecuteOrder(ctx context.Context, id string, price quant.PriceMicros) (*domain.PendingOrder, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status = ?, executed_micros = ?
		WHERE id = ? AND status = ?`,
		string(domain.StatusExecuted), int64(price), id, string(domain.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to execute order: %w", err)
	}
	if err := requireTransition(ctx, s, res, id); err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, id)
}

// CancelOrder transitions a pending order to cancelled.
func (s *Store) CancelOrder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status = ? WHERE id = ? AND status = ?`,
		string(domain.StatusCancelled), id, string(domain.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	return requireTransition(ctx, s, res, id)
}

// requireTransition distinguishes a missing row from a lost status race
// after a conditional UPDATE touched zero rows.
func requireTransition(ctx context.Context, s *Store, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := s.GetOrder(ctx, id); errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return ErrConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.PendingOrder, error) {
	var o domain.PendingOrder
	var side, category, status string
	var limit, stop, qty, created, executed int64
	err := row.Scan(&o.ID, &o.OwnerID, &o.Symbol, &side, &category,
		&limit, &stop, &qty, &status, &created, &executed)
	if err != nil {
		return nil, err
	}
	o.Side = domain.Side(side)
	o.Category = domain.Category(category)
	o.Status = domain.Status(status)
	o.LimitMicros = quant.PriceMicros(limit)
	o.StopMicros = quant.PriceMicros(stop)
	o.QtySats = quant.QtySats(qty)
	o.CreatedUnixM = quant.TimeStamp(created)
	o.ExecutedMicros = quant.PriceMicros(executed)
	return &o, nil
}

// CreateAlert inserts a new price alert.
func (s *Store) CreateAlert(ctx context.Context, a *domain.AlertConfig) error {
	if a.CreatedUnixM == 0 {
		a.CreatedUnixM = quant.TimeStamp(time.Now().UnixMicro())
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (id, owner_id, symbol, target_micros, direction, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.OwnerID, a.Symbol, int64(a.TargetMicros), a.Direction, int64(a.CreatedUnixM))
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// ListAlertsByOwner returns a user's alerts, oldest first.
func (s *Store) ListAlertsByOwner(ctx context.Context, ownerID string) ([]domain.AlertConfig, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, symbol, target_micros, direction, created_at
		FROM alerts WHERE owner_id = ? ORDER BY created_at ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var out []domain.AlertConfig
	for rows.Next() {
		var a domain.AlertConfig
		var target, created int64
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Symbol, &target, &a.Direction, &created); err != nil {
			return nil, err
		}
		a.TargetMicros = quant.PriceMicros(target)
		a.CreatedUnixM = quant.TimeStamp(created)
		a.SetActive(true)
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteAlert removes a fired or abandoned alert.
func (s *Store) DeleteAlert(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM alerts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
