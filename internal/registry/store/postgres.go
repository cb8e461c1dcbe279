package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"kyc-ledger/internal/registry/models"
)

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// every store method works identically inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists the registry collections in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
	q  querier
}

// NewPostgres constructs a PostgreSQL-backed registry store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db}
}

// InTx runs fn against a view of the store bound to a single database
// transaction. fn's writes commit together when it returns nil and roll back
// together when it returns an error, so an infrastructure failure partway
// through a multi-statement mutation cannot persist partial state.
func (s *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		// Already inside a transaction-scoped view.
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck
	if err := fn(&PostgresStore{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (name, fingerprint, owner, verified, upvotes, downvotes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
		RETURNING name
	`
	var stored string
	err := s.q.QueryRowContext(ctx, query,
		customer.Name,
		customer.Fingerprint,
		customer.Owner,
		customer.Verified,
		customer.Upvotes,
		customer.Downvotes,
	).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrConflict
		}
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCustomer(ctx context.Context, name string) (*models.Customer, error) {
	query := `
		SELECT name, fingerprint, owner, verified, upvotes, downvotes
		FROM customers
		WHERE name = $1
	`
	return scanCustomer(s.q.QueryRowContext(ctx, query, name))
}

func (s *PostgresStore) GetCustomerByFingerprint(ctx context.Context, fingerprint string) (*models.Customer, error) {
	query := `
		SELECT name, fingerprint, owner, verified, upvotes, downvotes
		FROM customers
		WHERE fingerprint = $1
	`
	return scanCustomer(s.q.QueryRowContext(ctx, query, fingerprint))
}

func (s *PostgresStore) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE customers
		SET fingerprint = $2, owner = $3, verified = $4, upvotes = $5, downvotes = $6
		WHERE name = $1
	`
	res, err := s.q.ExecContext(ctx, query,
		customer.Name,
		customer.Fingerprint,
		customer.Owner,
		customer.Verified,
		customer.Upvotes,
		customer.Downvotes,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) DeleteCustomer(ctx context.Context, name string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM customers WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	query := `
		SELECT name, fingerprint, owner, verified, upvotes, downvotes
		FROM customers
		ORDER BY name
	`
	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []*models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.Name, &c.Fingerprint, &c.Owner, &c.Verified, &c.Upvotes, &c.Downvotes); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateBank(ctx context.Context, bank *models.Bank) error {
	query := `
		INSERT INTO banks (address, name, reg_number, kyc_permission, reports, kyc_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
		RETURNING address
	`
	var stored string
	err := s.q.QueryRowContext(ctx, query,
		bank.Address,
		bank.Name,
		bank.RegNumber,
		bank.KYCPermission,
		bank.Reports,
		bank.KYCCount,
	).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrConflict
		}
		return fmt.Errorf("create bank: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBank(ctx context.Context, address string) (*models.Bank, error) {
	query := `
		SELECT address, name, reg_number, kyc_permission, reports, kyc_count
		FROM banks
		WHERE address = $1
	`
	var b models.Bank
	err := s.q.QueryRowContext(ctx, query, address).
		Scan(&b.Address, &b.Name, &b.RegNumber, &b.KYCPermission, &b.Reports, &b.KYCCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get bank: %w", err)
	}
	return &b, nil
}

func (s *PostgresStore) UpdateBank(ctx context.Context, bank *models.Bank) error {
	query := `
		UPDATE banks
		SET name = $2, reg_number = $3, kyc_permission = $4, reports = $5, kyc_count = $6
		WHERE address = $1
	`
	res, err := s.q.ExecContext(ctx, query,
		bank.Address,
		bank.Name,
		bank.RegNumber,
		bank.KYCPermission,
		bank.Reports,
		bank.KYCCount,
	)
	if err != nil {
		return fmt.Errorf("update bank: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) DeleteBank(ctx context.Context, address string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM banks WHERE address = $1`, address)
	if err != nil {
		return fmt.Errorf("delete bank: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) ListBanks(ctx context.Context) ([]*models.Bank, error) {
	query := `
		SELECT address, name, reg_number, kyc_permission, reports, kyc_count
		FROM banks
		ORDER BY address
	`
	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	defer rows.Close()

	var out []*models.Bank
	for rows.Next() {
		var b models.Bank
		if err := rows.Scan(&b.Address, &b.Name, &b.RegNumber, &b.KYCPermission, &b.Reports, &b.KYCCount); err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountBanks(ctx context.Context) (int, error) {
	var count int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM banks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count banks: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) CreateRequest(ctx context.Context, request *models.VerificationRequest) error {
	query := `
		INSERT INTO verification_requests (fingerprint, bank, customer_name)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
		RETURNING fingerprint
	`
	var stored string
	err := s.q.QueryRowContext(ctx, query,
		request.Fingerprint,
		request.Bank,
		request.CustomerName,
	).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrConflict
		}
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRequest(ctx context.Context, fingerprint string) (*models.VerificationRequest, error) {
	query := `
		SELECT fingerprint, bank, customer_name
		FROM verification_requests
		WHERE fingerprint = $1
	`
	var r models.VerificationRequest
	err := s.q.QueryRowContext(ctx, query, fingerprint).
		Scan(&r.Fingerprint, &r.Bank, &r.CustomerName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) DeleteRequest(ctx context.Context, fingerprint string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM verification_requests WHERE fingerprint = $1`, fingerprint)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return requireAffected(res)
}

func scanCustomer(row *sql.Row) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.Name, &c.Fingerprint, &c.Owner, &c.Verified, &c.Upvotes, &c.Downvotes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	return &c, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
