package property

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/evcraddock/rentbook/internal/db"
)

// Repository stores properties in a SQL database. It implements Store.
type Repository struct {
	db      *sql.DB
	dialect db.Dialect
	now     func() time.Time
}

var _ Store = (*Repository)(nil)

// NewRepository creates a property repository.
func NewRepository(d *db.DB) *Repository {
	return NewRepositoryWithDialect(d.DB, d.Dialect)
}

// NewRepositoryWithDialect creates a repository over a raw connection.
func NewRepositoryWithDialect(conn *sql.DB, dialect db.Dialect) *Repository {
	return &Repository{db: conn, dialect: dialect, now: time.Now}
}

const insertSQL = `INSERT INTO properties
	(id, apartment_name, house_number, tenant_name, phone_number, rent_amount, debt, is_paid, payment_history, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectColumns = `id, apartment_name, house_number, tenant_name, phone_number, rent_amount, debt, is_paid, payment_history`

// ListAll returns every property in insertion order.
func (r *Repository) ListAll(ctx context.Context) (rows []Row, err error) {
	query := fmt.Sprintf("SELECT %s FROM properties ORDER BY created_at, id", selectColumns)
	result, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer func() {
		if closeErr := result.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	rows = []Row{}
	for result.Next() {
		row, err := scanRow(result)
		if err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		rows = append(rows, *row)
	}

	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}

	return rows, nil
}

// Insert adds a new property and returns it with its generated ID.
func (r *Repository) Insert(ctx context.Context, row Row) (Row, error) {
	p := FromRow(row)
	p.ID = uuid.NewString()

	history, err := encodeHistory(p.PaymentHistory)
	if err != nil {
		return Row{}, err
	}

	now := r.now().UTC()
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(insertSQL),
		p.ID, p.ApartmentName, p.HouseNumber, p.TenantName, p.PhoneNumber,
		p.RentAmount, p.Debt, p.IsPaid, history, now, now,
	); err != nil {
		return Row{}, fmt.Errorf("inserting property: %w", err)
	}

	saved, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return Row{}, err
	}
	if saved == nil {
		return Row{}, fmt.Errorf("property %s not found after insert", p.ID)
	}
	return *saved, nil
}

// GetByID returns a property row by its ID, or nil when there is none.
func (r *Repository) GetByID(ctx context.Context, id string) (*Row, error) {
	query := r.dialect.Rebind(fmt.Sprintf("SELECT %s FROM properties WHERE id = ?", selectColumns))

	row, err := scanRow(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %s: %w", id, err)
	}

	return row, nil
}

// Update overwrites the non-nil fields of row on property id.
// It returns nil when no property has that id.
func (r *Repository) Update(ctx context.Context, id string, row Row) (*Row, error) {
	var sets []string
	var args []interface{}

	set := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if row.ApartmentName != nil {
		set("apartment_name", *row.ApartmentName)
	}
	if row.HouseNumber != nil {
		set("house_number", *row.HouseNumber)
	}
	if row.TenantName != nil {
		set("tenant_name", *row.TenantName)
	}
	if row.PhoneNumber != nil {
		set("phone_number", *row.PhoneNumber)
	}
	if row.RentAmount != nil {
		set("rent_amount", *row.RentAmount)
	}
	if row.Debt != nil {
		set("debt", *row.Debt)
	}
	if row.IsPaid != nil {
		set("is_paid", *row.IsPaid)
	}
	if row.PaymentHistory != nil {
		history, err := encodeHistory(row.PaymentHistory)
		if err != nil {
			return nil, err
		}
		set("payment_history", history)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	set("updated_at", r.now().UTC())
	args = append(args, id)

	query := fmt.Sprintf("UPDATE properties SET %s WHERE id = ?", strings.Join(sets, ", "))
	result, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("updating property: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// Delete removes a property by ID. Deleting an unknown ID is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind("DELETE FROM properties WHERE id = ?"), id); err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}
	return nil
}

// scanRow scans a property row from a database row.
func scanRow(row interface{ Scan(...interface{}) error }) (*Row, error) {
	var r Row
	var apartment, house, tenant, phone, history sql.NullString
	var rent, debt decimal.NullDecimal
	var paid sql.NullBool

	if err := row.Scan(
		&r.ID, &apartment, &house, &tenant, &phone,
		&rent, &debt, &paid, &history,
	); err != nil {
		return nil, err
	}

	if apartment.Valid {
		r.ApartmentName = &apartment.String
	}
	if house.Valid {
		r.HouseNumber = &house.String
	}
	if tenant.Valid {
		r.TenantName = &tenant.String
	}
	if phone.Valid {
		r.PhoneNumber = &phone.String
	}
	if rent.Valid {
		r.RentAmount = &rent.Decimal
	}
	if debt.Valid {
		r.Debt = &debt.Decimal
	}
	if paid.Valid {
		r.IsPaid = &paid.Bool
	}
	if history.Valid && history.String != "" {
		payments, err := decodeHistory(history.String)
		if err != nil {
			return nil, err
		}
		r.PaymentHistory = payments
	}

	return &r, nil
}

func encodeHistory(payments []Payment) (string, error) {
	if payments == nil {
		payments = []Payment{}
	}
	data, err := json.Marshal(payments)
	if err != nil {
		return "", fmt.Errorf("encoding payment history: %w", err)
	}
	return string(data), nil
}

func decodeHistory(raw string) ([]Payment, error) {
	var payments []Payment
	if err := json.Unmarshal([]byte(raw), &payments); err != nil {
		return nil, fmt.Errorf("decoding payment history: %w", err)
	}
	return payments, nil
}
