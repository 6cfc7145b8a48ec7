package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"zuru/internal/domain"
	"zuru/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `id, user_email, destination, booking_id, method, amount, travel_date,
	trip_type, return_date, travel_mode, vehicle_type, reference, idempotency_key, created_at`

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	var returnDate sql.NullTime
	if p.ReturnDate != nil {
		returnDate = sql.NullTime{Time: *p.ReturnDate, Valid: true}
	}

	var vehicle sql.NullString
	if p.VehicleType != nil {
		vehicle = sql.NullString{String: string(*p.VehicleType), Valid: true}
	}

	idempotencyKey := sql.NullString{String: p.IdempotencyKey, Valid: p.IdempotencyKey != ""}

	_, err := r.q.ExecContext(ctx, query,
		p.ID,
		p.UserEmail,
		p.Destination,
		p.BookingID,
		p.Method,
		p.Amount,
		p.TravelDate,
		p.TripType,
		returnDate,
		p.TravelMode,
		vehicle,
		p.Reference,
		idempotencyKey,
		p.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}

	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return payment, nil
}

// GetByIdempotencyKey retrieves a payment by its idempotency key.
// Returns nil if no payment exists with the given key.
func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE idempotency_key = $1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return payment, nil
}

// ListByEmail returns a user's payments, newest first.
func (r *PaymentRepository) ListByEmail(ctx context.Context, email string, limit int) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_email = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.list(ctx, query, email, limit)
}

// ListTravellingFrom returns a user's payments travelling at or after from, soonest first.
func (r *PaymentRepository) ListTravellingFrom(ctx context.Context, email string, from time.Time, limit int) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_email = $1 AND travel_date >= $2
		ORDER BY travel_date ASC
		LIMIT $3
	`
	return r.list(ctx, query, email, from, limit)
}

func (r *PaymentRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Payment, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}

func scanPayment(s scanner) (*domain.Payment, error) {
	var (
		p              domain.Payment
		returnDate     sql.NullTime
		vehicle        sql.NullString
		idempotencyKey sql.NullString
	)

	err := s.Scan(
		&p.ID,
		&p.UserEmail,
		&p.Destination,
		&p.BookingID,
		&p.Method,
		&p.Amount,
		&p.TravelDate,
		&p.TripType,
		&returnDate,
		&p.TravelMode,
		&vehicle,
		&p.Reference,
		&idempotencyKey,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if returnDate.Valid {
		rd := returnDate.Time
		p.ReturnDate = &rd
	}
	if vehicle.Valid {
		v := domain.VehicleType(vehicle.String)
		p.VehicleType = &v
	}
	p.IdempotencyKey = idempotencyKey.String

	return &p, nil
}
