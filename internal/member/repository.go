package member

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// Repository persists members.
type Repository interface {
	Create(ctx context.Context, m Member) error
	FindByID(ctx context.Context, id string) (Member, error)
	FindByEmail(ctx context.Context, email string) (Member, error)
	Find(ctx context.Context, filter Filter) ([]Member, error)
	Update(ctx context.Context, id string, patch Patch) (Member, error)
	SetPaymentStatus(ctx context.Context, id string, status PaymentStatus) (Member, error)
	Delete(ctx context.Context, id string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed member repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const memberColumns = `id, name, email, password_hash, age, join_date, membership_type, assigned_trainer,
        is_paid, last_payment_date, next_due_date, overdue, created_at, updated_at`

// Create inserts a new member. The unique index on email turns duplicates into ErrDuplicateEmail.
func (r *PostgresRepository) Create(ctx context.Context, m Member) error {
	memberID, err := uuid.Parse(m.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO members (`+memberColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		memberID, m.Name, m.Email, m.PasswordHash, m.Age, m.JoinDate.UTC(), m.MembershipType, m.AssignedTrainer,
		m.PaymentStatus.IsPaid, m.PaymentStatus.LastPaymentDate, m.PaymentStatus.NextDueDate, m.PaymentStatus.Overdue,
		m.CreatedAt.UTC(), m.UpdatedAt.UTC())
	return translate(err)
}

// FindByID fetches a member by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Member, error) {
	memberID, err := uuid.Parse(id)
	if err != nil {
		return Member{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, memberID)
	return scanMember(row)
}

// FindByEmail fetches a member by their unique email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Member, error) {
	row := r.db.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE email = $1`, email)
	return scanMember(row)
}

// Find lists members matching the filter ordered by join date.
func (r *PostgresRepository) Find(ctx context.Context, filter Filter) ([]Member, error) {
	rows, err := r.db.Query(ctx, `SELECT `+memberColumns+` FROM members
        WHERE ($1::boolean IS NULL OR is_paid = $1)
        ORDER BY join_date, created_at`, filter.IsPaid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Update merges the non-nil patch fields into the stored member and returns the result.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch Patch) (Member, error) {
	memberID, err := uuid.Parse(id)
	if err != nil {
		return Member{}, ErrNotFound
	}
	var joinDate *time.Time
	if patch.JoinDate != nil {
		d := patch.JoinDate.UTC()
		joinDate = &d
	}
	row := r.db.QueryRow(ctx, `UPDATE members SET
            name = COALESCE($2, name),
            email = COALESCE($3, email),
            age = COALESCE($4, age),
            join_date = COALESCE($5, join_date),
            membership_type = COALESCE($6, membership_type),
            assigned_trainer = COALESCE($7, assigned_trainer),
            password_hash = COALESCE($8, password_hash),
            updated_at = $9
        WHERE id = $1
        RETURNING `+memberColumns,
		memberID, patch.Name, patch.Email, patch.Age, joinDate, patch.MembershipType, patch.AssignedTrainer,
		patch.PasswordHash, time.Now().UTC())
	return scanMember(row)
}

// SetPaymentStatus replaces the payment state in a single statement, so concurrent
// writers for the same member never interleave field updates.
func (r *PostgresRepository) SetPaymentStatus(ctx context.Context, id string, status PaymentStatus) (Member, error) {
	memberID, err := uuid.Parse(id)
	if err != nil {
		return Member{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `UPDATE members SET
            is_paid = $2, last_payment_date = $3, next_due_date = $4, overdue = $5, updated_at = $6
        WHERE id = $1
        RETURNING `+memberColumns,
		memberID, status.IsPaid, status.LastPaymentDate, status.NextDueDate, status.Overdue, time.Now().UTC())
	return scanMember(row)
}

// Delete removes a member by identifier.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	memberID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM members WHERE id = $1`, memberID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMember(row pgx.Row) (Member, error) {
	var (
		id uuid.UUID
		m  Member
	)
	err := row.Scan(&id, &m.Name, &m.Email, &m.PasswordHash, &m.Age, &m.JoinDate, &m.MembershipType, &m.AssignedTrainer,
		&m.PaymentStatus.IsPaid, &m.PaymentStatus.LastPaymentDate, &m.PaymentStatus.NextDueDate, &m.PaymentStatus.Overdue,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return Member{}, translate(err)
	}
	m.ID = id.String()
	m.JoinDate = m.JoinDate.UTC()
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return m, nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}
