package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classbook/classbook-api/internal/models"
)

// UserRepository provides persistence for members.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, name, email, password_hash, age, admin, phone, gender, plan, classes_to_recover, created_at, updated_at)
		VALUES (:id, :name, :email, :password_hash, :age, :admin, :phone, :gender, :plan, :classes_to_recover, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByEmail loads a user together with their three schedule reference
// lists.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, name, email, password_hash, age, admin, phone, gender, plan, classes_to_recover, created_at, updated_at FROM users WHERE email = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	if err := r.loadScheduleRefs(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by primary key, without schedule references.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, name, email, password_hash, age, admin, phone, gender, plan, classes_to_recover, created_at, updated_at FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users with optional filtering and pagination.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	base := "FROM users WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Plan != "" {
		conditions = append(conditions, fmt.Sprintf("plan = $%d", len(args)+1))
		args = append(args, filter.Plan)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"name": true, "email": true, "created_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, name, email, password_hash, age, admin, phone, gender, plan, classes_to_recover, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, sortBy, order, size, offset)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, total, nil
}

// Update modifies the mutable profile fields of a user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET name = :name, age = :age, phone = :phone, gender = :gender, plan = :plan, updated_at = :updated_at WHERE email = :email`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// Delete removes a user row.
func (r *UserRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE email = $1", email); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// AdjustClassesToRecover shifts the banked-recovery counter by delta,
// floored at zero.
func (r *UserRepository) AdjustClassesToRecover(ctx context.Context, email string, delta int) error {
	const query = `UPDATE users SET classes_to_recover = GREATEST(classes_to_recover + $2, 0), updated_at = NOW() WHERE email = $1`
	if _, err := r.db.ExecContext(ctx, query, email, delta); err != nil {
		return fmt.Errorf("adjust classes to recover: %w", err)
	}
	return nil
}

// loadScheduleRefs reconstructs the user's denormalized schedule lists from
// the membership tables, in enrollment order.
func (r *UserRepository) loadScheduleRefs(ctx context.Context, user *models.User) error {
	const fixedQuery = `SELECT fs.id, fs.hour_of_the_day, fs.week_day
		FROM fixed_schedule_users fsu
		JOIN fixed_schedules fs ON fs.id = fsu.schedule_id
		WHERE fsu.user_email = $1 ORDER BY fsu.position`
	if err := r.db.SelectContext(ctx, &user.FixedSchedules, fixedQuery, user.Email); err != nil {
		return fmt.Errorf("load fixed schedule refs: %w", err)
	}

	const variableQuery = `SELECT vs.id, vs.hour_of_the_day, vs.day
		FROM variable_schedule_users vsu
		JOIN variable_schedules vs ON vs.id = vsu.schedule_id
		WHERE vsu.user_email = $1 ORDER BY vsu.position`
	if err := r.db.SelectContext(ctx, &user.VariableSchedules, variableQuery, user.Email); err != nil {
		return fmt.Errorf("load variable schedule refs: %w", err)
	}

	const canceledQuery = `SELECT cs.id, cs.hour_of_the_day, cs.day
		FROM canceled_schedule_users csu
		JOIN canceled_schedules cs ON cs.id = csu.schedule_id
		WHERE csu.user_email = $1 ORDER BY csu.position`
	if err := r.db.SelectContext(ctx, &user.CanceledSchedules, canceledQuery, user.Email); err != nil {
		return fmt.Errorf("load canceled schedule refs: %w", err)
	}

	return nil
}
