package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classbook/classbook-api/internal/models"
)

// PlanRepository provides persistence for membership plans.
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository creates a new plan repository.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// List returns all plans ordered by price.
func (r *PlanRepository) List(ctx context.Context) ([]models.Plan, error) {
	const query = `SELECT id, name, price, description, classes_per_week FROM plans ORDER BY price ASC`
	var plans []models.Plan
	if err := r.db.SelectContext(ctx, &plans, query); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// FindByID loads a plan by id.
func (r *PlanRepository) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	const query = `SELECT id, name, price, description, classes_per_week FROM plans WHERE id = $1`
	var plan models.Plan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Create inserts a new plan.
func (r *PlanRepository) Create(ctx context.Context, plan *models.Plan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	const query = `INSERT INTO plans (id, name, price, description, classes_per_week)
		VALUES (:id, :name, :price, :description, :classes_per_week)`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

// Update modifies an existing plan.
func (r *PlanRepository) Update(ctx context.Context, plan *models.Plan) error {
	const query = `UPDATE plans SET name = :name, price = :price, description = :description, classes_per_week = :classes_per_week WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	return nil
}

// Delete removes a plan.
func (r *PlanRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM plans WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}
