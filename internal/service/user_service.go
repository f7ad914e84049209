package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classbook/classbook-api/internal/models"
	"github.com/classbook/classbook-api/internal/schedule"
	appErrors "github.com/classbook/classbook-api/pkg/errors"
)

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, email string) error
}

// UpdateUserRequest describes the mutable profile fields.
type UpdateUserRequest struct {
	Name   string `json:"name" validate:"required"`
	Age    int    `json:"age" validate:"omitempty,gte=0"`
	Phone  string `json:"phone"`
	Gender string `json:"gender"`
	Plan   string `json:"plan"`
}

// UserService coordinates member reads and next-class resolution.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService instantiates UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// Get loads a user by email, including their schedule references.
func (s *UserService) Get(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	return user, nil
}

// List returns users with pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Update modifies the user's profile fields.
func (s *UserService) Update(ctx context.Context, email string, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	user, err := s.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	user.Name = req.Name
	user.Age = req.Age
	user.Phone = req.Phone
	user.Gender = req.Gender
	user.Plan = req.Plan
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	return user, nil
}

// Delete removes a user account.
func (s *UserService) Delete(ctx context.Context, email string) error {
	if _, err := s.Get(ctx, email); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, email); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	return nil
}

// NextClass resolves the date of the user's nearest upcoming class relative
// to the reference date, or the no-class sentinel when nothing is booked.
func (s *UserService) NextClass(ctx context.Context, email, referenceDate string) (string, error) {
	user, err := s.Get(ctx, email)
	if err != nil {
		return "", err
	}
	return schedule.NextClass(referenceDate, occurrencesOf(user)), nil
}

// occurrencesOf maps the user's three schedule reference lists onto the
// resolver's input. Weekday names are normalized to upper case; records are
// stored canonical but older rows may predate that.
func occurrencesOf(user *models.User) schedule.UserOccurrences {
	occ := schedule.UserOccurrences{}
	for _, ref := range user.FixedSchedules {
		occ.FixedWeekDays = append(occ.FixedWeekDays, schedule.WeekDay(strings.ToUpper(string(ref.WeekDay))))
	}
	for _, ref := range user.VariableSchedules {
		occ.OneOffDates = append(occ.OneOffDates, ref.Day)
	}
	for _, ref := range user.CanceledSchedules {
		occ.CanceledDates = append(occ.CanceledDates, ref.Day)
	}
	return occ
}
