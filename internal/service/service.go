package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/safestudy/safestudy-go/internal/breach"
	"github.com/safestudy/safestudy-go/internal/model"
)

// ErrInvalidInput wraps request validation failures.
var ErrInvalidInput = errors.New("invalid input")

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs struct-tag validation and flattens failures into one
// ErrInvalidInput error.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "max":
			msgs = append(msgs, field+" must be at most "+fe.Param()+" characters")
		case "email":
			msgs = append(msgs, field+" must be a valid email address")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

// BreachChecker is the subset of *breach.Checker the services use.
type BreachChecker interface {
	Check(ctx context.Context, password string) breach.Result
	CheckMany(ctx context.Context, passwords []string, concurrency int) []breach.Result
}

type userStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

type entryStore interface {
	Insert(ctx context.Context, e *model.PasswordEntry) error
	GetByID(ctx context.Context, userID int64, id string) (*model.PasswordEntry, error)
	ListByUser(ctx context.Context, userID int64) ([]model.PasswordEntry, error)
	UpdateAssessment(ctx context.Context, e *model.PasswordEntry) error
	Delete(ctx context.Context, userID int64, id string) error
}
