package repository

import (
	"alcyxob/exercise-tracker/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound = RepositoryError("not found")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// List returns every user in creation order.
	List(ctx context.Context) ([]domain.User, error)
}

// ExerciseFilter selects a user's exercises. Zero From/To leave that side of the range open;
// Limit <= 0 means no limit. Both bounds are inclusive.
type ExerciseFilter struct {
	UserID primitive.ObjectID
	From   time.Time
	To     time.Time
	Limit  int
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	// Find returns matching exercises sorted by date ascending, then by ID.
	Find(ctx context.Context, filter ExerciseFilter) ([]domain.Exercise, error)
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
