// Package memory keeps users and exercises in process memory. It backs local runs
// with database.driver=memory and the handler tests.
package memory

import (
	"alcyxob/exercise-tracker/internal/domain"
	"alcyxob/exercise-tracker/internal/repository"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository stores users in insertion order.
type UserRepository struct {
	mu    sync.RWMutex
	users []domain.User
	index map[primitive.ObjectID]int
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{index: make(map[primitive.ObjectID]int)}
}

// Create implements repository.UserRepository.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if err := ctx.Err(); err != nil {
		return primitive.NilObjectID, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()

	r.index[user.ID] = len(r.users)
	r.users = append(r.users, *user)
	return user.ID, nil
}

// GetByID implements repository.UserRepository.
func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := r.users[i]
	return &user, nil
}

// List implements repository.UserRepository.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out, nil
}

// ExerciseRepository stores exercises grouped by user.
type ExerciseRepository struct {
	mu     sync.RWMutex
	byUser map[primitive.ObjectID][]domain.Exercise
}

var _ repository.ExerciseRepository = (*ExerciseRepository)(nil)

func NewExerciseRepository() *ExerciseRepository {
	return &ExerciseRepository{byUser: make(map[primitive.ObjectID][]domain.Exercise)}
}

// Create implements repository.ExerciseRepository.
func (r *ExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if err := ctx.Err(); err != nil {
		return primitive.NilObjectID, err
	}
	if exercise.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise user ID is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	exercise.ID = primitive.NewObjectID()
	exercise.CreatedAt = time.Now().UTC()
	r.byUser[exercise.UserID] = append(r.byUser[exercise.UserID], *exercise)
	return exercise.ID, nil
}

// Find implements repository.ExerciseRepository.
func (r *ExerciseRepository) Find(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Exercise{}
	for _, ex := range r.byUser[filter.UserID] {
		if !filter.From.IsZero() && ex.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && ex.Date.After(filter.To) {
			continue
		}
		out = append(out, ex)
	}

	// ObjectIDs created in this process increase monotonically, so stable order
	// by insertion matches the _id tiebreak used by the mongo store.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Count returns the number of exercises stored for a user.
func (r *ExerciseRepository) Count(userID primitive.ObjectID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID])
}

// HealthChecker always reports healthy.
type HealthChecker struct{}

func (HealthChecker) Ping(ctx context.Context) error {
	return ctx.Err()
}
