package service

import (
	"alcyxob/exercise-tracker/internal/domain"
	"alcyxob/exercise-tracker/internal/observability"
	"alcyxob/exercise-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrValidationFailed = errors.New("validation failed")
)

// NewExercise is the input for AddExercise. A zero Date means today (UTC).
type NewExercise struct {
	Description string
	Duration    int
	Date        time.Time
}

// LogQuery narrows GetLog. Zero bounds are open; Limit <= 0 means unbounded.
type LogQuery struct {
	From  time.Time
	To    time.Time
	Limit int
}

type ExerciseService interface {
	AddExercise(ctx context.Context, userID primitive.ObjectID, in NewExercise) (*domain.User, *domain.Exercise, error)
	GetLog(ctx context.Context, userID primitive.ObjectID, q LogQuery) (*domain.ExerciseLog, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	userRepo     repository.UserRepository
	exerciseRepo repository.ExerciseRepository
	now          func() time.Time
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(userRepo repository.UserRepository, exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{
		userRepo:     userRepo,
		exerciseRepo: exerciseRepo,
		now:          time.Now,
	}
}

// AddExercise logs an exercise for an existing user.
//
// The user lookup and the insert are two separate store operations and are not atomic.
// Users are never deleted, so the window cannot be observed today.
func (s *exerciseService) AddExercise(ctx context.Context, userID primitive.ObjectID, in NewExercise) (*domain.User, *domain.Exercise, error) {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return nil, nil, fmt.Errorf("%w: description is required", ErrValidationFailed)
	}
	if in.Duration < 1 {
		return nil, nil, fmt.Errorf("%w: duration must be a positive number of minutes", ErrValidationFailed)
	}

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	user, err := s.lookupUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	exercise := &domain.Exercise{
		UserID:      user.ID,
		Description: in.Description,
		Duration:    in.Duration,
		Date:        domain.CalendarDate(date),
	}
	id, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, nil, err
	}
	exercise.ID = id

	observability.RecordExerciseLogged()
	return user, exercise, nil
}

// GetLog returns a user's exercises within the query range, earliest first.
func (s *exerciseService) GetLog(ctx context.Context, userID primitive.ObjectID, q LogQuery) (*domain.ExerciseLog, error) {
	if q.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrValidationFailed)
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return nil, fmt.Errorf("%w: 'from' must not be after 'to'", ErrValidationFailed)
	}

	user, err := s.lookupUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	exercises, err := s.exerciseRepo.Find(ctx, repository.ExerciseFilter{
		UserID: user.ID,
		From:   q.From,
		To:     q.To,
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, err
	}
	if exercises == nil {
		exercises = []domain.Exercise{}
	}

	return &domain.ExerciseLog{User: *user, Exercises: exercises}, nil
}

func (s *exerciseService) lookupUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
