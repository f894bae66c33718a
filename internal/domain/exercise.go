// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is a single logged activity. UserID references a User but does not own it.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Description string             `bson:"description" json:"description"`
	Duration    int                `bson:"duration" json:"duration"` // minutes
	Date        time.Time          `bson:"date" json:"date"`         // UTC midnight of the calendar day
	CreatedAt   time.Time          `bson:"createdAt" json:"-"`
}

// ExerciseLog is a user's filtered, date-ordered exercises.
type ExerciseLog struct {
	User      User
	Exercises []Exercise
}

// Count is the number of entries in the log.
func (l *ExerciseLog) Count() int {
	return len(l.Exercises)
}
