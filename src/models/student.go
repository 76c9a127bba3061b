package models

import "time"

// Student is a roster entry. StudentID is human assigned and stable; ID is the
// store identifier.
type Student struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	StudentID string    `bson:"studentId" json:"studentId" validate:"required"`
	Name      string    `bson:"name" json:"name" validate:"required"`
	Level     string    `bson:"level" json:"level" validate:"required,academiclevel"`
	ClassName string    `bson:"className" json:"className" validate:"required,classforlevel"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// Tab is the directory tab label of the student's class, e.g. "ZJC - 1A".
func (s Student) Tab() string {
	return s.Level + " - " + s.ClassName
}
