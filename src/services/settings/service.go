// Package settings manages the shared teacher login.
package settings

import (
	"context"
	"strings"

	"github.com/Dizey-pro/Students-results/src/database"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/services/auth"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

type TeacherCredentialsInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type Service struct {
	store    database.Store
	teachers auth.TeacherSource
}

func NewService(store database.Store, teachers auth.TeacherSource) *Service {
	return &Service{store: store, teachers: teachers}
}

// TeacherUsername returns the current teacher username, false until loaded.
func (s *Service) TeacherUsername() (string, bool) {
	c := s.teachers.TeacherCredentials()
	if c == nil {
		return "", false
	}
	return c.Username, true
}

// SetTeacherCredentials overwrites the teacher login. The password is stored
// hashed.
func (s *Service) SetTeacherCredentials(ctx context.Context, in TeacherCredentialsInput) error {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return err
	}
	err = s.store.Set(ctx, database.SettingsCollection, models.TeacherCredentialsID, bson.M{
		"username": strings.TrimSpace(in.Username),
		"password": hash,
	})
	return errors.Wrap(err, "save teacher credentials")
}
