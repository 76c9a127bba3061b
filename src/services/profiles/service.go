// Package profiles keeps the per principal profile documents.
package profiles

import (
	"context"
	"strings"

	"github.com/Dizey-pro/Students-results/src/database"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// ErrNameChangeForbidden is returned when a non admin tries to rename itself.
var ErrNameChangeForbidden = errors.New("only administrators can change their name")

var defaultNames = map[models.Role]string{
	models.RoleStudent: "Alex Johnson",
	models.RoleTeacher: "Mrs. Davis",
	models.RoleAdmin:   "System Admin",
}

type Service struct {
	store database.Store
}

func NewService(store database.Store) *Service {
	return &Service{store: store}
}

// Default is the profile created on a principal's first visit.
func Default(p models.Principal) models.UserProfile {
	studentID := "STAFF-001"
	if p.Role == models.RoleStudent {
		studentID = p.StudentID
		if studentID == "" {
			studentID = "ST-2024-001"
		}
	}
	return models.UserProfile{
		ID:        p.ID,
		Name:      defaultNames[p.Role],
		Role:      p.Role,
		Email:     string(p.Role) + "@shungu.edu",
		Phone:     "",
		StudentID: studentID,
	}
}

// Ensure returns the profile of p, creating the default one when missing.
func (s *Service) Ensure(ctx context.Context, p models.Principal) (*models.UserProfile, error) {
	doc, err := s.store.Get(ctx, database.ProfilesCollection, p.ID)
	if err == nil {
		var profile models.UserProfile
		if err := database.Decode(doc, &profile); err != nil {
			return nil, err
		}
		return &profile, nil
	}
	if errors.Cause(err) != database.ErrNotFound {
		return nil, err
	}

	profile := Default(p)
	doc, err = database.ToDocument(profile)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, database.ProfilesCollection, p.ID, doc); err != nil {
		return nil, errors.Wrap(err, "create profile")
	}
	return &profile, nil
}

// Update merges patch into p's profile. Only administrators may set a name.
func (s *Service) Update(ctx context.Context, p models.Principal, patch models.ProfilePatch) (*models.UserProfile, error) {
	profile, err := s.Ensure(ctx, p)
	if err != nil {
		return nil, err
	}

	fields := bson.M{}
	if patch.Name != nil && *patch.Name != profile.Name {
		if p.Role != models.RoleAdmin {
			return nil, ErrNameChangeForbidden
		}
		profile.Name = strings.TrimSpace(*patch.Name)
		fields["name"] = profile.Name
	}
	if patch.Email != nil {
		profile.Email = strings.TrimSpace(*patch.Email)
		fields["email"] = profile.Email
	}
	if patch.Phone != nil {
		profile.Phone = strings.TrimSpace(*patch.Phone)
		fields["phone"] = profile.Phone
	}
	if len(fields) == 0 {
		return profile, nil
	}

	if err := s.store.Update(ctx, database.ProfilesCollection, p.ID, fields); err != nil {
		return nil, errors.Wrap(err, "update profile")
	}
	return profile, nil
}
