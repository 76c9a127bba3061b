package settings

import (
	"context"
	"testing"

	"github.com/Dizey-pro/Students-results/src/database"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/services/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type teacherStub struct{ c *models.TeacherCredentials }

func (t teacherStub) TeacherCredentials() *models.TeacherCredentials { return t.c }

func TestSetTeacherCredentialsHashes(t *testing.T) {
	store := database.NewMemoryStore()
	svc := NewService(store, teacherStub{})

	require.NoError(t, svc.SetTeacherCredentials(context.Background(), TeacherCredentialsInput{Username: " HOD ", Password: "s3cret!"}))

	doc, err := store.Get(context.Background(), database.SettingsCollection, models.TeacherCredentialsID)
	require.NoError(t, err)
	assert.Equal(t, "HOD", doc["username"])
	stored, _ := doc["password"].(string)
	assert.NotEqual(t, "s3cret!", stored)
	assert.True(t, auth.CheckPassword(stored, "s3cret!"))
}

func TestTeacherUsername(t *testing.T) {
	_, ok := NewService(database.NewMemoryStore(), teacherStub{}).TeacherUsername()
	assert.False(t, ok)

	name, ok := NewService(database.NewMemoryStore(), teacherStub{&models.TeacherCredentials{Username: "SHS-STAFF"}}).TeacherUsername()
	assert.True(t, ok)
	assert.Equal(t, "SHS-STAFF", name)
}
