// Package state holds the latest snapshots of the shared collections.
//
// Snapshots are replaced, never mutated: a reader keeps a consistent view for
// as long as it holds the slice it was given.
package state

import (
	"context"
	"sync"

	"github.com/Dizey-pro/Students-results/src/database"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

type State struct {
	mu          sync.RWMutex
	results     []models.Result
	students    []models.Student
	teacherAuth *models.TeacherCredentials

	resultsReady  bool
	studentsReady bool
	settingsReady bool
}

func New() *State {
	return &State{}
}

// Results returns the latest result snapshot. Callers must not modify it.
func (s *State) Results() []models.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results
}

// Students returns the latest student snapshot. Callers must not modify it.
func (s *State) Students() []models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.students
}

// TeacherCredentials returns the shared teacher login, nil while none is stored.
func (s *State) TeacherCredentials() *models.TeacherCredentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.teacherAuth
}

// Ready reports whether every collection has delivered its first snapshot.
func (s *State) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resultsReady && s.studentsReady && s.settingsReady
}

func (s *State) ReplaceResults(results []models.Result) {
	s.mu.Lock()
	s.results = results
	s.resultsReady = true
	s.mu.Unlock()
}

func (s *State) ReplaceStudents(students []models.Student) {
	s.mu.Lock()
	s.students = students
	s.studentsReady = true
	s.mu.Unlock()
}

func (s *State) ReplaceTeacherCredentials(c *models.TeacherCredentials) {
	s.mu.Lock()
	s.teacherAuth = c
	s.settingsReady = true
	s.mu.Unlock()
}

// Syncer keeps a State in step with the store.
type Syncer struct {
	State *State
	Store database.Store
	Log   log.Logger

	// DefaultTeacher is written to settings/teacher_auth when it is missing.
	// Its password must already be hashed.
	DefaultTeacher models.TeacherCredentials
}

// Run subscribes to the shared collections and applies every snapshot until
// ctx is done. It returns once the subscriptions are established.
func (y *Syncer) Run(ctx context.Context) error {
	collections := []string{
		database.ResultsCollection,
		database.StudentsCollection,
		database.SettingsCollection,
	}
	for _, c := range collections {
		ch, err := y.Store.Subscribe(ctx, c)
		if err != nil {
			return errors.Wrapf(err, "subscribe %s", c)
		}
		go y.consume(ctx, ch)
	}
	return nil
}

func (y *Syncer) consume(ctx context.Context, ch <-chan database.Snapshot) {
	for snap := range ch {
		if err := y.Apply(ctx, snap); err != nil {
			level.Error(y.Log).Log("msg", "snapshot rejected", "collection", snap.Collection, "err", err)
		}
	}
}

// Apply replaces the state held for snap's collection.
func (y *Syncer) Apply(ctx context.Context, snap database.Snapshot) error {
	switch snap.Collection {
	case database.ResultsCollection:
		results, err := database.DecodeAll[models.Result](snap.Docs)
		if err != nil {
			return err
		}
		y.State.ReplaceResults(results)
		level.Debug(y.Log).Log("msg", "results replaced", "count", len(results))

	case database.StudentsCollection:
		students, err := database.DecodeAll[models.Student](snap.Docs)
		if err != nil {
			return err
		}
		y.State.ReplaceStudents(students)
		level.Debug(y.Log).Log("msg", "students replaced", "count", len(students))

	case database.SettingsCollection:
		for _, d := range snap.Docs {
			if d["_id"] != models.TeacherCredentialsID {
				continue
			}
			var c models.TeacherCredentials
			if err := database.Decode(d, &c); err != nil {
				return err
			}
			y.State.ReplaceTeacherCredentials(&c)
			return nil
		}
		y.State.ReplaceTeacherCredentials(nil)
		return y.seedTeacher(ctx)
	}
	return nil
}

func (y *Syncer) seedTeacher(ctx context.Context) error {
	if y.DefaultTeacher.Username == "" {
		return nil
	}
	level.Info(y.Log).Log("msg", "seeding default teacher credentials", "username", y.DefaultTeacher.Username)
	return y.Store.Set(ctx, database.SettingsCollection, models.TeacherCredentialsID, bson.M{
		"username": y.DefaultTeacher.Username,
		"password": y.DefaultTeacher.Password,
	})
}
