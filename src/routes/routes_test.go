package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Dizey-pro/Students-results/src/controllers"
	"github.com/Dizey-pro/Students-results/src/database"
	"github.com/Dizey-pro/Students-results/src/logger"
	"github.com/Dizey-pro/Students-results/src/middleware"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/services/advice"
	"github.com/Dizey-pro/Students-results/src/services/auth"
	"github.com/Dizey-pro/Students-results/src/services/profiles"
	"github.com/Dizey-pro/Students-results/src/services/settings"
	"github.com/Dizey-pro/Students-results/src/services/students"
	"github.com/Dizey-pro/Students-results/src/state"
	"github.com/Dizey-pro/Students-results/src/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type recordingJobs struct {
	mu  sync.Mutex
	ids [][]string
}

func (r *recordingJobs) InvalidateAdvice(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, ids)
	return nil
}

type cannedGen struct{ text string }

func (g cannedGen) Generate(context.Context, string) (string, error) { return g.text, nil }

type fakePrinter struct{ err error }

func (p fakePrinter) PDF(_ context.Context, html string) ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-" + html[:15]), nil
}

type testEnv struct {
	app    *fiber.App
	store  *database.MemoryStore
	state  *state.State
	tokens *utils.TokenIssuer
	jobs   *recordingJobs
	h      *controllers.Handler
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := database.NewMemoryStore()
	for _, s := range []bson.M{
		{"studentId": "ST-1", "name": "Tariro Moyo", "level": "ZJC", "className": "1A"},
		{"studentId": "ST-2", "name": "Anesu Dube", "level": "ZJC", "className": "1A"},
		{"studentId": "ST-3", "name": "Chipo Ncube", "level": "ZJC", "className": "1A"},
		{"studentId": "ST-4", "name": "Blessing Phiri", "level": "O Level", "className": "3 Arts"},
	} {
		_, err := store.Create(ctx, database.StudentsCollection, s)
		require.NoError(t, err)
	}

	hash, err := auth.HashPassword("@TEACHER-SECURE-25")
	require.NoError(t, err)
	st := state.New()
	syncer := &state.Syncer{
		State:          st,
		Store:          store,
		Log:            logger.Nop(),
		DefaultTeacher: models.TeacherCredentials{Username: "SHS-STAFF", Password: hash},
	}
	require.NoError(t, syncer.Run(ctx))
	require.Eventually(t, st.Ready, 2*time.Second, 5*time.Millisecond)

	tokens := utils.NewTokenIssuer("test-secret", time.Hour)
	cache := utils.NewRedisCache(nil)
	jobs := &recordingJobs{}
	h := &controllers.Handler{
		State:     st,
		Store:     store,
		Validator: utils.NewValidator(),
		Auth:      auth.NewService("STAFF", "@STAFF-001", st, tokens, cache),
		Profiles:  profiles.NewService(store),
		Students:  students.NewService(store, st),
		Settings:  settings.NewService(store, st),
		Advice:    advice.NewService(cannedGen{"Keep going."}, cache, time.Hour, logger.Nop()),
		Jobs:      jobs,
		Printer:   fakePrinter{},
		Logger:    logger.Nop(),
		Now:       func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
	}

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler(logger.Nop())})
	InitRoutes(app, h, middleware.AuthJWT(tokens, cache, logger.Nop()))
	return &testEnv{app: app, store: store, state: st, tokens: tokens, jobs: jobs, h: h}
}

func (e *testEnv) token(t *testing.T, role models.Role, username string) string {
	t.Helper()
	p := models.Principal{ID: auth.PrincipalID(role, username), Role: role, Username: username}
	if role == models.RoleStudent {
		p.StudentID = username
	}
	tok, _, err := e.tokens.GenerateJWT(p)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	status, raw := e.doRaw(t, method, path, token, body)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return status, out
}

func (e *testEnv) doRaw(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, raw
}

var englishTerm1 = map[string]string{
	"level": "ZJC", "className": "1A", "subject": "English", "term": "Term 1", "year": "2025",
}

func (e *testEnv) waitResults(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(e.state.Results()) == n }, 2*time.Second, 5*time.Millisecond)
}

func TestLogin(t *testing.T) {
	e := newEnv(t)

	status, body := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"role": "admin", "username": "STAFF", "password": "@STAFF-001",
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])
	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, "System Admin", profile["name"])

	status, body = e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"role": "teacher", "username": "SHS-STAFF", "password": "@TEACHER-SECURE-25",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "teacher", body["role"])

	status, body = e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"role": "teacher", "username": "SHS-STAFF", "password": "guess",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid Teacher username or password.", body["message"])

	status, body = e.do(t, http.MethodPost, "/auth/login", "", map[string]string{"role": "student", "username": "ST-1"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ST-1", body["studentId"])

	status, _ = e.do(t, http.MethodPost, "/auth/login", "", map[string]string{"role": "parent", "username": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLogoutWithoutRedis(t *testing.T) {
	e := newEnv(t)
	status, _ := e.do(t, http.MethodPost, "/auth/logout", e.token(t, models.RoleStudent, "ST-1"), nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAuthRequired(t *testing.T) {
	e := newEnv(t)
	status, _ := e.do(t, http.MethodGet, "/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = e.do(t, http.MethodGet, "/profile", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestBulkSaveCreatesThenUpdates(t *testing.T) {
	e := newEnv(t)
	teacher := e.token(t, models.RoleTeacher, "SHS-STAFF")

	status, body := e.do(t, http.MethodPost, "/results/bulk", teacher, map[string]interface{}{
		"context": englishTerm1,
		"marks":   map[string]interface{}{"ST-1": "85", "ST-2": "", "ST-3": "abc", "ST-4": 90},
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 1, body["created"])
	assert.EqualValues(t, 0, body["updated"])
	skipped := body["skipped"].([]interface{})
	require.Len(t, skipped, 1)
	assert.Equal(t, "ST-3", skipped[0].(map[string]interface{})["studentId"])
	e.waitResults(t, 1)

	r := e.state.Results()[0]
	assert.Equal(t, "A", r.Grade)
	assert.Equal(t, "Tariro Moyo", r.StudentName)

	status, body = e.do(t, http.MethodPost, "/results/bulk", teacher, map[string]interface{}{
		"context": englishTerm1,
		"marks":   map[string]interface{}{"ST-1": 85, "ST-2": "49"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["created"])
	assert.EqualValues(t, 1, body["unchanged"])
	e.waitResults(t, 2)

	status, body = e.do(t, http.MethodPost, "/results/bulk", teacher, map[string]interface{}{
		"context": englishTerm1,
		"marks":   map[string]interface{}{"ST-1": "91", "ST-2": "49"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["updated"])
	assert.EqualValues(t, 1, body["unchanged"])
	require.Eventually(t, func() bool {
		for _, r := range e.state.Results() {
			if r.StudentID == "ST-1" {
				return r.Score == 91 && r.Grade == "A+"
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
	assert.Len(t, e.state.Results(), 2)

	e.jobs.mu.Lock()
	defer e.jobs.mu.Unlock()
	assert.Equal(t, [][]string{{"ST-1"}, {"ST-2"}, {"ST-1"}}, e.jobs.ids)
}

func TestBulkSavePartialFailure(t *testing.T) {
	e := newEnv(t)
	teacher := e.token(t, models.RoleTeacher, "SHS-STAFF")
	e.store.FailWrites = func(collection string, doc bson.M) error {
		if doc["studentId"] == "ST-2" {
			return errors.New("quota exceeded")
		}
		return nil
	}

	status, body := e.do(t, http.MethodPost, "/results/bulk", teacher, map[string]interface{}{
		"context": englishTerm1,
		"marks":   map[string]interface{}{"ST-1": "70", "ST-2": "60"},
	})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.EqualValues(t, 1, body["applied"])
	assert.Equal(t, []interface{}{"ST-2"}, body["failed"])
	e.waitResults(t, 1)
}

func TestBulkSaveGuards(t *testing.T) {
	e := newEnv(t)
	req := map[string]interface{}{"context": englishTerm1, "marks": map[string]string{"ST-1": "70"}}

	status, _ := e.do(t, http.MethodPost, "/results/bulk", "", req)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = e.do(t, http.MethodPost, "/results/bulk", e.token(t, models.RoleStudent, "ST-1"), req)
	assert.Equal(t, http.StatusForbidden, status)

	bad := map[string]interface{}{
		"context": map[string]string{"level": "ZJC", "className": "3 Arts", "subject": "English", "term": "Term 1", "year": "2025"},
		"marks":   map[string]string{"ST-1": "70"},
	}
	status, body := e.do(t, http.MethodPost, "/results/bulk", e.token(t, models.RoleTeacher, "SHS-STAFF"), bad)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["fields"], "className")
	assert.Empty(t, e.state.Results())
}

func TestResultContext(t *testing.T) {
	e := newEnv(t)
	teacher := e.token(t, models.RoleTeacher, "SHS-STAFF")
	_, err := e.store.Create(context.Background(), database.ResultsCollection, bson.M{
		"studentId": "ST-2", "studentName": "Anesu Dube", "level": "ZJC", "className": "1A",
		"subject": "English", "score": 66, "grade": "C", "term": "Term 1", "year": "2025",
	})
	require.NoError(t, err)
	e.waitResults(t, 1)

	status, body := e.do(t, http.MethodGet, "/results/context?level=ZJC&className=1A&subject=English&term=Term%201&year=2025", teacher, nil)
	require.Equal(t, http.StatusOK, status, body)
	roster := body["students"].([]interface{})
	require.Len(t, roster, 3)
	assert.Equal(t, "Anesu Dube", roster[0].(map[string]interface{})["name"])
	assert.Equal(t, map[string]interface{}{"ST-2": "66"}, body["marks"])
}

func TestTranscriptAccess(t *testing.T) {
	e := newEnv(t)
	_, err := e.store.Create(context.Background(), database.ResultsCollection, bson.M{
		"studentId": "ST-1", "studentName": "Tariro Moyo", "level": "ZJC", "className": "1A",
		"subject": "Mathematics", "score": 72, "grade": "B", "term": "Term 2", "year": "2024",
	})
	require.NoError(t, err)
	e.waitResults(t, 1)

	own := e.token(t, models.RoleStudent, "ST-1")
	status, body := e.do(t, http.MethodGet, "/students/ST-1/transcript", own, nil)
	require.Equal(t, http.StatusOK, status)
	years := body["years"].([]interface{})
	require.Len(t, years, 1)
	assert.Equal(t, "2024", years[0].(map[string]interface{})["year"])

	status, _ = e.do(t, http.MethodGet, "/students/ST-2/transcript", own, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = e.do(t, http.MethodGet, "/students/ST-2/transcript", e.token(t, models.RoleAdmin, "STAFF"), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["empty"])
	assert.Equal(t, "No academic records found for this student ID.", body["message"])

	status, raw := e.doRaw(t, http.MethodGet, "/students/ST-1/transcript.pdf", own, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))

	e.h.Printer = fakePrinter{err: errors.New("no chrome")}
	status, _ = e.doRaw(t, http.MethodGet, "/students/ST-1/transcript.pdf", own, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestStudentDashboard(t *testing.T) {
	e := newEnv(t)
	own := e.token(t, models.RoleStudent, "ST-3")

	status, body := e.do(t, http.MethodGet, "/students/ST-3/dashboard", own, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "0.00", body["gpa"])
	assert.Equal(t, "0", body["average"])

	status, _ = e.do(t, http.MethodPost, "/students/ST-3/advice", own, nil)
	assert.Equal(t, http.StatusNotFound, status)

	_, err := e.store.Create(context.Background(), database.ResultsCollection, bson.M{
		"studentId": "ST-3", "subject": "Shona", "score": 81, "grade": "A", "term": "Term 1", "year": "2025",
	})
	require.NoError(t, err)
	e.waitResults(t, 1)

	status, body = e.do(t, http.MethodGet, "/students/ST-3/dashboard", own, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "3.00", body["gpa"])
	assert.Equal(t, "81.0", body["average"])

	status, body = e.do(t, http.MethodPost, "/students/ST-3/advice", own, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Keep going.", body["advice"])
}

func TestClassInsights(t *testing.T) {
	e := newEnv(t)
	teacher := e.token(t, models.RoleTeacher, "SHS-STAFF")

	status, body := e.do(t, http.MethodPost, "/results/insights", teacher, map[string]interface{}{
		"context": englishTerm1, "marks": map[string]string{},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "No marks entered yet to analyze.", body["insight"])

	status, body = e.do(t, http.MethodPost, "/results/insights", teacher, map[string]interface{}{
		"context": englishTerm1, "marks": map[string]string{"ST-1": "50", "ST-2": "71"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Keep going.", body["insight"])
	stats := body["stats"].(map[string]interface{})
	assert.EqualValues(t, 60.5, stats["average"])
	assert.EqualValues(t, 71, stats["max"])
}

func TestStudentsAdmin(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, models.RoleAdmin, "STAFF")

	status, body := e.do(t, http.MethodPost, "/students", admin, map[string]string{
		"studentId": "ST-1", "name": "Someone", "level": "ZJC", "className": "1A",
	})
	assert.Equal(t, http.StatusConflict, status, body)

	status, _ = e.do(t, http.MethodPost, "/students", admin, map[string]string{
		"studentId": "ST-9", "name": "Rudo", "level": "A Level", "className": "1A",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = e.do(t, http.MethodPost, "/students", admin, map[string]string{
		"studentId": "ST-9", "name": "Rudo", "level": "A Level", "className": "Lower 6 Arts",
	})
	require.Equal(t, http.StatusCreated, status, body)
	id := body["id"].(string)
	require.Eventually(t, func() bool { return len(e.state.Students()) == 5 }, 2*time.Second, 5*time.Millisecond)

	status, _ = e.do(t, http.MethodPut, "/students/"+id, admin, map[string]string{
		"studentId": "ST-9", "name": "Rudo M", "level": "A Level", "className": "Upper 6 Arts",
	})
	assert.Equal(t, http.StatusOK, status)

	status, _ = e.do(t, http.MethodPost, "/students", e.token(t, models.RoleTeacher, "SHS-STAFF"), map[string]string{
		"studentId": "ST-10", "name": "x", "level": "ZJC", "className": "1A",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = e.do(t, http.MethodGet, "/students?search=moyo", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])

	status, body = e.do(t, http.MethodGet, "/dashboard/overview", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 5, body["totalStudents"])
}

func TestProfileAndSettings(t *testing.T) {
	e := newEnv(t)
	teacher := e.token(t, models.RoleTeacher, "SHS-STAFF")

	status, body := e.do(t, http.MethodGet, "/profile", teacher, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Mrs. Davis", body["name"])

	status, _ = e.do(t, http.MethodPut, "/profile", teacher, map[string]string{"name": "Mr. Banda"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = e.do(t, http.MethodPut, "/profile", teacher, map[string]string{"phone": "0772 123 456"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "0772 123 456", body["phone"])

	status, _ = e.do(t, http.MethodPut, "/settings/teacher-auth", teacher, map[string]string{"username": "x", "password": "yyyyyy"})
	assert.Equal(t, http.StatusForbidden, status)

	admin := e.token(t, models.RoleAdmin, "STAFF")
	status, _ = e.do(t, http.MethodPut, "/settings/teacher-auth", admin, map[string]string{"username": "HOD", "password": "new-pass-1"})
	require.Equal(t, http.StatusOK, status)
	require.Eventually(t, func() bool {
		c := e.state.TeacherCredentials()
		return c != nil && c.Username == "HOD"
	}, 2*time.Second, 5*time.Millisecond)

	status, body = e.do(t, http.MethodGet, "/settings/teacher-auth", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]interface{}{"username": "HOD"}, body)

	status, _ = e.do(t, http.MethodPost, "/auth/login", "", map[string]string{"role": "teacher", "username": "HOD", "password": "new-pass-1"})
	assert.Equal(t, http.StatusOK, status)
}

func TestCatalog(t *testing.T) {
	e := newEnv(t)
	status, body := e.do(t, http.MethodGet, "/catalog?className=Upper%206%20Commercials", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["subjects"], "Business Studies")
	assert.NotContains(t, body["subjects"], "Physics")
	years := body["years"].([]interface{})
	assert.Equal(t, "2026", years[0])
	assert.Equal(t, "2016", years[len(years)-1])
}
