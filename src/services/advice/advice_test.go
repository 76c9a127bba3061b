package advice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Dizey-pro/Students-results/src/logger"
	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/services/aggregate"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGen struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
}

func (f *fakeGen) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

type mapCache struct {
	mu   sync.Mutex
	vals map[string]string
}

func newMapCache() *mapCache { return &mapCache{vals: map[string]string{}} }

func (c *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vals[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.vals, k)
	}
	return nil
}

func studentResults() []models.Result {
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	var out []models.Result
	subjects := []string{"Mathematics", "English", "Shona", "History", "FRS", "Geography"}
	for i, s := range subjects {
		out = append(out, models.Result{
			StudentID: "ST-1", Subject: s, Score: 50 + i*5, Grade: "D",
			CreatedAt: t0.Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}

func TestStudentPromptQuotesFiveNewest(t *testing.T) {
	recent := aggregate.Recent(studentResults(), "ST-1", 10)
	p := StudentPrompt(recent)
	assert.Contains(t, p, "Here are my recent grades: Geography: 75% (D), FRS: 70% (D), History: 65% (D), Shona: 60% (D), English: 55% (D).")
	assert.NotContains(t, p, "Mathematics")
	assert.Contains(t, p, "encouraging academic counselor")
}

func TestClassPrompt(t *testing.T) {
	p := ClassPrompt("3 Sciences", "Physics", aggregate.Stats{Count: 2, Average: 67.5, Min: 45, Max: 90, HasData: true})
	assert.Contains(t, p, "marks for 3 Sciences Physics.")
	assert.Contains(t, p, "Average: 67.5%, Highest: 90%, Lowest: 45%.")
	assert.Contains(t, p, "Total students marked: 2.")
}

func TestStudentAdviceIsCached(t *testing.T) {
	gen := &fakeGen{text: "Study more."}
	cache := newMapCache()
	svc := NewService(gen, cache, time.Hour, logger.Nop())

	text, err := svc.Student(context.Background(), studentResults(), "ST-1")
	require.NoError(t, err)
	assert.Equal(t, "Study more.", text)

	text, err = svc.Student(context.Background(), studentResults(), "ST-1")
	require.NoError(t, err)
	assert.Equal(t, "Study more.", text)
	assert.Len(t, gen.prompts, 1)

	require.NoError(t, svc.Invalidate(context.Background(), "ST-1"))
	_, err = svc.Student(context.Background(), studentResults(), "ST-1")
	require.NoError(t, err)
	assert.Len(t, gen.prompts, 2)
}

func TestStudentAdviceWithoutResults(t *testing.T) {
	gen := &fakeGen{text: "x"}
	svc := NewService(gen, newMapCache(), time.Hour, logger.Nop())
	_, err := svc.Student(context.Background(), studentResults(), "ST-404")
	assert.ErrorIs(t, err, ErrNoResults)
	assert.Empty(t, gen.prompts)
}

func TestFallbackTextsAreNotCached(t *testing.T) {
	cache := newMapCache()
	gen := &fakeGen{err: errors.Wrap(ErrNoText, "status 500")}
	svc := NewService(gen, cache, time.Hour, logger.Nop())

	text, err := svc.Student(context.Background(), studentResults(), "ST-1")
	require.NoError(t, err)
	assert.Equal(t, FallbackNoText, text)

	gen.err = errors.New("dial tcp: refused")
	text, _ = svc.Student(context.Background(), studentResults(), "ST-1")
	assert.Equal(t, FallbackTransport, text)
	assert.Empty(t, cache.vals)
}

func TestClassInsightNoMarks(t *testing.T) {
	gen := &fakeGen{text: "x"}
	svc := NewService(gen, newMapCache(), time.Hour, logger.Nop())
	roster := []models.Student{{StudentID: "a"}}

	text, stats := svc.Class(context.Background(), models.ResultContext{}, roster, map[string]string{"a": ""})
	assert.Equal(t, NoMarksMessage, text)
	assert.False(t, stats.HasData)
	assert.Empty(t, gen.prompts)
}

func TestClassInsight(t *testing.T) {
	gen := &fakeGen{text: "Good class."}
	svc := NewService(gen, newMapCache(), time.Hour, logger.Nop())
	rc := models.ResultContext{Level: "ZJC", ClassName: "1A", Subject: "English", Term: "Term 1", Year: "2025"}
	roster := []models.Student{{StudentID: "a"}, {StudentID: "b"}}

	text, stats := svc.Class(context.Background(), rc, roster, map[string]string{"a": "40", "b": "80"})
	assert.Equal(t, "Good class.", text)
	assert.Equal(t, 60.0, stats.Average)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "marks for 1A English.")
}

func TestGeminiClient(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/m-1:generateContent", r.URL.Path)
		assert.Equal(t, "k&y", r.URL.Query().Get("key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGeminiClient(srv.URL+"/", "m-1", "k&y")
	text, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "prompt", got.Contents[0].Parts[0].Text)
}

func TestGeminiClientNoText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "bad" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := NewGeminiClient(srv.URL, "m", "good").Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNoText)

	_, err = NewGeminiClient(srv.URL, "m", "bad").Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNoText)
}

func TestGeminiClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewGeminiClient(url, "m", "k").Generate(context.Background(), "p")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoText)
}
