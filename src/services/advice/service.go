// Package advice produces study advice for students and class insights for
// teachers through a text generation model.
package advice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dizey-pro/Students-results/src/models"
	"github.com/Dizey-pro/Students-results/src/services/aggregate"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

const (
	FallbackNoText    = "Unable to generate analysis at this time."
	FallbackTransport = "Error connecting to AI service. Please try again later."
	NoMarksMessage    = "No marks entered yet to analyze."
)

// ErrNoResults is returned when a student has nothing to be advised on.
var ErrNoResults = errors.New("student has no results")

// Cache stores generated text. utils.RedisCache satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Service struct {
	gen    Generator
	cache  Cache
	ttl    time.Duration
	logger log.Logger
}

func NewService(gen Generator, cache Cache, ttl time.Duration, logger log.Logger) *Service {
	return &Service{gen: gen, cache: cache, ttl: ttl, logger: logger}
}

// StudentKey is the cache key of a student's advice.
func StudentKey(studentID string) string {
	return "advice:student:" + studentID
}

func classKey(rc models.ResultContext, s aggregate.Stats) string {
	return fmt.Sprintf("advice:class:%s:%d:%.1f:%d:%d",
		strings.Join([]string{rc.Level, rc.ClassName, rc.Subject, rc.Term, rc.Year}, "|"),
		s.Count, s.Average, s.Min, s.Max)
}

// Student returns study advice based on studentID's most recent results.
func (s *Service) Student(ctx context.Context, results []models.Result, studentID string) (string, error) {
	recent := aggregate.Recent(results, studentID, StudentPromptResults)
	if len(recent) == 0 {
		return "", ErrNoResults
	}
	return s.generate(ctx, StudentKey(studentID), StudentPrompt(recent)), nil
}

// Class returns an insight on the marks entered for roster in rc. Marks do not
// need to be saved. Without any usable mark the model is not called.
func (s *Service) Class(ctx context.Context, rc models.ResultContext, roster []models.Student, marks map[string]string) (string, aggregate.Stats) {
	stats := aggregate.ClassStats(roster, marks)
	if !stats.HasData {
		return NoMarksMessage, stats
	}
	return s.generate(ctx, classKey(rc, stats), ClassPrompt(rc.ClassName, rc.Subject, stats)), stats
}

// Invalidate drops the cached advice of the given students.
func (s *Service) Invalidate(ctx context.Context, studentIDs ...string) error {
	keys := make([]string, 0, len(studentIDs))
	for _, id := range studentIDs {
		keys = append(keys, StudentKey(id))
	}
	return s.cache.Delete(ctx, keys...)
}

// generate never fails: model errors become the fallback text, which is not
// cached.
func (s *Service) generate(ctx context.Context, key, prompt string) string {
	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		level.Warn(s.logger).Log("msg", "advice cache read failed", "key", key, "err", err)
	} else if ok {
		return cached
	}

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		level.Error(s.logger).Log("msg", "text generation failed", "key", key, "err", err)
		if errors.Is(err, ErrNoText) {
			return FallbackNoText
		}
		return FallbackTransport
	}

	if err := s.cache.Set(ctx, key, text, s.ttl); err != nil {
		level.Warn(s.logger).Log("msg", "advice cache write failed", "key", key, "err", err)
	}
	return text
}
