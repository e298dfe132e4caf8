package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/gokatarajesh/student-toolkit/internal/auth"
	"github.com/gokatarajesh/student-toolkit/internal/auth/jwt"
)

type memCounter struct {
	hits map[string]int64
	err  error
}

func (m *memCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.hits == nil {
		m.hits = make(map[string]int64)
	}
	m.hits[key]++
	return m.hits[key], nil
}

func serve(h http.Handler, email string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/questions/generate", nil)
	if email != "" {
		req = req.WithContext(auth.WithClaims(req.Context(), &jwt.Claims{Email: email}))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestLimiter_RejectsOverLimit(t *testing.T) {
	counter := &memCounter{}
	h := NewLimiter(counter, "generate", 2, time.Minute, zerolog.Nop()).Middleware(okHandler())

	assert.Equal(t, http.StatusNoContent, serve(h, "a@b.com").Code)
	assert.Equal(t, http.StatusNoContent, serve(h, "a@b.com").Code)

	rec := serve(h, "a@b.com")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate_limited")
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// other callers keep their own budget
	assert.Equal(t, http.StatusNoContent, serve(h, "c@d.com").Code)
}

func TestLimiter_FailsOpen(t *testing.T) {
	counter := &memCounter{err: errors.New("redis down")}
	h := NewLimiter(counter, "generate", 1, time.Minute, zerolog.Nop()).Middleware(okHandler())

	assert.Equal(t, http.StatusNoContent, serve(h, "a@b.com").Code)
	assert.Equal(t, http.StatusNoContent, serve(h, "a@b.com").Code)
}

func TestLimiter_DisabledWhenZero(t *testing.T) {
	counter := &memCounter{}
	h := NewLimiter(counter, "generate", 0, time.Minute, zerolog.Nop()).Middleware(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, serve(h, "a@b.com").Code)
	}
	assert.Empty(t, counter.hits)
}
