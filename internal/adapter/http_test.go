// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-health-keeper/internal/config"
	"github.com/MKhiriev/go-health-keeper/internal/logger"
	"github.com/MKhiriev/go-health-keeper/models"
)

// newTestAdapter создаёт httpRemoteAdapter, направленный на тестовый сервер
func newTestAdapter(t *testing.T, serverURL string) *httpRemoteAdapter {
	t.Helper()
	log := logger.NewClientLogger("test", "")
	adapterCfg := config.ClientAdapter{HTTPAddress: serverURL}
	appCfg := config.ClientApp{}
	syncCfg := config.ClientSync{FetchRetries: 2}

	a, err := NewHTTPRemoteAdapter(adapterCfg, appCfg, syncCfg, log)
	require.NoError(t, err)
	return a.(*httpRemoteAdapter)
}

// signTestToken issues a signed HS256 token with the given claims.
func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// ── FetchWindow ──────────────────────────────────────────────────────────────

func TestFetchWindow_Success(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	window := models.DayWindow(day)

	remote := []models.RecordDTO{
		{ID: "meal-1", Kind: models.KindMeal, LoggedAt: day.Add(8 * time.Hour), Payload: json.RawMessage(`{"name":"breakfast","calories":450}`)},
		{ID: "water-1", Kind: models.KindWater, LoggedAt: day.Add(9 * time.Hour), Payload: json.RawMessage(`{"volume_ml":250}`)},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/records", r.URL.Path)
		assert.Equal(t, "2026-03-14", r.URL.Query().Get("date"))
		assert.Equal(t, "Bearer sometoken", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(remote)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("sometoken")

	got, err := a.FetchWindow(context.Background(), window)

	require.NoError(t, err)
	assert.Equal(t, window, got.Window)
	require.Equal(t, 2, got.Len())
	assert.True(t, got.Has("meal-1"))
	assert.True(t, got.Has("water-1"))
	assert.Equal(t, models.StateSynced, got.Records["meal-1"].SyncState)
	assert.Equal(t, models.KindWater, got.Records["water-1"].Kind)
}

func TestFetchWindow_MultiDayWindow(t *testing.T) {
	start := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	window := models.Window{Start: start, End: start.AddDate(0, 0, 3)}

	var mu sync.Mutex
	var dates []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		dates = append(dates, r.URL.Query().Get("date"))
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode([]models.RecordDTO{
			{ID: "weight-" + r.URL.Query().Get("date"), Kind: models.KindWeight, Payload: json.RawMessage(`{"weight_kg":82.5}`)},
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.FetchWindow(context.Background(), window)

	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-14", "2026-03-15", "2026-03-16"}, dates)
	assert.Equal(t, 3, got.Len())
}

func TestFetchWindow_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("bad gateway"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.FetchWindow(context.Background(), models.DayWindow(time.Now()))

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 0, got.Len())
}

func TestFetchWindow_Unauthorized_NoRetry(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("token is expired"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.FetchWindow(context.Background(), models.DayWindow(time.Now()))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchWindow_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // сервер уже остановлен: все попытки упрутся в отказ соединения

	a := newTestAdapter(t, srv.URL)
	_, err := a.FetchWindow(context.Background(), models.DayWindow(time.Now()))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

// ── Push ─────────────────────────────────────────────────────────────────────

func TestPush_Success(t *testing.T) {
	record := models.Record{
		ID:       "meal-1",
		Kind:     models.KindMeal,
		LoggedAt: time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC),
		Payload:  json.RawMessage(`{"name":"lunch","calories":640}`),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/records", r.URL.Path)
		assert.Equal(t, "Bearer sometoken", r.Header.Get("Authorization"))

		var dto models.RecordDTO
		require.NoError(t, json.NewDecoder(r.Body).Decode(&dto))
		assert.Equal(t, record.ID, dto.ID)
		assert.Equal(t, record.Kind, dto.Kind)
		assert.True(t, dto.LoggedAt.Equal(record.LoggedAt))
		assert.JSONEq(t, string(record.Payload), string(dto.Payload))
		assert.Nil(t, dto.UpdatedAt)

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("sometoken")

	err := a.Push(context.Background(), record)
	require.NoError(t, err)
}

func TestPush_ValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("payload failed validation"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	err := a.Push(context.Background(), models.Record{ID: "meal-1", Kind: models.KindMeal})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPush_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("token is expired"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	err := a.Push(context.Background(), models.Record{ID: "meal-1", Kind: models.KindMeal})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPush_NoRetryOnServerError(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	err := a.Push(context.Background(), models.Record{ID: "meal-1", Kind: models.KindMeal})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

// ── Remove ───────────────────────────────────────────────────────────────────

func TestRemove_Success(t *testing.T) {
	router := chi.NewRouter()
	router.Delete("/api/records/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rec-42", chi.URLParam(r, "id"))
		assert.Equal(t, "Bearer sometoken", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("sometoken")

	err := a.Remove(context.Background(), models.RecordRef{Kind: models.KindMeal, ID: "rec-42"})
	require.NoError(t, err)
}

func TestRemove_NotFoundTreatedAsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("record not found"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	err := a.Remove(context.Background(), models.RecordRef{Kind: models.KindWater, ID: "rec-42"})

	require.NoError(t, err)
}

func TestRemove_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal server error"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	err := a.Remove(context.Background(), models.RecordRef{Kind: models.KindWeight, ID: "rec-42"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

// ── Ping ─────────────────────────────────────────────────────────────────────

func TestPing_Reachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, "/api/records", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	assert.True(t, a.Ping(context.Background()))
}

func TestPing_ReachableOnAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	assert.True(t, a.Ping(context.Background()))
}

func TestPing_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	a := newTestAdapter(t, srv.URL)
	assert.False(t, a.Ping(context.Background()))
}

// ── Tokens ───────────────────────────────────────────────────────────────────

func TestSetToken_TrimsAndStores(t *testing.T) {
	a := newTestAdapter(t, "http://localhost:1")

	a.SetToken("  sometoken  \n")
	assert.Equal(t, "sometoken", a.Token())

	a.SetToken("")
	assert.Empty(t, a.Token())
}

func TestSetToken_IntrospectsClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signTestToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": jwt.NewNumericDate(exp),
	})

	a := newTestAdapter(t, "http://localhost:1")
	a.SetToken(token)

	assert.Equal(t, "user-1", a.tokenInfo.Subject)
	require.NotNil(t, a.tokenInfo.ExpiresAt)
	assert.True(t, a.tokenInfo.ExpiresAt.Equal(exp))
}

func TestNewHTTPRemoteAdapter_InstallsConfiguredToken(t *testing.T) {
	log := logger.NewClientLogger("test", "")
	adapterCfg := config.ClientAdapter{HTTPAddress: "http://localhost:8080"}
	appCfg := config.ClientApp{AuthToken: "configured-token"}

	a, err := NewHTTPRemoteAdapter(adapterCfg, appCfg, config.ClientSync{}, log)

	require.NoError(t, err)
	assert.Equal(t, "configured-token", a.Token())
}

func TestAuthedCalls_ExpiredTokenFailsFast(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	expired := signTestToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})

	a := newTestAdapter(t, srv.URL)
	a.SetToken(expired)

	err := a.Push(context.Background(), models.Record{ID: "meal-1", Kind: models.KindMeal})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = a.FetchWindow(context.Background(), models.DayWindow(time.Now()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = a.Remove(context.Background(), models.RecordRef{Kind: models.KindMeal, ID: "meal-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// ни один из вызовов не должен был дойти до сервера
	assert.Equal(t, int32(0), calls.Load())
}

func TestPing_IgnoresExpiredToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	expired := signTestToken(t, jwt.MapClaims{
		"exp": jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})

	a := newTestAdapter(t, srv.URL)
	a.SetToken(expired)

	assert.True(t, a.Ping(context.Background()))
}

// ── normalizeBaseURL ─────────────────────────────────────────────────────────

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid http", "http://localhost:8080", "http://localhost:8080", false},
		{"no scheme", "localhost:8080", "http://localhost:8080", false},
		{"trailing slash", "http://localhost:8080/", "http://localhost:8080", false},
		{"empty", "", "", true},
		{"no host", "http://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// ── error classification ─────────────────────────────────────────────────────

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrTransport))
	assert.True(t, IsRetryable(ErrRemoteUnavailable))
	assert.False(t, IsRetryable(ErrUnauthorized))
	assert.False(t, IsRetryable(ErrValidation))
	assert.False(t, IsRetryable(nil))
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, IsPermanent(ErrValidation))
	assert.False(t, IsPermanent(ErrTransport))
	assert.False(t, IsPermanent(ErrRemoteUnavailable))
	assert.False(t, IsPermanent(ErrUnauthorized))
	assert.False(t, IsPermanent(nil))
}
