package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"arena-social/internal/app"
	"arena-social/internal/core/auth"
	"arena-social/internal/testutil"
	"arena-social/internal/transport/http/router"
)

type env struct {
	app   *app.App
	api   *gin.Engine
	admin *gin.Engine
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	jwt := auth.NewJWTer("test-secret", "arena-test", time.Hour)
	a := app.New(db, nil, time.Minute, jwt, zap.NewNop())
	deps := router.Deps{
		Log:     a.Log,
		JWT:     a.JWT,
		Modules: a.Modules(),
		Mode:    gin.TestMode,
		Health:  a.Health,
		Limits:  router.Limits{RPS: 1e6, Burst: 1e6, PerIPRPS: 1e6, PerIPBurst: 1e6},
	}
	return &env{app: a, api: router.NewAPIEngine(deps), admin: router.NewAdminEngine(deps)}
}

func do(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errBody struct {
	Error string `json:"error"`
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

func (e *env) register(t *testing.T, name string) uint {
	t.Helper()
	w := do(t, e.api, http.MethodPost, "/users", map[string]string{
		"username": name, "password": "pw-" + name, "email": name + "@example.com",
	}, "")
	requireStatus(t, w, http.StatusOK)
	return decode[struct {
		ID uint `json:"id"`
	}](t, w).ID
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
