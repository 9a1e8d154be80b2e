package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

// echoAdminID writes the admin ID found in the context, or 0.
var echoAdminID = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, _ := AdminIDFromContext(r.Context())
	w.Write([]byte(strconv.FormatInt(id, 10)))
})

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate(7)
	assert.NoError(t, err)

	protected := RequireAuth(ts, nil)(echoAdminID)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/questions", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "7", rr.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/questions", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "7", rr.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/questions", nil)
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "unauthorized")
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/questions", nil)
		req.Header.Set("Authorization", "Basic "+token)
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequireAuth_DeletedAdmin(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate(7)
	assert.NoError(t, err)

	serve := func(exists AdminExists) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/admin/questions/1", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		RequireAuth(ts, exists)(echoAdminID).ServeHTTP(rr, req)
		return rr
	}

	t.Run("still stored", func(t *testing.T) {
		rr := serve(func(_ context.Context, id int64) (bool, error) { return id == 7, nil })
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("deleted", func(t *testing.T) {
		rr := serve(func(context.Context, int64) (bool, error) { return false, nil })
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		rr := serve(func(context.Context, int64) (bool, error) { return false, errors.New("disk I/O error") })
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "disk")
	})
}

func TestAdminIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := AdminIDFromContext(req.Context())
	assert.False(t, ok)
}
