package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monotes/monotes/internal/common"
	"github.com/monotes/monotes/internal/server/auth"
	"github.com/monotes/monotes/internal/server/models"
	"github.com/monotes/monotes/internal/server/services"
)

var testSecret = []byte("test-secret")

type fakeUsers struct {
	registerErr error
	loginErr    error
}

func (f *fakeUsers) Register(ctx context.Context, userName, password string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: "user-1", UserName: userName}, nil
}

func (f *fakeUsers) Login(ctx context.Context, userName, password string) (*services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.TokenPair{UserID: "user-1", AccessToken: "acc", RefreshToken: "ref"}, nil
}

func (f *fakeUsers) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	if refreshToken != "ref" {
		return nil, common.ErrUnauthenticated
	}
	return &services.TokenPair{UserID: "user-1", AccessToken: "acc2", RefreshToken: "ref2"}, nil
}

type fakeNotes struct {
	byKey map[string]*models.Note // userID + "/" + noteID
}

func newFakeNotes() *fakeNotes { return &fakeNotes{byKey: make(map[string]*models.Note)} }

func (f *fakeNotes) Upsert(ctx context.Context, userID, noteID, content string, updatedAt int64) (*models.Note, error) {
	n := &models.Note{ID: "rec-" + noteID, UserID: userID, NoteID: noteID, Content: content, UpdatedAt: updatedAt}
	f.byKey[userID+"/"+noteID] = n
	return n, nil
}

func (f *fakeNotes) Fetch(ctx context.Context, userID, noteID string) (*models.Note, error) {
	return f.byKey[userID+"/"+noteID], nil
}

func (f *fakeNotes) List(ctx context.Context, userID string) ([]models.Note, error) {
	var out []models.Note
	for _, n := range f.byKey {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotes) Search(ctx context.Context, userID, q string) ([]models.Note, error) {
	return f.List(ctx, userID)
}

func (f *fakeNotes) Update(ctx context.Context, userID, noteID, content string, updatedAt int64) (*models.Note, error) {
	n, ok := f.byKey[userID+"/"+noteID]
	if !ok {
		return nil, common.ErrNotFound
	}
	n.Content = content
	n.UpdatedAt = updatedAt
	return n, nil
}

func (f *fakeNotes) SoftDelete(ctx context.Context, userID, noteID string) error {
	if _, ok := f.byKey[userID+"/"+noteID]; !ok {
		return common.ErrNotFound
	}
	delete(f.byKey, userID+"/"+noteID)
	return nil
}

func setupServer(t *testing.T) (*httptest.Server, *fakeUsers, *fakeNotes) {
	t.Helper()
	users := &fakeUsers{}
	notes := newFakeNotes()
	h := NewHandler(users, notes, nil)
	srv := httptest.NewServer(NewRouter(h, RouterConfig{
		JWTSecret:          testSecret,
		AuthRateLimitRPS:   100,
		AuthRateLimitBurst: 100,
	}))
	t.Cleanup(srv.Close)
	return srv, users, notes
}

func doRequest(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func userToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken("user-1", testSecret, time.Minute)
	require.NoError(t, err)
	return token
}

func TestPing(t *testing.T) {
	srv, _, _ := setupServer(t)
	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/ping", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	srv, _, _ := setupServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "",
		map[string]string{"username": "", "password": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterConflict(t *testing.T) {
	srv, users, _ := setupServer(t)
	users.registerErr = common.ErrAlreadyExists

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "",
		map[string]string{"username": "alice", "password": "pw"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLoginAndRefresh(t *testing.T) {
	srv, _, _ := setupServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "",
		map[string]string{"username": "alice", "password": "pw"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pair tokenPairResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pair))
	assert.Equal(t, "user-1", pair.UserID)

	resp = doRequest(t, http.MethodPost, srv.URL+"/api/v1/auth/refresh", "",
		map[string]string{"refreshToken": pair.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodPost, srv.URL+"/api/v1/auth/refresh", "",
		map[string]string{"refreshToken": "bogus"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMutationsRequireAuth(t *testing.T) {
	srv, _, _ := setupServer(t)

	resp := doRequest(t, http.MethodPut, srv.URL+"/api/v1/notes/abc0001234", "",
		noteDTO{NoteID: "abc0001234", Content: "x", UpdatedAt: 1})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestExpiredTokenCarriesRefreshCode(t *testing.T) {
	srv, _, _ := setupServer(t)

	expired, err := auth.GenerateToken("user-1", testSecret, -time.Minute)
	require.NoError(t, err)

	resp := doRequest(t, http.MethodPut, srv.URL+"/api/v1/notes/abc0001234", expired,
		noteDTO{NoteID: "abc0001234", Content: "x", UpdatedAt: 1})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var ep errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ep))
	assert.Equal(t, common.TokenExpiredCode, ep.Code)
}

func TestNoteLifecycleOverHTTP(t *testing.T) {
	srv, _, _ := setupServer(t)
	token := userToken(t)

	resp := doRequest(t, http.MethodPut, srv.URL+"/api/v1/notes/abc0001234", token,
		noteDTO{NoteID: "abc0001234", Content: "hello", UpdatedAt: 100})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var up map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&up))
	assert.NotEmpty(t, up["recordId"])

	resp = doRequest(t, http.MethodGet, srv.URL+"/api/v1/notes/abc0001234", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched *noteDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fetched))
	require.NotNil(t, fetched)
	assert.Equal(t, "hello", fetched.Content)

	resp = doRequest(t, http.MethodPatch, srv.URL+"/api/v1/notes/abc0001234", token,
		noteDTO{NoteID: "abc0001234", Content: "edited", UpdatedAt: 200})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodDelete, srv.URL+"/api/v1/notes/abc0001234", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, http.MethodDelete, srv.URL+"/api/v1/notes/abc0001234", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnonymousReadsDegradeToEmpty(t *testing.T) {
	srv, _, _ := setupServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/notes", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []noteDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Empty(t, list)

	resp = doRequest(t, http.MethodGet, srv.URL+"/api/v1/notes/abc0001234", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var n *noteDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&n))
	assert.Nil(t, n)
}

func TestPatchMissingNoteIs404(t *testing.T) {
	srv, _, _ := setupServer(t)

	resp := doRequest(t, http.MethodPatch, srv.URL+"/api/v1/notes/zzzz000000", userToken(t),
		noteDTO{NoteID: "zzzz000000", Content: "x", UpdatedAt: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthRateLimit(t *testing.T) {
	users := &fakeUsers{}
	h := NewHandler(users, newFakeNotes(), nil)
	srv := httptest.NewServer(NewRouter(h, RouterConfig{
		JWTSecret:          testSecret,
		AuthRateLimitRPS:   1,
		AuthRateLimitBurst: 2,
	}))
	t.Cleanup(srv.Close)

	var statuses []int
	for i := 0; i < 4; i++ {
		resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "",
			map[string]string{"username": fmt.Sprintf("u%d", i), "password": "pw"})
		statuses = append(statuses, resp.StatusCode)
	}
	assert.Contains(t, statuses, http.StatusTooManyRequests)
}
