package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/dbx"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/auth"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
	"github.com/dmitrijs2005/gophtodo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophtodo/internal/server/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	t      *testing.T
	server *httptest.Server
	tokens *auth.TokenManager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()

	db, err := dbx.Open(ctx, dbx.DriverSQLite, fmt.Sprintf("file:rest_%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.NewNop()
	rm, err := repomanager.NewSQLRepositoryManager(dbx.DriverSQLite, log)
	require.NoError(t, err)
	require.NoError(t, rm.RunMigrations(ctx, db.DB))

	tokens := auth.NewTokenManager([]byte("test-secret"), 2*time.Hour)
	us := services.NewUserService(db, rm, auth.NewBcryptHasher(bcrypt.MinCost), tokens)
	ts := services.NewTaskService(db, rm)

	h := NewHandler(us, ts, db, log)
	srv := httptest.NewServer(NewRouter(h, auth.NewGate(tokens), []string{"http://localhost:3000"}, log))
	t.Cleanup(srv.Close)

	return &testAPI{t: t, server: srv, tokens: tokens}
}

func (a *testAPI) do(method, path, token string, body any) (int, []byte) {
	a.t.Helper()

	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, rd)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, buf.Bytes()
}

func (a *testAPI) register(username, email, password string) int {
	status, _ := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "email": email, "password": password,
	})
	return status
}

func (a *testAPI) login(username, password string) string {
	status, body := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(a.t, http.StatusOK, status, string(body))

	var res services.LoginResult
	require.NoError(a.t, json.Unmarshal(body, &res))
	require.Equal(a.t, username, res.Username)
	return res.Token
}

func TestScenario_FullTaskLifecycle(t *testing.T) {
	api := newTestAPI(t)

	require.Equal(t, http.StatusCreated, api.register("alice", "a@x.com", "pw1"))
	require.Equal(t, http.StatusConflict, api.register("alice", "other@x.com", "pw1"))

	token := api.login("alice", "pw1")

	status, body := api.do(http.MethodPost, "/api/tasks", token, map[string]any{"text": "buy milk"})
	require.Equal(t, http.StatusCreated, status, string(body))

	var created models.Task
	require.NoError(t, json.Unmarshal(body, &created))
	assert.False(t, created.Completed)
	assert.Contains(t, string(body), `"checklist":[]`)

	status, body = api.do(http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, status)
	var list []models.Task
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	time.Sleep(5 * time.Millisecond)
	path := fmt.Sprintf("/api/tasks/%d", created.ID)
	status, body = api.do(http.MethodPut, path, token, map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, status, string(body))
	var updated models.Task
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, updated.Completed)
	assert.NotContains(t, string(body), `"message"`)

	status, body = api.do(http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.True(t, list[0].Completed)
	assert.True(t, list[0].UpdatedAt.After(created.UpdatedAt), "updated_at refreshed")

	status, _ = api.do(http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = api.do(http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))

	status, _ = api.do(http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestRegister_Errors(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(http.MethodPost, "/api/auth/register", "", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"All fields required"}`, string(body))

	require.Equal(t, http.StatusCreated, api.register("alice", "a@x.com", "pw1"))
	status, body = api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "bob", "email": "a@x.com", "password": "pw",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.JSONEq(t, `{"error":"Username or email already exists"}`, string(body))

	status, body = api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": strings.Repeat("u", 51), "email": "c@x.com", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"Username must be at most 50 characters"}`, string(body))
}

func TestLogin_Errors(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.register("alice", "a@x.com", "pw1"))

	status, _ := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, wrongPw := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, noUser := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ghost", "password": "pw1"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, string(wrongPw), string(noUser), "no username enumeration")
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	api := newTestAPI(t)

	expired := auth.NewTokenManager([]byte("test-secret"), -time.Minute)
	expiredToken, err := expired.Issue(1, "alice")
	require.NoError(t, err)
	foreign, err := auth.NewTokenManager([]byte("other"), time.Hour).Issue(1, "alice")
	require.NoError(t, err)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodPut, "/api/tasks/1"},
		{http.MethodDelete, "/api/tasks/1"},
		{http.MethodGet, "/api/userinfo"},
	}

	for _, rt := range routes {
		for name, token := range map[string]string{"missing": "", "garbage": "abc", "expired": expiredToken, "foreign": foreign} {
			t.Run(rt.method+" "+rt.path+" "+name, func(t *testing.T) {
				status, _ := api.do(rt.method, rt.path, token, map[string]any{"text": "x"})
				assert.Equal(t, http.StatusUnauthorized, status)
			})
		}
	}
}

func TestTasks_OwnershipOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.register("alice", "a@x.com", "pw"))
	require.Equal(t, http.StatusCreated, api.register("bob", "b@x.com", "pw"))
	alice := api.login("alice", "pw")
	bob := api.login("bob", "pw")

	status, body := api.do(http.MethodPost, "/api/tasks", alice, map[string]any{
		"text": "alice only", "tag": "private", "checklist": []any{map[string]any{"text": "a", "done": false}},
	})
	require.Equal(t, http.StatusCreated, status)
	var task models.Task
	require.NoError(t, json.Unmarshal(body, &task))

	status, body = api.do(http.MethodGet, "/api/tasks", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))

	path := fmt.Sprintf("/api/tasks/%d", task.ID)
	status, body = api.do(http.MethodPut, path, bob, map[string]any{"completed": true})
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"Task not found"}`, string(body))

	status, _ = api.do(http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTasks_BadInput(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.register("alice", "a@x.com", "pw"))
	token := api.login("alice", "pw")

	status, body := api.do(http.MethodPost, "/api/tasks", token, map[string]any{"description": "no text"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"error":"Task text required"}`, string(body))

	status, _ = api.do(http.MethodPut, "/api/tasks/abc", token, map[string]any{"completed": true})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.do(http.MethodPut, "/api/tasks/1", token, "not an object")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUserInfo(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.register("alice", "a@x.com", "pw"))
	token := api.login("alice", "pw")

	status, body := api.do(http.MethodGet, "/api/userinfo", token, nil)
	require.Equal(t, http.StatusOK, status)

	var p map[string]any
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, "alice", p["username"])
	assert.Equal(t, "a@x.com", p["email"])
	assert.NotEmpty(t, p["created_at"])
	assert.NotContains(t, p, "password_hash")

	ghost, err := api.tokens.Issue(999, "ghost")
	require.NoError(t, err)
	status, body = api.do(http.MethodGet, "/api/userinfo", ghost, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"User not found"}`, string(body))
}

func TestHomeAndHealth(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Todo API is running!", string(body))

	status, body = api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}
