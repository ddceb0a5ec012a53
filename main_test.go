package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/portfolio-go/apperror"
	"github.com/user/portfolio-go/auth"
	"github.com/user/portfolio-go/blog"
	"github.com/user/portfolio-go/comments"
	"github.com/user/portfolio-go/config"
	"github.com/user/portfolio-go/contact"
	"github.com/user/portfolio-go/db"
	"github.com/user/portfolio-go/projects"
	"github.com/user/portfolio-go/storage"
	"github.com/user/portfolio-go/users"
)

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	handle *db.Handle
	store  *storage.Store
}

func newTestServer(t *testing.T, env string) *testServer {
	t.Helper()
	ctx := context.Background()

	h, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	require.NoError(t, db.MigrateSQLite(ctx, h))

	cfg := &config.AppConfig{
		Env:      env,
		Database: &config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"},
		Auth: &config.AuthConfig{
			JWTSecret:     "e2e-secret",
			TokenDuration: 30 * 24 * time.Hour,
			LookupTimeout: time.Second,
		},
		Server: &config.ServerConfig{Port: "0", AllowedOrigins: []string{"*"}},
	}

	store := storage.New(h.DB)
	app, err := newApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), store)
	require.NoError(t, err)

	srv := httptest.NewServer(app.routes())
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, handle: h, store: store}
}

// do sends a JSON request and decodes the JSON response into out when out is non-nil.
func (s *testServer) do(method, path, token string, body any, out any) int {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.srv.URL+path, reader)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.srv.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) register(username string) auth.AuthResponse {
	s.t.Helper()
	var resp auth.AuthResponse
	status := s.do(http.MethodPost, "/api/users/register", "", map[string]string{
		"username": username,
		"email":    username + "@x.com",
		"password": "secret1",
	}, &resp)
	require.Equal(s.t, http.StatusCreated, status)
	return resp
}

// registerAdmin registers a user, promotes it and logs in again.
func (s *testServer) registerAdmin(username string) auth.AuthResponse {
	s.t.Helper()
	reg := s.register(username)
	require.NoError(s.t, s.store.Identities.SetRole(context.Background(), reg.User.ID, auth.RoleAdmin))
	reg.User.Role = auth.RoleAdmin
	return reg
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t, config.EnvDevelopment)

	var reg auth.AuthResponse
	status := s.do(http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "secret1",
	}, &reg)
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice", reg.User.Name)
	assert.Equal(t, auth.RoleStandard, reg.User.Role)

	var login auth.AuthResponse
	status = s.do(http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "a@x.com", "password": "secret1",
	}, &login)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, reg.User.ID, login.User.ID)

	var me users.Profile
	status = s.do(http.MethodGet, "/api/users/me", login.Token, nil, &me)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "a@x.com", me.Email)

	var failure apperror.ErrorResponse
	status = s.do(http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong-password",
	}, &failure)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid email or password", failure.Message)
}

func TestRegister_Rejections(t *testing.T) {
	s := newTestServer(t, config.EnvDevelopment)
	s.register("alice")

	tests := []struct {
		body map[string]string
		name string
	}{
		{name: "duplicate email", body: map[string]string{"username": "other", "email": "alice@x.com", "password": "secret1"}},
		{name: "duplicate username", body: map[string]string{"username": "alice", "email": "new@x.com", "password": "secret1"}},
		{name: "missing password", body: map[string]string{"username": "bob", "email": "bob@x.com"}},
		{name: "short password", body: map[string]string{"username": "bob", "email": "bob@x.com", "password": "123"}},
		{name: "password over 72 bytes", body: map[string]string{"username": "bob", "email": "bob@x.com", "password": strings.Repeat("é", 40)}},
		{name: "role smuggling", body: map[string]string{"username": "bob", "email": "bob@x.com", "password": "secret1", "role": "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var failure apperror.ErrorResponse
			status := s.do(http.MethodPost, "/api/users/register", "", tt.body, &failure)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.NotEmpty(t, failure.Message)
		})
	}
}

func TestPostOwnership(t *testing.T) {
	s := newTestServer(t, config.EnvDevelopment)
	alice := s.register("alice")
	bob := s.register("bob")
	admin := s.registerAdmin("root")

	var post blog.Post
	status := s.do(http.MethodPost, "/api/blog", alice.Token, map[string]string{"title": "Hello", "content": "World"}, &post)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, alice.User.ID, post.Author.ID)
	assert.Equal(t, "alice", post.Author.Username)

	path := "/api/blog/" + post.ID

	var failure apperror.ErrorResponse
	status = s.do(http.MethodPut, path, bob.Token, map[string]string{"title": "Hijacked"}, &failure)
	assert.Equal(t, http.StatusForbidden, status)
	assert.NotEmpty(t, failure.Stack)

	var updated blog.Post
	status = s.do(http.MethodPut, path, alice.Token, map[string]string{"title": "Edited by owner"}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Edited by owner", updated.Title)
	assert.Equal(t, "World", updated.Content)

	status = s.do(http.MethodPut, path, admin.Token, map[string]string{"title": "Edited by admin"}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Edited by admin", updated.Title)
	assert.Equal(t, alice.User.ID, updated.Author.ID)

	status = s.do(http.MethodDelete, path, bob.Token, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = s.do(http.MethodDelete, "/api/blog/does-not-exist", bob.Token, nil, &failure)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "post not found", failure.Message)
}

func TestProtectedRoute_Rejections(t *testing.T) {
	s := newTestServer(t, config.EnvProduction)
	ghost := s.register("ghost")
	_, err := s.handle.ExecContext(context.Background(), `DELETE FROM users WHERE id = ?`, ghost.User.ID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantMsg string
	}{
		{name: "no token", token: "", wantMsg: auth.MsgNoToken},
		{name: "garbage token", token: "garbage", wantMsg: auth.MsgTokenFailed},
		{name: "deleted identity", token: ghost.Token, wantMsg: auth.MsgIdentityRemoved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var failure apperror.ErrorResponse
			status := s.do(http.MethodPost, "/api/blog", tt.token, map[string]string{"title": "t", "content": "c"}, &failure)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tt.wantMsg, failure.Message)
			assert.Empty(t, failure.Stack)
		})
	}

	var posts []blog.Post
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/blog", "", nil, &posts))
	assert.Empty(t, posts)
}

func TestComments(t *testing.T) {
	s := newTestServer(t, config.EnvDevelopment)
	alice := s.register("alice")
	bob := s.register("bob")

	var post blog.Post
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/blog", alice.Token, map[string]string{"title": "t", "content": "c"}, &post))
	var other blog.Post
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/blog", alice.Token, map[string]string{"title": "t2", "content": "c2"}, &other))

	base := "/api/blog/" + post.ID + "/comments"

	var c comments.Comment
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, base, bob.Token, map[string]string{"body": "nice"}, &c))
	assert.Equal(t, "bob", c.Author.Username)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, base, "", map[string]string{"body": "anon"}, nil))
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/blog/missing/comments", bob.Token, map[string]string{"body": "x"}, nil))
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/blog/missing/comments", "", nil, nil))

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, base+"/"+c.ID, alice.Token, map[string]string{"body": "edited"}, nil))
	// Addressed through the wrong post.
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/blog/"+other.ID+"/comments/"+c.ID, bob.Token, map[string]string{"body": "edited"}, nil))

	var edited comments.Comment
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, base+"/"+c.ID, bob.Token, map[string]string{"body": "edited"}, &edited))
	assert.Equal(t, "edited", edited.Body)

	var list []comments.Comment
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, base, "", nil, &list))
	require.Len(t, list, 1)

	// Deleting the post removes its comments.
	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/blog/"+post.ID, alice.Token, nil, nil))
	remaining, err := s.store.Comments.ListByPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, base, "", nil, nil))
}

func TestProjects(t *testing.T) {
	s := newTestServer(t, config.EnvDevelopment)
	alice := s.register("alice")
	admin := s.registerAdmin("root")

	body := map[string]string{"title": "portfolio", "description": "site", "repoUrl": "https://github.com/user/portfolio-go"}
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/projects", alice.Token, body, nil))

	var project projects.Project
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/projects", admin.Token, body, &project))
	assert.Equal(t, admin.User.ID, project.Owner.ID)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/projects", admin.Token,
		map[string]string{"title": "x", "description": "y", "liveUrl": "not a url"}, nil))

	path := "/api/projects/" + project.ID
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, path, alice.Token, nil, nil))

	var list []projects.Project
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/projects", "", nil, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "root", list[0].Owner.Username)

	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, path, admin.Token, nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, "", nil, nil))
}

func TestContact(t *testing.T) {
	s := newTestServer(t, config.EnvDevelopment)
	alice := s.register("alice")
	admin := s.registerAdmin("root")

	var ack contact.SubmitResponse
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/contact", "",
		map[string]string{"name": "Bob", "email": "bob@x.com", "message": "hello"}, &ack))
	assert.True(t, ack.Success)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/contact", "",
		map[string]string{"name": "Bob", "email": "nope", "message": "hello"}, nil))

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/contact", "", nil, nil))
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/contact", alice.Token, nil, nil))

	var msgs []contact.Message
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/contact", admin.Token, nil, &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Message)
}

func TestHealthAndHeaders(t *testing.T) {
	s := newTestServer(t, config.EnvDevelopment)

	resp, err := s.srv.Client().Get(s.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))

	var failure apperror.ErrorResponse
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/nothing-here", "", nil, &failure))
	assert.Contains(t, failure.Message, "/api/nothing-here")

	failure = apperror.ErrorResponse{}
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(http.MethodDelete, "/healthz", "", nil, &failure))
	assert.Equal(t, "method not allowed - DELETE /healthz", failure.Message)
	assert.NotEmpty(t, failure.Stack)
}
