package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/auth-microservice/internal/application"
	"github.com/oksasatya/auth-microservice/internal/domain/entity"
	"github.com/oksasatya/auth-microservice/internal/domain/repository"
	handlers "github.com/oksasatya/auth-microservice/internal/interface/http"
	"github.com/oksasatya/auth-microservice/internal/router/modules"
	"github.com/oksasatya/auth-microservice/pkg/helpers"
	"github.com/oksasatya/auth-microservice/pkg/validation"
)

type memRepo struct {
	mu     sync.Mutex
	users  map[string]*entity.User
	nextID int
}

func newMemRepo() *memRepo { return &memRepo{users: map[string]*entity.User{}} }

func (r *memRepo) Create(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if e.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
		if e.Username == u.Username {
			return repository.ErrDuplicateUsername
		}
	}
	r.nextID++
	u.ID = fmt.Sprintf("user-%d", r.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) MarkVerified(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsVerified = true
	u.VerificationCode = ""
	return nil
}

func (r *memRepo) codeFor(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u.VerificationCode
		}
	}
	return ""
}

type noopNotifier struct{}

func (noopNotifier) SendVerificationCode(ctx context.Context, email, name, code string) error {
	return nil
}

var initOnce sync.Once

func newTestRouter(repo *memRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	initOnce.Do(validation.Init)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	svc := application.NewService(repo, jwt, noopNotifier{}, nil, logger)
	h := handlers.NewAuthHandler(svc, logger, nil)

	r := gin.New()
	modules.NewAuthModule(h).Register(r.Group(""))
	return r
}

type envelope struct {
	Status  int               `json:"status"`
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    map[string]any    `json:"data"`
	Error   map[string]string `json:"error"`
}

func doPost(t *testing.T, r *gin.Engine, path string, body map[string]any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func registerBody() map[string]any {
	return map[string]any{
		"username":         "joe",
		"name":             "Joe",
		"email":            "joe@gmail.com",
		"password":         "Abcdef1!",
		"confirm_password": "Abcdef1!",
	}
}

func TestRegisterEndpoint(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(repo)

	w, env := doPost(t, r, "/register", registerBody())
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "joe", env.Data["username"])
	assert.Equal(t, "joe@gmail.com", env.Data["email"])
	assert.Equal(t, "user", env.Data["role"])
	assert.Equal(t, false, env.Data["is_verified"])
	assert.NotEmpty(t, env.Data["id"])
}

func TestRegisterEndpointValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(map[string]any)
		wantField string
	}{
		{
			name:      "unlisted email domain",
			mutate:    func(b map[string]any) { b["email"] = "joe@example.com" },
			wantField: "email",
		},
		{
			name: "email without at sign",
			mutate: func(b map[string]any) {
				b["email"] = "joegmail.com"
			},
			wantField: "email",
		},
		{
			name:      "short password",
			mutate:    func(b map[string]any) { b["password"] = "Ab1!xyz"; b["confirm_password"] = "Ab1!xyz" },
			wantField: "password",
		},
		{
			name:      "no uppercase",
			mutate:    func(b map[string]any) { b["password"] = "abcdef1!"; b["confirm_password"] = "abcdef1!" },
			wantField: "password",
		},
		{
			name:      "no lowercase",
			mutate:    func(b map[string]any) { b["password"] = "ABCDEF1!"; b["confirm_password"] = "ABCDEF1!" },
			wantField: "password",
		},
		{
			name:      "no digit",
			mutate:    func(b map[string]any) { b["password"] = "Abcdefg!"; b["confirm_password"] = "Abcdefg!" },
			wantField: "password",
		},
		{
			name:      "no special char",
			mutate:    func(b map[string]any) { b["password"] = "Abcdefg1"; b["confirm_password"] = "Abcdefg1" },
			wantField: "password",
		},
		{
			name:      "confirm mismatch",
			mutate:    func(b map[string]any) { b["confirm_password"] = "Abcdef2!" },
			wantField: "confirm_password",
		},
		{
			name:      "missing username",
			mutate:    func(b map[string]any) { delete(b, "username") },
			wantField: "username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			r := newTestRouter(repo)

			body := registerBody()
			tt.mutate(body)

			w, env := doPost(t, r, "/register", body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, env.Success)
			assert.Contains(t, env.Error, tt.wantField)
		})
	}
}

func TestRegisterEndpointDuplicates(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(repo)

	w, _ := doPost(t, r, "/register", registerBody())
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("same email", func(t *testing.T) {
		body := registerBody()
		body["username"] = "joe2"
		w, env := doPost(t, r, "/register", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "email already registered", env.Message)
	})

	t.Run("same username", func(t *testing.T) {
		body := registerBody()
		body["email"] = "joe2@gmail.com"
		w, env := doPost(t, r, "/register", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "username already taken", env.Message)
	})
}

func TestVerifyEndpoint(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(repo)

	w, _ := doPost(t, r, "/register", registerBody())
	require.Equal(t, http.StatusOK, w.Code)
	code := repo.codeFor("joe@gmail.com")
	require.NotEmpty(t, code)

	t.Run("unknown user", func(t *testing.T) {
		w, _ := doPost(t, r, "/verify", map[string]any{"email": "nobody@gmail.com", "code": code})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("wrong code", func(t *testing.T) {
		w, _ := doPost(t, r, "/verify", map[string]any{"email": "joe@gmail.com", "code": "000000"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("correct code", func(t *testing.T) {
		w, env := doPost(t, r, "/verify", map[string]any{"email": "joe@gmail.com", "code": code})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "account verified successfully", env.Message)
	})

	t.Run("replay of the consumed code", func(t *testing.T) {
		w, _ := doPost(t, r, "/verify", map[string]any{"email": "joe@gmail.com", "code": code})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(repo)

	w, _ := doPost(t, r, "/register", registerBody())
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("unverified account", func(t *testing.T) {
		w, _ := doPost(t, r, "/login", map[string]any{"email": "joe@gmail.com", "password": "Abcdef1!"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	code := repo.codeFor("joe@gmail.com")
	w, _ = doPost(t, r, "/verify", map[string]any{"email": "joe@gmail.com", "code": code})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("wrong password", func(t *testing.T) {
		w, env := doPost(t, r, "/login", map[string]any{"email": "joe@gmail.com", "password": "Wrong999!"})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "invalid credentials", env.Message)
	})

	t.Run("unknown user gets the same response", func(t *testing.T) {
		w, env := doPost(t, r, "/login", map[string]any{"email": "nobody@gmail.com", "password": "Abcdef1!"})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "invalid credentials", env.Message)
	})

	t.Run("successful login returns a bearer token", func(t *testing.T) {
		w, env := doPost(t, r, "/login", map[string]any{"email": "joe@gmail.com", "password": "Abcdef1!"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "bearer", env.Data["token_type"])

		token, _ := env.Data["access_token"].(string)
		require.NotEmpty(t, token)

		jwt := helpers.NewJWTManager("test-secret", time.Hour)
		claims, err := jwt.ParseAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, "joe@gmail.com", claims.Subject)
		assert.Equal(t, "user", claims.Role)
	})
}

func TestAdminRoleDerivation(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(repo)

	body := registerBody()
	body["username"] = "admin_joe"
	body["email"] = "admin_joe@gmail.com"

	w, env := doPost(t, r, "/register", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", env.Data["role"])
}
