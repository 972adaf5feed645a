package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vnkhanh/pathfinder-backend/config"
	"github.com/vnkhanh/pathfinder-backend/middleware"
	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/services"
	"github.com/vnkhanh/pathfinder-backend/testutil"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	cfg    *config.Config
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithDenylist(t, services.NewTokenDenylist(nil))
}

func newTestServerWithDenylist(t *testing.T, denylist *services.TokenDenylist) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	cfg := testutil.TestConfig()
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Metrics())
	SetupRouter(r, db, cfg, denylist)

	return &testServer{t: t, db: db, cfg: cfg, router: r}
}

type request struct {
	method  string
	path    string
	body    interface{}
	token   string
	cookies []*http.Cookie
}

func (s *testServer) do(req request) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.doRaw(req, "/api/v1"+req.path)
}

func (s *testServer) doRaw(req request, path string) *httptest.ResponseRecorder {
	s.t.Helper()

	var body io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		require.NoError(s.t, err)
		body = bytes.NewReader(raw)
	}

	httpReq := httptest.NewRequest(req.method, path, body)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	for _, ck := range req.cookies {
		httpReq.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httpReq)
	return w
}

// createUser thêm user trực tiếp vào DB và trả về access token của user đó.
func (s *testServer) createUser(username string, role models.Role) (*models.User, string) {
	s.t.Helper()

	hash, err := utils.HashPassword("password123")
	require.NoError(s.t, err)
	user := &models.User{
		Username:  username,
		Email:     username + "@mail.com",
		Firstname: "Test",
		Lastname:  username,
		Password:  hash,
		Role:      role,
	}
	require.NoError(s.t, s.db.Create(user).Error)

	token, err := utils.GenerateAccessToken(s.cfg.JWTSecret, time.Minute, user.ID, user.Role)
	require.NoError(s.t, err)
	return user, token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
