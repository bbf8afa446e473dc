package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"daily-journalist/app/server/inits"
	"daily-journalist/app/server/jwt"
	"daily-journalist/app/server/middlewares"
	"daily-journalist/app/server/models"
)

// fakeMailer 记录发出的邮件，可以注入失败
type fakeMailer struct {
	sent []sentMail
	fail error
}

type sentMail struct {
	To      []string
	Subject string
	Body    string
}

func (m *fakeMailer) Send(_ context.Context, to []string, subject, body string) error {
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// fakeAnnouncer 记录通告调用，可以注入失败
type fakeAnnouncer struct {
	calls int
	fail  error
}

func (a *fakeAnnouncer) Announce(_ context.Context, _, _ string, _ uint) error {
	a.calls++
	return a.fail
}

type testEnv struct {
	app       *App
	e         *echo.Echo
	db        *gorm.DB
	jwt       *jwt.JWT
	mailer    *fakeMailer
	announcer *fakeAnnouncer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, inits.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	j, err := jwt.New("test-secret")
	require.NoError(t, err)

	l := zap.NewNop()
	mailer := &fakeMailer{}
	announcer := &fakeAnnouncer{}

	app := NewApp(l, db, rdb, j, mailer, announcer, "http://127.0.0.1:1323", "ops@news.example")

	e := echo.New()
	api := e.Group("/api", middlewares.UserAuth(db, rdb, j, l))
	app.RegisterRoutes(api)

	return &testEnv{
		app:       app,
		e:         e,
		db:        db,
		jwt:       j,
		mailer:    mailer,
		announcer: announcer,
	}
}

func (env *testEnv) createUser(t *testing.T, username string, role models.Role, email string) *models.User {
	t.Helper()

	hash, err := argon2id.CreateHash("password", argon2id.DefaultParams)
	require.NoError(t, err)

	user := models.User{
		Username: username,
		Email:    email,
		Role:     role,
		Password: hash,
	}
	user.ApplyRoleRules()
	require.NoError(t, env.db.Create(&user).Error)
	return &user
}

func (env *testEnv) createSuperuser(t *testing.T, username string) *models.User {
	t.Helper()

	user := env.createUser(t, username, models.RoleEditor, username+"@news.example")
	user.IsSuperuser = true
	require.NoError(t, env.db.Model(user).Update("is_superuser", true).Error)
	return user
}

func (env *testEnv) token(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := env.jwt.SignToken(&jwt.User{
		ID:      user.ID,
		Expires: time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	return token
}

// request 走完整的 echo 调度，包含认证中间件
func (env *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (env *testEnv) createArticle(t *testing.T, author *models.User, publisher *models.User, title string, approved bool) *models.Article {
	t.Helper()

	article := models.Article{
		Title:    title,
		Content:  "content of " + title,
		AuthorID: author.ID,
		Approved: approved,
	}
	if publisher != nil {
		article.PublisherID = &publisher.ID
	}
	require.NoError(t, env.db.Create(&article).Error)
	return &article
}

func (env *testEnv) follow(t *testing.T, follower, followee *models.User, kind models.FollowKind) {
	t.Helper()

	require.NoError(t, env.db.Create(&models.FollowEdge{
		FollowerID: follower.ID,
		FolloweeID: followee.ID,
		Kind:       kind,
	}).Error)
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/healthcheck", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
