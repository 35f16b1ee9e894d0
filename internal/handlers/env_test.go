package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/velmark/storefront/internal/config"
	"github.com/velmark/storefront/internal/hash"
	"github.com/velmark/storefront/internal/models"
	"github.com/velmark/storefront/internal/tokens"
)

var dbSeq atomic.Int64

type testEnv struct {
	T     *testing.T
	E     *echo.Echo
	DB    *gorm.DB
	Codec *tokens.Codec
	A     *AuthHandler
	O     *OrderHandler
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	codec := &tokens.Codec{Secret: []byte("test-secret")}

	return &testEnv{
		T:     t,
		E:     echo.New(),
		DB:    db,
		Codec: codec,
		A:     &AuthHandler{DB: db, Codec: codec},
		O:     &OrderHandler{DB: db},
	}
}

func (env *testEnv) doJSONRequest(method, path string, payload any) (*httptest.ResponseRecorder, *http.Request, echo.Context) {
	env.T.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(env.T, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, req, c
}

func (env *testEnv) seedUser(name, email, password, address, role string) models.User {
	env.T.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(env.T, err)

	user := models.User{
		Name:     name,
		Email:    email,
		Password: pwHash,
		Phone:    "1234567890",
		Address:  address,
		Answer:   "blue",
		Role:     role,
	}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return user
}

func (env *testEnv) userCount() int64 {
	env.T.Helper()

	var n int64
	require.NoError(env.T, env.DB.Model(&models.User{}).Count(&n).Error)
	return n
}
