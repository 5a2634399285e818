package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmitSaha9928/book-stack/internal/config"
	"github.com/AmitSaha9928/book-stack/internal/model"
	"github.com/AmitSaha9928/book-stack/internal/repository"
	"github.com/AmitSaha9928/book-stack/internal/utils"
)

const userCols = "id,first_name,last_name,username,email,phone_number,role,password_hash,user_img,status,is_active,is_deleted,created_at,updated_at"

func testConfig() config.Config {
	return config.Config{
		Env:          "test",
		JWTSecret:    "test-secret",
		AccessTTLMin: 15,
		BcryptCost:   utils.MinHashCost,
	}
}

func newAuthEnv(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db))
	return h, mock, func() { db.Close() }
}

func doJSON(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func activeUserRows(id uint64, email, username, hash string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(strings.Split(userCols, ",")).
		AddRow(id, "Ada", "Lovelace", username, email, "555-0100", model.RoleMember, hash, nil, true, true, false, now, now)
}

func TestRegister_NamesFirstMissingField(t *testing.T) {
	h, _, done := newAuthEnv(t)
	defer done()
	e := echo.New()

	// phoneNumber and everything after it are absent; the response
	// names only the first gap.
	c, rec := doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace"}`)
	require.NoError(t, h.Register(c))

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.True(t, resp.Error)
	assert.Equal(t, "phoneNumber is missing", resp.Message)
}

func TestRegister_ExistingUserIsConflictNotError(t *testing.T) {
	h, mock, done := newAuthEnv(t)
	defer done()
	e := echo.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+userCols+" FROM users WHERE (email=? OR username=?) AND is_deleted=0 LIMIT 1")).
		WithArgs("ada@x.com", "ada").
		WillReturnRows(activeUserRows(7, "ada@x.com", "ada", "$2a$10$digest"))

	c, rec := doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace","phoneNumber":"555-0100","userRole":"MEMBER","username":"ada","email":"Ada@X.com","password":"s3cret"}`)
	require.NoError(t, h.Register(c))

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, resp.Error, "duplicate signup is a business outcome, not a failure")
	assert.Equal(t, "user already exists", resp.Message)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ada@x.com", data["email"])
	assert.NotContains(t, rec.Body.String(), "password_hash")
	assert.NotContains(t, rec.Body.String(), "$2a$")
}

func TestRegister_CreatesUserWithMemberFallbackRole(t *testing.T) {
	h, mock, done := newAuthEnv(t)
	defer done()
	e := echo.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+userCols+" FROM users WHERE (email=? OR username=?) AND is_deleted=0 LIMIT 1")).
		WithArgs("ada@x.com", "ada").
		WillReturnError(sql.ErrNoRows)
	// Unrecognized role falls back to MEMBER.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (first_name,last_name,username,email,phone_number,role,password_hash,user_img) VALUES (?,?,?,?,?,?,?,?)")).
		WithArgs("Ada", "Lovelace", "ada", "ada@x.com", "555-0100", model.RoleMember, sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+userCols+" FROM users WHERE id=? AND is_active=1 AND is_deleted=0 LIMIT 1")).
		WithArgs(uint64(7)).
		WillReturnRows(activeUserRows(7, "ada@x.com", "ada", "$2a$10$digest"))

	c, rec := doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace","phoneNumber":"555-0100","userRole":"WIZARD","username":"ada","email":"Ada@X.com","password":"s3cret"}`)
	require.NoError(t, h.Register(c))

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.False(t, resp.Error)
	assert.Equal(t, "user created successfully", resp.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_UnknownEmailIs404(t *testing.T) {
	h, mock, done := newAuthEnv(t)
	defer done()
	e := echo.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+userCols+" FROM users WHERE email=? AND is_active=1 AND is_deleted=0 LIMIT 1")).
		WithArgs("ghost@x.com").
		WillReturnError(sql.ErrNoRows)

	c, rec := doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"email":"ghost@x.com","password":"whatever"}`)
	require.NoError(t, h.Login(c))

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, resp.Error)
	assert.Equal(t, "user not found", resp.Message)
}

func TestLogin_WrongPasswordIs401(t *testing.T) {
	h, mock, done := newAuthEnv(t)
	defer done()
	e := echo.New()

	hash, err := utils.HashPassword("right-password", utils.MinHashCost)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+userCols+" FROM users WHERE email=? AND is_active=1 AND is_deleted=0 LIMIT 1")).
		WithArgs("ada@x.com").
		WillReturnRows(activeUserRows(7, "ada@x.com", "ada", hash))

	c, rec := doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"email":"ada@x.com","password":"wrong-password"}`)
	require.NoError(t, h.Login(c))

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, resp.Error)
	assert.Equal(t, "password does not match", resp.Message)
}

func TestLogin_IssuesVerifiableToken(t *testing.T) {
	h, mock, done := newAuthEnv(t)
	defer done()
	e := echo.New()

	hash, err := utils.HashPassword("s3cret", utils.MinHashCost)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+userCols+" FROM users WHERE email=? AND is_active=1 AND is_deleted=0 LIMIT 1")).
		WithArgs("ada@x.com").
		WillReturnRows(activeUserRows(7, "ada@x.com", "ada", hash))

	c, rec := doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"email":"ADA@x.com","password":"s3cret"}`)
	require.NoError(t, h.Login(c))

	resp := decodeEnvelope(t, rec)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Error)
	assert.Equal(t, "login successful", resp.Message)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	token, ok := data["token"].(map[string]interface{})
	require.True(t, ok)
	raw, ok := token["token"].(string)
	require.True(t, ok)

	uid, role, err := utils.ParseSessionToken(h.Cfg.JWTSecret, raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)
	assert.Equal(t, model.RoleMember, role)
}
