package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync/atomic"
	"testing"

	"dropcore/file-api/internal/model"
	"dropcore/file-api/internal/storage"
	"dropcore/file-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

var nextTestIP atomic.Int64

// testAPI wraps an API instance wired to an in-memory database and
// filesystem. Each instance gets its own client IP so the shared rate
// limiter state doesn't bleed between tests
type testAPI struct {
	*API
	t  *testing.T
	ip string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	gin.SetMode(gin.TestMode)

	viper.Set("jwt.secret", "test-secret")
	viper.Set("jwt.expiry_hours", 1)
	viper.Set("upload.max_size", int64(10<<20))
	viper.Set("retention.days", 30)
	viper.Set("host.cors_origin", "http://localhost:3000")

	store, err := storage.NewLocal("/uploads", afero.NewMemMapFs())
	require.NoError(t, err)

	a := &API{
		DB:    testutil.OpenDB(t),
		Store: store,
	}
	a.setup()

	n := nextTestIP.Add(1)

	return &testAPI{
		API: a,
		t:   t,
		ip:  fmt.Sprintf("10.1.%d.%d:9000", n/250, n%250),
	}
}

func (a *testAPI) do(req *http.Request, token string) *httptest.ResponseRecorder {
	a.t.Helper()

	req.RemoteAddr = a.ip
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	return w
}

func (a *testAPI) json(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	return a.do(req, token)
}

// upload posts files to path under the given form field, declaring
// text/plain for every part
func (a *testAPI) upload(path, token, field string, files map[string]string) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	for name, content := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
		hdr.Set("Content-Type", "text/plain")

		part, err := w.CreatePart(hdr)
		require.NoError(a.t, err)

		_, err = part.Write([]byte(content))
		require.NoError(a.t, err)
	}

	require.NoError(a.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return a.do(req, token)
}

// uploadTyped posts a single file with an arbitrary declared MIME type
func (a *testAPI) uploadTyped(path, token, name, contentType, content string) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	hdr.Set("Content-Type", contentType)

	part, err := w.CreatePart(hdr)
	require.NoError(a.t, err)

	_, err = part.Write([]byte(content))
	require.NoError(a.t, err)
	require.NoError(a.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return a.do(req, token)
}

func parse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), "body: %s", w.Body.String())

	return m
}

// register creates an account through the public endpoint and returns
// the issued token plus the user ID
func (a *testAPI) register(email, password string) (token, userID string) {
	a.t.Helper()

	w := a.json(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Test User",
		"email":    email,
		"password": password,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	m := parse(a.t, w)
	user := m["user"].(map[string]any)

	return m["token"].(string), user["id"].(string)
}

// registerAdmin registers a user and promotes it straight in the
// database. The role check reads from the DB on every request so the
// original token keeps working
func (a *testAPI) registerAdmin(email, password string) (token, userID string) {
	a.t.Helper()

	token, userID = a.register(email, password)

	err := a.DB.Model(model.User{}).
		Where("id = ?", userID).
		Update("role", model.RoleAdmin).
		Error
	require.NoError(a.t, err)

	return token, userID
}
