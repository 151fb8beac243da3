package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/regdesk-api/internal/models"
	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
	"github.com/noah-isme/regdesk-api/pkg/logger"
)

type stubValidator struct {
	claims *models.DeskClaims
	err    error
	seen   string
}

func (s *stubValidator) Validate(token string) (*models.DeskClaims, error) {
	s.seen = token
	return s.claims, s.err
}

func newAuthRouter(v DeskTokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/desks/current", DeskAuth(v), func(c *gin.Context) {
		claims, ok := DeskClaims(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"desk": claims.DeskID, "log": c.GetString(logger.DeskIDKey)})
	})
	return r
}

func TestDeskAuthAcceptsBearerToken(t *testing.T) {
	v := &stubValidator{claims: &models.DeskClaims{DeskID: "desk-1", AdminID: 1}}
	r := newAuthRouter(v)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/desks/current", nil)
	req.Header.Set("Authorization", "bearer abc.def")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc.def", v.seen)
	assert.JSONEq(t, `{"desk":"desk-1","log":"desk-1"}`, w.Body.String())
}

func TestDeskAuthRejects(t *testing.T) {
	cases := map[string]struct {
		header string
		err    error
	}{
		"missing header": {header: ""},
		"wrong scheme":   {header: "Basic abc"},
		"invalid token":  {header: "Bearer abc", err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid desk token")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := newAuthRouter(&stubValidator{err: tc.err})
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/desks/current", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
		})
	}
}

type recordingObserver struct {
	method, path string
	status       int
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	r.method, r.path, r.status = method, path, status
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &recordingObserver{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/participants/:code", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/participants/R19001001", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.MethodGet, obs.method)
	assert.Equal(t, "/participants/:code", obs.path)
	assert.Equal(t, http.StatusNotFound, obs.status)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/nowhere", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, "unmatched", obs.path)
}
