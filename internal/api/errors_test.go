// errors_test.go - Tests for the central error handler
package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func handleError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	ErrorHandler(err, e.NewContext(req, rec))
	return rec
}

func TestErrorHandler_HidesServerErrorDetails(t *testing.T) {
	SetVerboseErrors(false)

	rec := handleError(t, errors.New("dial tcp: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"UNKNOWN_ERROR"`)
	assert.NotContains(t, rec.Body.String(), "connection refused")

	rec = handleError(t, NewInternalError("query failed", errors.New("sql: database is closed")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "database is closed")
}

func TestErrorHandler_VerboseModeKeepsDetails(t *testing.T) {
	SetVerboseErrors(true)
	defer SetVerboseErrors(false)

	rec := handleError(t, errors.New("dial tcp: connection refused"))
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestErrorHandler_ClientErrorsKeepTheirCause(t *testing.T) {
	SetVerboseErrors(false)

	// Bad-request details describe the client's own input; not gated.
	rec := handleError(t, NewBadRequestError("bad page", errors.New(`strconv.Atoi: parsing "x"`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "strconv.Atoi")
}
