package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainagg "github.com/yungbote/sealant-catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/apierr"
)

func TestFromErrorMapsAggregateCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domainagg.NewError(domainagg.CodeValidation, "op", "name is required", nil), http.StatusBadRequest, "validation"},
		{domainagg.NewError(domainagg.CodeNotFound, "op", "backup 9 not found", nil), http.StatusNotFound, "not_found"},
		{domainagg.NewError(domainagg.CodeConflict, "op", "busy", nil), http.StatusConflict, "conflict"},
		{domainagg.NewError(domainagg.CodeRetryable, "op", "locked", nil), http.StatusConflict, "retryable"},
		{domainagg.NewError(domainagg.CodeInternal, "op", "db gone", nil), http.StatusInternalServerError, "internal"},
		{errors.New("plain"), http.StatusInternalServerError, "internal"},
		{apierr.BadRequest("invalid_id", errors.New("bad id")), http.StatusBadRequest, "invalid_id"},
	}
	for _, tc := range cases {
		ae := FromError(tc.err)
		assert.Equal(t, tc.status, ae.Status, tc.err.Error())
		assert.Equal(t, tc.code, ae.Code, tc.err.Error())
	}

	ae := FromError(domainagg.NewError(domainagg.CodeInternal, "op", "secret dsn", nil))
	assert.Equal(t, "internal server error", ae.Error())
}

func TestRespondErrEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondErr(c, domainagg.NewError(domainagg.CodeNotFound, "op", "backup 9 not found", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "backup 9 not found", body.Error.Message)
	assert.Equal(t, "not_found", body.Error.Code)
}

func TestRespondOKAddsSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondCreated(c, gin.H{"id": 3})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success":true,"id":3}`, rec.Body.String())
}
