package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/sealant-catalog-backend/internal/domain/aggregates"
	"github.com/yungbote/sealant-catalog-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
		_ = c.Error(err)
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr writes err using its *apierr.Error status, or the status mapped
// from its aggregate code.
func RespondErr(c *gin.Context, err error) {
	ae := FromError(err)
	RespondError(c, ae.Status, ae.Code, ae)
}

// FromError maps an error to its HTTP form. Internal failures keep their
// cause for logs but answer with a generic message.
func FromError(err error) *apierr.Error {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	code := domainagg.CodeOf(err)
	msg := errors.New(domainagg.MessageOf(err))
	switch code {
	case domainagg.CodeValidation:
		return apierr.BadRequest(string(code), msg)
	case domainagg.CodeNotFound:
		return apierr.NotFound(string(code), msg)
	case domainagg.CodeConflict, domainagg.CodeRetryable:
		return apierr.Conflict(string(code), msg)
	case domainagg.CodeInvariantViolation, domainagg.CodePreconditionFailed:
		return apierr.New(http.StatusUnprocessableEntity, string(code), msg)
	default:
		return apierr.Internal(string(domainagg.CodeInternal), errors.New("internal server error"))
	}
}

func RespondOK(c *gin.Context, payload gin.H) {
	c.JSON(http.StatusOK, withSuccess(payload))
}

func RespondCreated(c *gin.Context, payload gin.H) {
	c.JSON(http.StatusCreated, withSuccess(payload))
}

func withSuccess(payload gin.H) gin.H {
	if payload == nil {
		payload = gin.H{}
	}
	payload["success"] = true
	return payload
}
