package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/megamarket-backend/internal/domain"
	"github.com/yungbote/megamarket-backend/internal/platform/apierr"
)

const internalMessage = "internal server error"

// Fail writes err using the status its code maps to. Internal failures are
// reported without their cause; the cause stays attached to the gin context
// for the access log.
func Fail(c *gin.Context, err error) {
	if err == nil {
		RespondErrorMessage(c, http.StatusInternalServerError, string(domain.CodeInternal), internalMessage)
		return
	}
	_ = c.Error(err)

	if ae, ok := apierr.From(err); ok {
		status := ae.Status
		if status == 0 {
			status = http.StatusBadRequest
		}
		RespondError(c, status, ae.Code, ae.Err)
		return
	}

	code := domain.CodeOf(err)
	if code == "" {
		code = domain.CodeInternal
	}
	status := StatusOf(code)
	if status >= http.StatusInternalServerError {
		RespondErrorMessage(c, status, string(code), internalMessage)
		return
	}
	RespondErrorMessage(c, status, string(code), domain.MessageOf(err))
}

func StatusOf(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
