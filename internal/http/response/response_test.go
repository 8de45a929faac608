package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/megamarket-backend/internal/domain"
	"github.com/yungbote/megamarket-backend/internal/platform/apierr"
)

func failWith(t *testing.T, err error) (int, ErrorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	Fail(c, err)

	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return rec.Code, env
}

func TestFailMapsCodesToStatus(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"validation", domain.Validation("import", "price of offer is required"), http.StatusBadRequest, "validation", "price of offer is required"},
		{"not found", domain.NotFound("nodes.get", "Node with id=x not found"), http.StatusNotFound, "not_found", "Node with id=x not found"},
		{"conflict", domain.Wrap(domain.CodeConflict, "import.write", errors.New("dup")), http.StatusConflict, "conflict", "dup"},
		{"internal hides cause", domain.Wrap(domain.CodeInternal, "import.write", errors.New("pq: secret detail")), http.StatusInternalServerError, "internal", internalMessage},
		{"uncoded", errors.New("boom"), http.StatusInternalServerError, "internal", internalMessage},
		{"api error", apierr.BadRequest("invalid_argument", "Invalid date format %s", "x"), http.StatusBadRequest, "invalid_argument", "Invalid date format x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, env := failWith(t, tc.err)
			if status != tc.status {
				t.Fatalf("status: got %d want %d", status, tc.status)
			}
			if env.Error.Code != tc.code || env.Error.Message != tc.message {
				t.Fatalf("envelope: got %+v", env.Error)
			}
		})
	}
}
