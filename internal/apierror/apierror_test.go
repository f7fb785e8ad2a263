package apierror

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ottoassistant/otto/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func writeAndRecord(err error) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	Write(c, err)
	return rec
}

func TestWrite_NotFoundKinds(t *testing.T) {
	for _, err := range []error{domain.ErrJobNotFound, domain.ErrRunNotFound, domain.ErrMessageNotFound, domain.ErrSessionBindingNotFound} {
		rec := writeAndRecord(err)
		if rec.Code != http.StatusNotFound {
			t.Errorf("err %v: status = %d, want 404", err, rec.Code)
		}
	}
}

func TestWrite_ForbiddenMutation(t *testing.T) {
	rec := writeAndRecord(domain.ErrForbiddenMutation)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestWrite_StateConflict(t *testing.T) {
	rec := writeAndRecord(domain.ErrStateConflict)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestWrite_ValidationError(t *testing.T) {
	err := domain.NewValidationError(domain.FieldError{Field: "type", Message: "required"})
	rec := writeAndRecord(err)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestWrite_Unauthorized(t *testing.T) {
	rec := writeAndRecord(domain.ErrUnauthorized)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWrite_ServiceUnavailable(t *testing.T) {
	rec := writeAndRecord(domain.ErrServiceUnavailable)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestWrite_UnknownErrorIsInternal(t *testing.T) {
	rec := writeAndRecord(errUnmapped{})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

type errUnmapped struct{}

func (errUnmapped) Error() string { return "something unexpected" }
