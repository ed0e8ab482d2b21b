package validation

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type sample struct {
	Name      string `json:"name" validate:"required,max=10"`
	Condition string `json:"condition" validate:"required,oneof=flu breastcancer"`
}

func TestValidate_OK(t *testing.T) {
	if err := New().Validate(&sample{Name: "Ada", Condition: "flu"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := New().Validate(&sample{Condition: "cold"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
	msg, _ := httpErr.Message.(string)
	if !strings.Contains(msg, "name is required") {
		t.Errorf("expected name to be reported, got %q", msg)
	}
	if !strings.Contains(msg, "condition must be one of [flu breastcancer]") {
		t.Errorf("expected condition to be reported, got %q", msg)
	}
}

func TestValidate_Max(t *testing.T) {
	err := New().Validate(&sample{Name: "a very long name indeed", Condition: "flu"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "at most 10") {
		t.Errorf("unexpected message: %v", err)
	}
}
