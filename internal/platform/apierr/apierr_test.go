package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAsFindsWrappedError(t *testing.T) {
	base := InsufficientQuantity(errors.New("lot empty"))
	wrapped := fmt.Errorf("log drink: %w", base)

	got := As(wrapped)
	if got == nil {
		t.Fatalf("As: expected *Error")
	}
	if got.Status != http.StatusConflict || got.Code != CodeInsufficientQuantity {
		t.Fatalf("As: unexpected %+v", got)
	}
	if !HasCode(wrapped, CodeInsufficientQuantity) {
		t.Fatalf("HasCode: expected true")
	}
	if HasCode(errors.New("plain"), CodeInsufficientQuantity) {
		t.Fatalf("HasCode: expected false for plain error")
	}
}

func TestErrorMessageFallbacks(t *testing.T) {
	if msg := New(http.StatusTeapot, "", nil).Error(); msg != "api error (418)" {
		t.Fatalf("status fallback: got=%q", msg)
	}
	if msg := New(0, CodeConflict, nil).Error(); msg != CodeConflict {
		t.Fatalf("code fallback: got=%q", msg)
	}
	var nilErr *Error
	if nilErr.Error() != "" {
		t.Fatalf("nil receiver should render empty")
	}
}
