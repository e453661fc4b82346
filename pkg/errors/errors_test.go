package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeDuplicateLayer, "duplicate layer name %q", "input")

	if err.Code != ErrCodeDuplicateLayer {
		t.Errorf("Code = %s, want DUPLICATE_LAYER", err.Code)
	}
	want := `DUPLICATE_LAYER: duplicate layer name "input"`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(ErrCodeInternal, cause, "compile %s", "net")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error lost its cause")
	}
	if got := err.Error(); got != "INTERNAL_ERROR: compile net: boom" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsMatchesThroughWrapping(t *testing.T) {
	inner := New(ErrCodeUnknownLayer, "no such layer")
	outer := fmt.Errorf("while connecting: %w", inner)

	if !Is(outer, ErrCodeUnknownLayer) {
		t.Error("Is failed to find code through fmt wrapping")
	}
	if Is(outer, ErrCodeCycle) {
		t.Error("Is matched the wrong code")
	}
	if Is(stderrors.New("plain"), ErrCodeUnknownLayer) {
		t.Error("Is matched a plain error")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeCycle, "loop")); got != ErrCodeCycle {
		t.Errorf("GetCode = %s, want CYCLE", got)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode of plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeEmptyNetwork, "network has no layers")); got != "network has no layers" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(stderrors.New("plain failure")); got != "plain failure" {
		t.Errorf("UserMessage of plain error = %q", got)
	}
}
