package ember

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	e := NewError(KindLogic, "drawing outside a frame")
	if got := e.Error(); got != "ember: drawing outside a frame" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := WrapError(KindRuntime, "reading asset", io.ErrUnexpectedEOF)
	if got := wrapped.Error(); got != "ember: reading asset: unexpected EOF" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(wrapped, io.ErrUnexpectedEOF) {
		t.Error("wrapped cause should be reachable through errors.Is")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(errInvalidArgf("bad value %d", 3)); got != KindInvalidArgument {
		t.Errorf("KindOf = %v, want InvalidArgument", got)
	}

	// The kind survives further wrapping by callers.
	deep := fmt.Errorf("frame setup: %w", errLogicf("nested BeginFrame"))
	if got := KindOf(deep); got != KindLogic {
		t.Errorf("KindOf(wrapped) = %v, want Logic", got)
	}

	if got := KindOf(io.EOF); got != 0 {
		t.Errorf("KindOf(foreign error) = %v, want 0", got)
	}
	if got := KindOf(nil); got != 0 {
		t.Errorf("KindOf(nil) = %v, want 0", got)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindInvalidArgument: "invalid argument",
		KindLogic:           "logic error",
		KindRuntime:         "runtime error",
		KindInternal:        "internal error",
		Kind(99):            "unknown",
	}
	for k, want := range cases {
		if k.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, k.String(), want)
		}
	}
}
