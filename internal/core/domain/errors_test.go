package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_IsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", ErrTokenExpired.WithCause(errors.New("exp in the past")))

	if !errors.Is(wrapped, ErrTokenExpired) {
		t.Fatalf("expected wrapped copy to match ErrTokenExpired")
	}
	if errors.Is(wrapped, ErrTokenMalformed) {
		t.Fatalf("expired must not match malformed")
	}
}

func TestError_TokenCausesShareClientMessage(t *testing.T) {
	for _, e := range []*Error{ErrTokenExpired, ErrTokenMalformed, ErrTokenBadSignature, ErrTokenRevoked} {
		if e.Message != ErrInvalidToken.Message {
			t.Fatalf("%s leaks cause in message %q", e.Code, e.Message)
		}
		if e.Kind != KindAuth {
			t.Fatalf("%s: expected auth kind, got %s", e.Code, e.Kind)
		}
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(ErrForbidden) != KindForbidden {
		t.Fatalf("expected forbidden")
	}
	if KindOf(errors.New("boom")) != KindInternal {
		t.Fatalf("expected internal for foreign errors")
	}
	if KindOf(ConfigError("unknown permission %q", "x:y")) != KindConfig {
		t.Fatalf("expected config")
	}
}

func TestWithCause_DoesNotMutateSentinel(t *testing.T) {
	_ = ErrInvalidToken.WithCause(errors.New("x"))
	if ErrInvalidToken.Cause != nil {
		t.Fatalf("sentinel mutated")
	}
}
