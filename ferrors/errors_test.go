package ferrors

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestWrapSentinelPreservesIsAndMetadata(t *testing.T) {
	err := WrapSentinel(ErrInvalidKey, "", map[string]any{
		MetaPermissionKey: "admin",
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected errors.Is to match sentinel")
	}
	rich, ok := As(err)
	if !ok {
		t.Fatalf("expected rich error")
	}
	if rich.Category != goerrors.CategoryBadInput {
		t.Fatalf("unexpected category: %s", rich.Category)
	}
	if rich.TextCode != TextCodeInvalidKey {
		t.Fatalf("unexpected text code: %s", rich.TextCode)
	}
	if rich.Metadata == nil || rich.Metadata[MetaPermissionKey] != "admin" {
		t.Fatalf("expected metadata to include permission key")
	}
}

func TestPermissionDeniedIsAuthz(t *testing.T) {
	err := WrapSentinel(ErrPermissionDenied, "", map[string]any{
		MetaRoles: []string{"admin"},
	})
	rich, ok := As(err)
	if !ok {
		t.Fatalf("expected rich error")
	}
	if rich.Category != goerrors.CategoryAuthz || rich.Code != goerrors.CodeForbidden {
		t.Fatalf("unexpected category/code: %s/%d", rich.Category, rich.Code)
	}
	if TextCode(err) != TextCodePermissionDenied {
		t.Fatalf("unexpected text code: %s", TextCode(err))
	}
}

func TestWrapExternalKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := WrapExternal(cause, TextCodeTransportFailed, "", map[string]any{
		MetaEndpoint: "/authorizations",
	})
	if err.Category != goerrors.CategoryExternal {
		t.Fatalf("unexpected category: %s", err.Category)
	}
	if err.Message != cause.Error() {
		t.Fatalf("expected cause message, got %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause")
	}
}

func TestTextCodeOfPlainError(t *testing.T) {
	if TextCode(errors.New("plain")) != "" {
		t.Fatalf("expected empty text code")
	}
	if IsSentinel(errors.New("plain")) {
		t.Fatalf("plain error is not a sentinel")
	}
	if !IsSentinel(ErrProviderClosed) {
		t.Fatalf("expected sentinel")
	}
}
