package ferrors

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	MetaPermissionKey  = "permission_key"
	MetaPermissionKeys = "permission_keys"
	MetaRoles          = "roles"
	MetaScope          = "scope"
	MetaEndpoint       = "endpoint"
	MetaMethod         = "method"
	MetaStatus         = "status"
	MetaAdapter        = "adapter"
	MetaTable          = "table"
	MetaRedisKey       = "redis_key"
	MetaOperation      = "operation"
	MetaPath           = "path"
	MetaFieldType      = "field_type"
)

const (
	TextCodeInvalidKey         = "PERMISSION_KEY_REQUIRED"
	TextCodeDuplicateKey       = "PERMISSION_KEY_DUPLICATE"
	TextCodeSchemaRequired     = "SCHEMA_REQUIRED"
	TextCodeSchemaInvalid      = "SCHEMA_INVALID"
	TextCodeSchemaCompile      = "SCHEMA_COMPILE_FAILED"
	TextCodeFetcherRequired    = "FETCHER_REQUIRED"
	TextCodeEndpointRequired   = "ENDPOINT_REQUIRED"
	TextCodeResolverRequired   = "RESOLVER_REQUIRED"
	TextCodeClientRequired     = "CLIENT_REQUIRED"
	TextCodeDBRequired         = "DB_REQUIRED"
	TextCodeProviderClosed     = "PROVIDER_CLOSED"
	TextCodeOverrideInvalid    = "OVERRIDE_INVALID"
	TextCodeTransportFailed    = "TRANSPORT_FAILED"
	TextCodeTransportStatus    = "TRANSPORT_STATUS"
	TextCodeBodyMalformed      = "BODY_MALFORMED"
	TextCodeRequestBuild       = "REQUEST_BUILD_FAILED"
	TextCodeAdapterFailed      = "ADAPTER_FAILED"
	TextCodeStoreReadFailed    = "STORE_READ_FAILED"
	TextCodeScopeResolveFailed = "SCOPE_RESOLVE_FAILED"
	TextCodePermissionDenied   = "PERMISSION_DENIED"
	TextCodePermissionLoading  = "PERMISSION_LOADING"
)

var (
	ErrInvalidKey        = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodeInvalidKey, "permission key required")
	ErrDuplicateKey      = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodeDuplicateKey, "permission key declared twice")
	ErrSchemaRequired    = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodeSchemaRequired, "schema is required")
	ErrSchemaInvalid     = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodeSchemaInvalid, "schema declares no boolean keys")
	ErrFetcherRequired   = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeFetcherRequired, "fetcher is required")
	ErrEndpointRequired  = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeEndpointRequired, "endpoint is required")
	ErrResolverRequired  = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeResolverRequired, "resolver is required")
	ErrClientRequired    = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeClientRequired, "client is required")
	ErrDBRequired        = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeDBRequired, "db is required")
	ErrProviderClosed    = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodeProviderClosed, "provider is closed")
	ErrOverrideInvalid   = newSentinel(goerrors.CategoryBadInput, goerrors.CodeBadRequest, TextCodeOverrideInvalid, "override record does not match schema")
	ErrPermissionDenied  = newSentinel(goerrors.CategoryAuthz, goerrors.CodeForbidden, TextCodePermissionDenied, "permission denied")
	ErrPermissionLoading = newSentinel(goerrors.CategoryOperation, goerrors.CodeInternal, TextCodePermissionLoading, "permissions are still loading")
)

func newSentinel(category goerrors.Category, code int, textCode, message string) *goerrors.Error {
	err := goerrors.New(message, category).WithTextCode(textCode)
	if code != 0 {
		err.WithCode(code)
	}
	return err
}

func IsSentinel(err error) bool {
	switch err {
	case ErrInvalidKey, ErrDuplicateKey, ErrSchemaRequired, ErrSchemaInvalid,
		ErrFetcherRequired, ErrEndpointRequired, ErrResolverRequired,
		ErrClientRequired, ErrDBRequired, ErrProviderClosed, ErrOverrideInvalid,
		ErrPermissionDenied, ErrPermissionLoading:
		return true
	}
	return false
}

func WrapSentinel(sentinel *goerrors.Error, message string, meta map[string]any) *goerrors.Error {
	if sentinel == nil {
		return nil
	}
	if message == "" {
		message = sentinel.Message
	}
	err := goerrors.New(message, sentinel.Category).
		WithTextCode(sentinel.TextCode).
		WithCode(sentinel.Code).
		WithSeverity(sentinel.Severity)
	err.Source = sentinel
	if meta != nil {
		err.WithMetadata(meta)
	}
	return err
}

func Wrap(err error, category goerrors.Category, textCode, message string, meta map[string]any) *goerrors.Error {
	if err == nil {
		return nil
	}
	if IsSentinel(err) {
		if sentinel, ok := err.(*goerrors.Error); ok {
			return WrapSentinel(sentinel, "", meta)
		}
	}
	if rich, ok := err.(*goerrors.Error); ok {
		clone := rich.Clone()
		if clone.TextCode == "" && textCode != "" {
			clone.TextCode = textCode
		}
		if clone.Message == "" && message != "" {
			clone.Message = message
		}
		if meta != nil {
			clone.WithMetadata(meta)
		}
		return clone
	}
	if message == "" {
		message = err.Error()
	}
	wrapped := goerrors.New(message, category).WithTextCode(textCode)
	wrapped.Source = err
	if meta != nil {
		wrapped.WithMetadata(meta)
	}
	return wrapped
}

func New(category goerrors.Category, textCode, message string, meta map[string]any) *goerrors.Error {
	err := goerrors.New(message, category).WithTextCode(textCode)
	if meta != nil {
		err.WithMetadata(meta)
	}
	return err
}

func NewBadInput(textCode, message string, meta map[string]any) *goerrors.Error {
	return New(goerrors.CategoryBadInput, textCode, message, meta)
}

func WrapBadInput(err error, textCode, message string, meta map[string]any) *goerrors.Error {
	return Wrap(err, goerrors.CategoryBadInput, textCode, message, meta)
}

func NewExternal(textCode, message string, meta map[string]any) *goerrors.Error {
	return New(goerrors.CategoryExternal, textCode, message, meta)
}

func WrapExternal(err error, textCode, message string, meta map[string]any) *goerrors.Error {
	return Wrap(err, goerrors.CategoryExternal, textCode, message, meta)
}

func WrapInternal(err error, textCode, message string, meta map[string]any) *goerrors.Error {
	return Wrap(err, goerrors.CategoryInternal, textCode, message, meta)
}

func As(err error) (*goerrors.Error, bool) {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich, true
	}
	return nil, false
}

// TextCode returns the text code of a rich error, or "" for plain errors.
func TextCode(err error) string {
	if rich, ok := As(err); ok {
		return rich.TextCode
	}
	return ""
}
