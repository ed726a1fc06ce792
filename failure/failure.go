package failure

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-permissiongate/ferrors"
	"github.com/goliatone/go-permissiongate/gate"
	"github.com/goliatone/go-permissiongate/schema"
)

// Kind tags a permission error.
type Kind string

const (
	KindTransport Kind = "TransportError"
	KindDecode    Kind = "DecodeError"
)

// Error is the closed union of pipeline failures: *TransportError or
// *DecodeError. Consumers dispatch with Match.
type Error interface {
	error
	Kind() Kind
	sealed()
}

// TransportError reports a failed remote fetch. It carries no permission data.
type TransportError struct {
	Message string
	Cause   error
}

// Kind implements Error.
func (e *TransportError) Kind() Kind { return KindTransport }

func (e *TransportError) sealed() {}

func (e *TransportError) Error() string {
	if e == nil || e.Message == "" {
		return "permission transport failed"
	}
	return "permission transport failed: " + e.Message
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// DecodeError reports a response that did not satisfy the schema.
type DecodeError struct {
	// MissingKeys holds one joined key path per complaint, in complaint order.
	MissingKeys []string
	// Response is the raw body re-read as a flat key to boolean mapping,
	// ignoring the schema. Empty when the body is not such a mapping.
	Response gate.Record
	// Merged is the denied baseline overlaid with Response.
	Merged     gate.Record
	Complaints []schema.Complaint
}

// Kind implements Error.
func (e *DecodeError) Kind() Kind { return KindDecode }

func (e *DecodeError) sealed() {}

func (e *DecodeError) Error() string {
	if e == nil || len(e.MissingKeys) == 0 {
		return "permission response did not match schema"
	}
	return fmt.Sprintf("permission response did not match schema: %s", strings.Join(e.MissingKeys, ", "))
}

// Match dispatches err to the handler for its variant. Both handlers are
// required; a nil err or handler yields the zero value.
func Match[T any](err Error, onDecode func(*DecodeError) T, onTransport func(*TransportError) T) T {
	var zero T
	switch typed := err.(type) {
	case *DecodeError:
		if onDecode == nil || typed == nil {
			return zero
		}
		return onDecode(typed)
	case *TransportError:
		if onTransport == nil || typed == nil {
			return zero
		}
		return onTransport(typed)
	}
	return zero
}

// BuildDecodeError collects complaint paths, re-reads raw as a flat boolean
// mapping and merges that mapping over denied. Keys the response carries
// outside the baseline are kept in Merged.
func BuildDecodeError(complaints []schema.Complaint, raw any, denied gate.Record) *DecodeError {
	missing := make([]string, 0, len(complaints))
	for _, complaint := range complaints {
		missing = append(missing, complaint.Key())
	}
	response := decodeFlatBools(raw)
	return &DecodeError{
		MissingKeys: missing,
		Response:    response,
		Merged:      denied.Overlay(response),
		Complaints:  append([]schema.Complaint(nil), complaints...),
	}
}

// BuildTransportError wraps a fetch failure.
func BuildTransportError(err error) *TransportError {
	if err == nil {
		return &TransportError{Message: "unknown transport error"}
	}
	return &TransportError{
		Message: err.Error(),
		Cause: ferrors.WrapExternal(err, ferrors.TextCodeTransportFailed, "", map[string]any{
			ferrors.MetaOperation: "fetch",
		}),
	}
}

// Recover extracts the best-effort record from err: the merged record of a
// DecodeError or denied for a TransportError.
func Recover(err Error, denied gate.Record) gate.Record {
	if err == nil {
		return denied
	}
	return Match(err,
		func(e *DecodeError) gate.Record { return e.Merged },
		func(*TransportError) gate.Record { return denied },
	)
}

func decodeFlatBools(raw any) gate.Record {
	switch typed := raw.(type) {
	case map[string]bool:
		return boolsToRecord(typed)
	case map[string]any:
		values := make(map[string]bool, len(typed))
		for key, value := range typed {
			flag, ok := value.(bool)
			if !ok {
				return gate.NewRecord()
			}
			values[key] = flag
		}
		return boolsToRecord(values)
	case json.RawMessage:
		return decodeJSONBools(typed)
	case []byte:
		return decodeJSONBools(typed)
	}
	return gate.NewRecord()
}

func decodeJSONBools(data []byte) gate.Record {
	var values map[string]bool
	if err := json.Unmarshal(data, &values); err != nil {
		return gate.NewRecord()
	}
	return boolsToRecord(values)
}

func boolsToRecord(values map[string]bool) gate.Record {
	states := make(map[string]gate.State, len(values))
	for key, value := range values {
		states[key] = gate.FromBool(value)
	}
	return gate.FromMap(states)
}
