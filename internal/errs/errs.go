// Package errs carries the catalog's error taxonomy as machine-readable codes
// on top of samber/oops. Every code ends in a reason segment that the Is*
// helpers classify: storage failures, missing entities, and rejected input.
package errs

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/samber/oops"

	"github.com/mesh-intelligence/tagshelf/pkg/types"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeStoreUnavailable    Code = "store.unavailable"
	CodeStoreAttachFailure  Code = "store.attach.unavailable"
	CodeStoreSchemaMismatch Code = "store.schema.unavailable"

	CodeTagNotFound      Code = "catalog.tag.not_found"
	CodeCategoryNotFound Code = "catalog.category.not_found"
	CodeSelectionMissing Code = "catalog.selection.not_found"

	CodeTagInvalid       Code = "catalog.tag.invalid_input"
	CodeCategoryInvalid  Code = "catalog.category.invalid_input"
	CodeWeightInvalid    Code = "catalog.weight.invalid_input"
	CodeSelectionInvalid Code = "catalog.selection.invalid_input"
	CodeConfigInvalid    Code = "config.validate.invalid_input"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldID(value string) Attr {
	return Field("id", value)
}

func FieldCollection(value string) Attr {
	return Field("collection", value)
}

func FieldCategory(value string) Attr {
	return Field("category", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

// Wrap attaches code and fields to err. A nil err stays nil.
func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}
	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

// Storage wraps a backend failure as StorageUnavailable unless it already
// carries a code.
func Storage(err error, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}
	if CodeOf(err) != "" {
		return err
	}
	return Wrap(err, CodeStoreUnavailable, msg, fields...)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}
	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}
	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}
	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// IsStorageUnavailable reports a failed or unattached store.
func IsStorageUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, types.ErrStoreDetached) {
		return true
	}
	return reason(CodeOf(err)) == "unavailable"
}

// IsNotFound reports an operation that referenced an absent id or key.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if reason(CodeOf(err)) == "not_found" {
		return true
	}
	return stderrors.Is(err, types.ErrNotFound) || stderrors.Is(err, types.ErrNotSelected)
}

// IsValidation reports input rejected before reaching the store.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_input"
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}
