package registration

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole matches any UnknownRoleError via errors.Is.
var ErrUnknownRole = errors.New("unknown role")

// UnknownRoleError reports a role outside guest, farmer and buyer. It aborts
// validation before any field is checked.
type UnknownRoleError struct {
	Role string
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("unknown role %q", e.Role)
}

// Is reports whether target is ErrUnknownRole.
func (e *UnknownRoleError) Is(target error) bool {
	return target == ErrUnknownRole
}

// ErrorCode classifies a FieldError.
type ErrorCode string

const (
	CodeMissingField     ErrorCode = "missing_field"
	CodePasswordMismatch ErrorCode = "password_mismatch"
	CodeProfileMismatch  ErrorCode = "profile_mismatch"
	CodeInvalidField     ErrorCode = "invalid_field"
)

// FieldError is a single validation problem. Section names the profile key
// for profile fields and is empty for base fields.
type FieldError struct {
	Code     ErrorCode `json:"code"`
	Field    string    `json:"field,omitempty"`
	Section  string    `json:"section,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	Expected string    `json:"expected,omitempty"`
	Found    string    `json:"found,omitempty"`
}

// MissingField reports an absent required field.
func MissingField(name string) FieldError {
	return FieldError{Code: CodeMissingField, Field: name, Reason: "this field is required"}
}

// PasswordMismatch reports password and password2 disagreeing.
func PasswordMismatch() FieldError {
	return FieldError{Code: CodePasswordMismatch, Field: FieldPassword2, Reason: "passwords don't match"}
}

// ProfileMismatch reports a profile key that does not fit the declared role.
// Either side may be empty: guests expect no profile, and a missing profile
// has no found key.
func ProfileMismatch(expected, found string) FieldError {
	var reason string
	switch {
	case expected == "":
		reason = fmt.Sprintf("unexpected %s for this role", found)
	case found == "":
		reason = fmt.Sprintf("%s is required for this role", expected)
	default:
		reason = fmt.Sprintf("expected %s, found %s", expected, found)
	}
	return FieldError{Code: CodeProfileMismatch, Expected: expected, Found: found, Reason: reason}
}

// InvalidField reports a field that is present but violates its predicate.
func InvalidField(name, reason string) FieldError {
	return FieldError{Code: CodeInvalidField, Field: name, Reason: reason}
}

func (e FieldError) Error() string {
	name := e.Field
	if e.Section != "" && name != "" {
		name = e.Section + "." + name
	}
	switch {
	case name == "":
		return fmt.Sprintf("%s: %s", e.Code, e.Reason)
	default:
		return fmt.Sprintf("%s: %s: %s", e.Code, name, e.Reason)
	}
}

// ValidationErrors is the ordered list of every problem found in a payload.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Count returns how many errors carry the given code.
func (v ValidationErrors) Count(code ErrorCode) int {
	n := 0
	for _, fe := range v {
		if fe.Code == code {
			n++
		}
	}
	return n
}

// AsValidationErrors extracts ValidationErrors from err.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}
