package domain

import (
	"errors"
	"fmt"
)

// ErrKind groups errors by the way the transport layer must report them.
type ErrKind string

const (
	KindValidation  ErrKind = "validation"   // 400
	KindAuth        ErrKind = "auth"         // 401
	KindForbidden   ErrKind = "forbidden"    // 403
	KindNotFound    ErrKind = "not_found"    // 404
	KindConflict    ErrKind = "conflict"     // 409
	KindRateLimited ErrKind = "rate_limited" // 429
	KindConfig      ErrKind = "config"       // 500, never exposed verbatim
	KindInternal    ErrKind = "internal"     // 500
)

// FieldIssue is a single field-level validation problem.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a typed domain error. Message is safe to show to clients; Cause is
// for logs only.
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Details []FieldIssue
	Cause   error
}

func NewError(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches on Code so that copies produced by WithCause still compare equal
// to the package-level sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithCause returns a copy of e carrying cause.
func (e *Error) WithCause(cause error) *Error {
	c := *e
	c.Cause = cause
	return &c
}

// WithMessage returns a copy of e with a different client-facing message.
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// KindOf reports the kind of err, or KindInternal for foreign errors.
func KindOf(err error) ErrKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// ValidationFailed builds a 400 error carrying every field issue.
func ValidationFailed(issues []FieldIssue) *Error {
	return &Error{Kind: KindValidation, Code: "validation_failed", Message: "Validation failed", Details: issues}
}

// ConfigError reports a wiring mistake. It is logged and rendered as a generic 500.
func ConfigError(format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Code: "configuration_error", Message: fmt.Sprintf(format, args...)}
}

// Authentication.
var (
	ErrAuthRequired       = NewError(KindAuth, "auth_required", "Authentication required")
	ErrInvalidToken       = NewError(KindAuth, "invalid_token", "Invalid token")
	ErrTokenExpired       = NewError(KindAuth, "token_expired", "Invalid token")
	ErrTokenMalformed     = NewError(KindAuth, "token_malformed", "Invalid token")
	ErrTokenBadSignature  = NewError(KindAuth, "token_bad_signature", "Invalid token")
	ErrTokenRevoked       = NewError(KindAuth, "token_revoked", "Invalid token")
	ErrAccountGone        = NewError(KindAuth, "account_gone", "User not found")
	ErrInvalidCredentials = NewError(KindAuth, "invalid_credentials", "Invalid credentials")
	ErrEmailNotVerified   = NewError(KindAuth, "email_not_verified", "Please verify your email first")
)

// Authorization.
var (
	ErrForbidden = NewError(KindForbidden, "forbidden", "Insufficient permissions")
	ErrNotOwner  = NewError(KindForbidden, "not_owner", "You do not have access to this resource")
)

// Input and state.
var (
	ErrUserExists         = NewError(KindValidation, "user_exists", "Email or username already exists")
	ErrInvalidVerifyToken = NewError(KindValidation, "invalid_verify_token", "Invalid verification token")
	ErrInvalidResetToken  = NewError(KindValidation, "invalid_reset_token", "Invalid or expired reset token")
	ErrWrongPassword      = NewError(KindValidation, "wrong_password", "Current password is incorrect")
	ErrWordExists         = NewError(KindValidation, "word_exists", "Word already exists in this language")
	ErrUnknownTemplate    = NewError(KindInternal, "unknown_template", "Unknown template")
	ErrRateLimited        = NewError(KindRateLimited, "rate_limited", "Too many requests, please try again later.")
)

// Concurrency.
var (
	ErrStaleWrite = NewError(KindConflict, "stale_write", "The resource was modified concurrently, please retry")
)

// Lookups.
var (
	ErrUserNotFound         = NewError(KindNotFound, "user_not_found", "User not found")
	ErrWordNotFound         = NewError(KindNotFound, "word_not_found", "Word not found")
	ErrTranslationNotFound  = NewError(KindNotFound, "translation_not_found", "Translation not found")
	ErrStoryNotFound        = NewError(KindNotFound, "story_not_found", "Story not found")
	ErrCommentNotFound      = NewError(KindNotFound, "comment_not_found", "Comment not found")
	ErrNotificationNotFound = NewError(KindNotFound, "notification_not_found", "Notification not found")
)
