package rettiwt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every *Error unwraps to exactly one of these.
var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrTransport              = errors.New("transport error")
	ErrMalformedResponse      = errors.New("malformed response")
	ErrUploadPhaseFailed      = errors.New("upload phase failed")
)

// ErrUploadInitFailed is the cause of an upload failure when INIT returned no media id.
var ErrUploadInitFailed = errors.New("upload init returned no media id")

// Error is the error type returned by the request pipeline.
type Error struct {
	Kind     error
	Resource Resource
	Status   int         // HTTP status, 0 when no response was received
	Code     int         // first upstream error code, 0 when absent
	Phase    UploadPhase // set for ErrUploadPhaseFailed
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Resource.String())
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Kind == ErrUploadPhaseFailed {
		fmt.Fprintf(&b, " (%s)", e.Phase)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " HTTP %d", e.Status)
	}
	if e.Code != 0 {
		fmt.Fprintf(&b, " code %d", e.Code)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Class returns the upstream error classification for this error's code.
func (e *Error) Class() ErrorClass {
	return classifyCode(e.Code)
}

func invalidArgument(r Resource, format string, args ...any) *Error {
	return &Error{Kind: ErrInvalidArgument, Resource: r, Msg: fmt.Sprintf(format, args...)}
}

// ErrorClass categorizes upstream API error codes.
type ErrorClass int

const (
	ClassNone          ErrorClass = iota
	ClassRateLimited              // 88: rate limit exceeded
	ClassSuspended                // 64: account suspended
	ClassLocked                   // 326: account locked
	ClassCSRF                     // 353: csrf token mismatch
	ClassAuthExpired              // 32: could not authenticate
	ClassBlocked                  // 161: blocked from performing action
	ClassNotAuthorized            // 179, 219: not authorized
	ClassInternal                 // 131: upstream internal error
	ClassNotFound                 // 34, 144: resource does not exist
	ClassDuplicate                // 139, 187, 327: already liked, duplicate post, already retweeted
)

func (c ErrorClass) String() string {
	switch c {
	case ClassRateLimited:
		return "rate_limited"
	case ClassSuspended:
		return "suspended"
	case ClassLocked:
		return "locked"
	case ClassCSRF:
		return "csrf"
	case ClassAuthExpired:
		return "auth_expired"
	case ClassBlocked:
		return "blocked"
	case ClassNotAuthorized:
		return "not_authorized"
	case ClassInternal:
		return "internal"
	case ClassNotFound:
		return "not_found"
	case ClassDuplicate:
		return "duplicate"
	}
	return "none"
}

func classifyCode(code int) ErrorClass {
	switch code {
	case 88:
		return ClassRateLimited
	case 64:
		return ClassSuspended
	case 326:
		return ClassLocked
	case 353:
		return ClassCSRF
	case 32:
		return ClassAuthExpired
	case 161:
		return ClassBlocked
	case 179, 219:
		return ClassNotAuthorized
	case 131:
		return ClassInternal
	case 34, 144:
		return ClassNotFound
	case 139, 187, 327:
		return ClassDuplicate
	}
	return ClassNone
}

// upstreamError is the first entry of an "errors" array in a response body.
type upstreamError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// firstUpstreamError returns the first known-class error in body, falling back to the
// first error of any code. ok is false when body has no errors array.
func firstUpstreamError(body []byte) (upstreamError, bool) {
	var errResp struct {
		Errors []upstreamError `json:"errors"`
	}
	if json.Unmarshal(body, &errResp) != nil || len(errResp.Errors) == 0 {
		return upstreamError{}, false
	}
	for _, e := range errResp.Errors {
		if classifyCode(e.Code) != ClassNone {
			return e, true
		}
	}
	return errResp.Errors[0], true
}
