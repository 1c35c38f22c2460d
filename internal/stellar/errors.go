package stellar

import (
	"errors"
	"fmt"
	"strings"
)

// Kind discriminates failures so callers can branch without matching messages.
type Kind string

const (
	KindUnknown            Kind = "unknown"
	KindValidation         Kind = "validation_error"
	KindAccountNotFound    Kind = "account_not_found"
	KindInvalidAsset       Kind = "invalid_asset"
	KindNoPathFound        Kind = "no_path_found"
	KindPathSearch         Kind = "path_search_error"
	KindRemoteUnavailable  Kind = "remote_unavailable"
	KindSignerRejected     Kind = "signer_rejected"
	KindSubmissionRejected Kind = "submission_rejected"
	KindNotFound           Kind = "not_found"
)

// ResultCodes mirrors the result codes Horizon attaches to a failed submission.
type ResultCodes struct {
	Transaction      string   `json:"transaction,omitempty"`
	InnerTransaction string   `json:"inner_transaction,omitempty"`
	Operations       []string `json:"operations,omitempty"`
}

// Error is the typed failure returned by every operation in this package.
type Error struct {
	Kind        Kind
	Message     string
	ResultCodes *ResultCodes
	Extras      map[string]any
	Err         error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrAccountNotFound    = &Error{Kind: KindAccountNotFound}
	ErrInvalidAsset       = &Error{Kind: KindInvalidAsset}
	ErrNoPathFound        = &Error{Kind: KindNoPathFound}
	ErrPathSearch         = &Error{Kind: KindPathSearch}
	ErrRemoteUnavailable  = &Error{Kind: KindRemoteUnavailable}
	ErrSignerRejected     = &Error{Kind: KindSignerRejected}
	ErrSubmissionRejected = &Error{Kind: KindSubmissionRejected}
	ErrNotFound           = &Error{Kind: KindNotFound}
)

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func validationError(format string, args ...any) *Error {
	return newError(KindValidation, nil, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ParseKind maps a wire value back to a Kind; unknown values become KindUnknown.
func ParseKind(s string) Kind {
	switch k := Kind(strings.TrimSpace(s)); k {
	case KindValidation, KindAccountNotFound, KindInvalidAsset, KindNoPathFound,
		KindPathSearch, KindRemoteUnavailable, KindSignerRejected,
		KindSubmissionRejected, KindNotFound:
		return k
	default:
		return KindUnknown
	}
}
