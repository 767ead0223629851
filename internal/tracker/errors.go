package tracker

import (
	"errors"
	"fmt"

	"github.com/jonesrussell/pricetracker/internal/fetch"
	"github.com/jonesrussell/pricetracker/internal/parser"
)

// FailureKind classifies why a check attempt failed. The kind decides
// whether the attempt is retried and how the product outcome is recorded.
type FailureKind string

const (
	// KindFetchTransient covers network errors, timeouts, rate limiting
	// and server errors. Worth retrying.
	KindFetchTransient FailureKind = "fetch_transient"
	// KindFetchPermanent covers responses retrying cannot fix, such as
	// 404 or 403.
	KindFetchPermanent FailureKind = "fetch_permanent"
	// KindNoStrategy means no extraction strategy exists for the
	// product's domain.
	KindNoStrategy FailureKind = "no_strategy"
	// KindExtraction means the page was fetched but no price could be
	// extracted. Retried, since partial renders and consent walls are
	// often temporary.
	KindExtraction FailureKind = "extraction"
)

// CheckError wraps an attempt failure with its classification.
type CheckError struct {
	Kind FailureKind
	Err  error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt can change the outcome.
func (e *CheckError) Retryable() bool {
	return e.Kind == KindFetchTransient || e.Kind == KindExtraction
}

// classify maps an underlying error to a CheckError.
func classify(err error) *CheckError {
	var checkErr *CheckError
	if errors.As(err, &checkErr) {
		return checkErr
	}

	switch {
	case errors.Is(err, parser.ErrNoStrategy):
		return &CheckError{Kind: KindNoStrategy, Err: err}
	case errors.Is(err, parser.ErrPriceNotFound), errors.Is(err, parser.ErrMalformedContent):
		return &CheckError{Kind: KindExtraction, Err: err}
	case fetch.IsPermanentStatus(err),
		errors.Is(err, fetch.ErrBodyTooLarge),
		errors.Is(err, fetch.ErrInvalidURL):
		return &CheckError{Kind: KindFetchPermanent, Err: err}
	default:
		return &CheckError{Kind: KindFetchTransient, Err: err}
	}
}
