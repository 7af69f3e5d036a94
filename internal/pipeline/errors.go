package pipeline

import (
	"errors"
	"fmt"
)

// ErrSkipped marks a raw record that was intentionally excluded by an
// adapter: a filtering outcome, not a failure. Callers count skips and
// continue.
var ErrSkipped = errors.New("record skipped")

// ErrEmptyInput is returned by Bucket when no records survived filtering;
// percentages are undefined over an empty batch.
var ErrEmptyInput = errors.New("no records to bucket")

// SkipRecord wraps ErrSkipped with the reason the record was excluded.
func SkipRecord(reason string) error {
	return fmt.Errorf("%w: %s", ErrSkipped, reason)
}

// InvalidRecordError reports a malformed or out-of-range intermediate
// record. It fails normalization for the one record only; batch processing
// continues over the valid remainder.
type InvalidRecordError struct {
	Field  string
	Reason string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid record: %s %s", e.Field, e.Reason)
}

// IsSkipped reports whether err is a filtering outcome rather than a failure.
func IsSkipped(err error) bool {
	return errors.Is(err, ErrSkipped)
}

// IsInvalid reports whether err is an InvalidRecordError.
func IsInvalid(err error) bool {
	var ir *InvalidRecordError
	return errors.As(err, &ir)
}
