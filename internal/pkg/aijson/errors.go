package aijson

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNoJSONStart    Kind = "NoJsonStart"
	KindUnparsableJSON Kind = "UnparsableJson"
)

var (
	ErrNoJSONStart    = errors.New("no json object or array found in text")
	ErrUnparsableJSON = errors.New("json candidate could not be parsed")
)

// ExtractError keeps every stage of a failed extraction so callers can log what the model sent.
type ExtractError struct {
	Kind      Kind
	Original  string
	Candidate string
	Repaired  string
	Err       error
}

func (e *ExtractError) Error() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case KindNoJSONStart:
		return ErrNoJSONStart.Error()
	case KindUnparsableJSON:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", ErrUnparsableJSON.Error(), e.Err)
		}
		return ErrUnparsableJSON.Error()
	}
	return "json extraction failed"
}

func (e *ExtractError) Unwrap() error { return e.Err }

func (e *ExtractError) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrNoJSONStart:
		return e.Kind == KindNoJSONStart
	case ErrUnparsableJSON:
		return e.Kind == KindUnparsableJSON
	}
	return false
}

// KindOf returns the extraction failure kind carried by err, or "".
func KindOf(err error) Kind {
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}
