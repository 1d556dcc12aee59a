package services

import (
	"errors"
	"fmt"
)

type GenerationErrorKind string

const (
	KindEmptyInput         GenerationErrorKind = "EmptyInput"
	KindNoTopicsSelected   GenerationErrorKind = "NoTopicsSelected"
	KindNoJSONStart        GenerationErrorKind = "NoJsonStart"
	KindUnparsableJSON     GenerationErrorKind = "UnparsableJson"
	KindInvalidTopicsShape GenerationErrorKind = "InvalidTopicsShape"
	KindInvalidCourseShape GenerationErrorKind = "InvalidCourseShape"
	KindTimeout            GenerationErrorKind = "Timeout"
	KindModelUnavailable   GenerationErrorKind = "ModelUnavailable"
)

// GenerationError is returned by course generation. Input kinds mean the caller must change the
// request; every other kind means nothing usable came back and a retry may help.
type GenerationError struct {
	Kind GenerationErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.UserMessage(), e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.UserMessage())
}

func (e *GenerationError) Unwrap() error { return e.Err }

// UserMessage is the text shown to the learner for this failure class.
func (e *GenerationError) UserMessage() string {
	switch e.Kind {
	case KindEmptyInput:
		return "Please enter what you want to learn before generating topics."
	case KindNoTopicsSelected:
		return "Please select at least one topic to generate a course."
	case KindTimeout:
		return "Generation took too long. Please try again."
	case KindModelUnavailable:
		return "The course generator is unavailable right now. Please try again."
	}
	return "Nothing usable was generated. Please try again."
}

func (e *GenerationError) IsInput() bool {
	return e.Kind == KindEmptyInput || e.Kind == KindNoTopicsSelected
}

// IsInputError reports a request the caller has to fix.
func IsInputError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge) && ge.IsInput()
}

// IsGenerationError reports a model or output failure that a retry may fix.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge) && !ge.IsInput()
}

// GenerationKind returns the kind carried by err, or "".
func GenerationKind(err error) GenerationErrorKind {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
