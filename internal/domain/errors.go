package domain

import "errors"

var (
	// ErrNotFound indicates an unknown session or quiz identifier
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidArgument indicates malformed or out-of-range client input
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedFormat indicates the uploaded file is not a PDF
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyDocument indicates the PDF contained no extractable text
	ErrEmptyDocument = errors.New("document contains no text")
	// ErrUpstream indicates an embedding, vector-store or completion provider failure
	ErrUpstream = errors.New("upstream provider error")
	// ErrGenerationMalformed indicates model output that failed schema validation
	ErrGenerationMalformed = errors.New("generated quiz is malformed")
	// ErrAlreadyGraded indicates a second submission to a graded quiz
	ErrAlreadyGraded = errors.New("quiz already graded")
)
