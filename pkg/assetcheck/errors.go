package assetcheck

import "fmt"

// RejectionCode classifies why an asset was rejected. Codes are stable and
// part of the API contract; clients branch on them.
type RejectionCode string

const (
	CodeSpecNotFound          RejectionCode = "SpecNotFound"
	CodeFormatNotAllowed      RejectionCode = "FormatNotAllowed"
	CodeTooLarge              RejectionCode = "TooLarge"
	CodeCorrupt               RejectionCode = "Corrupt"
	CodeDimensionMismatch     RejectionCode = "DimensionMismatch"
	CodeTransparencyRequired  RejectionCode = "TransparencyRequired"
	CodeTransparencyForbidden RejectionCode = "TransparencyForbidden"
	CodeInvalidEncoding       RejectionCode = "InvalidEncoding"
	CodeMissingDimensions     RejectionCode = "MissingDimensions"
	CodeUnsafeContent         RejectionCode = "UnsafeContent"
)

// RejectionError is a typed validation failure. Details carries structured
// context (expected vs actual values) for programmatic consumers.
type RejectionError struct {
	Code    RejectionCode  `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func rejectf(code RejectionCode, details map[string]any, format string, args ...any) *RejectionError {
	return &RejectionError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: details,
	}
}

// AsRejection unwraps err into a RejectionError if it is one.
func AsRejection(err error) (*RejectionError, bool) {
	rej, ok := err.(*RejectionError)
	return rej, ok
}
