package mcp

import (
	"errors"
	"fmt"

	"github.com/mark3labs/assetkit-go"
)

var (
	// ErrMissingArgument indicates a required tool argument was absent or empty.
	ErrMissingArgument = errors.New("missing tool argument")

	// ErrInvalidArgument indicates a tool argument had the wrong type.
	ErrInvalidArgument = errors.New("invalid tool argument")
)

// ToolError wraps a failure with the tool that produced it.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// WrapToolError attaches the tool name to err.
func WrapToolError(err error, tool string) error {
	if err == nil {
		return nil
	}
	return &ToolError{Tool: tool, Err: err}
}

// IsInputError reports whether err was caused by the caller's arguments
// rather than by the ledger or metadata collaborators.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingArgument) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, assetkit.ErrInvalidAddress) ||
		errors.Is(err, assetkit.ErrInvalidAmount) ||
		errors.Is(err, assetkit.ErrInvalidMetadata) ||
		errors.Is(err, assetkit.ErrUnknownSigner) ||
		errors.Is(err, assetkit.ErrMissingSignature)
}
