package gpu

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrResourceExhausted is the cause of a CreationError when the driver reported it ran out of
	// memory or lost the context.
	ErrResourceExhausted = errors.New("gpu resources exhausted")

	// ErrNoProgram is returned by draw calls issued without a bound program.
	ErrNoProgram = errors.New("draw issued without a bound program")

	// ErrNoVertexArray is returned by draw calls issued without a bound vertex array.
	ErrNoVertexArray = errors.New("draw issued without a bound vertex array")

	// ErrIncompleteTarget is returned by draw calls into a framebuffer that was not checked
	// Complete.
	ErrIncompleteTarget = errors.New("draw target framebuffer is not complete")

	// ErrDestroyed is returned when an owner of released objects is used again.
	ErrDestroyed = errors.New("gpu objects already destroyed")
)

// ErrorCode is a polled driver error code.
type ErrorCode Enum

var errorCodeNames = map[ErrorCode]string{
	ErrorCode(InvalidEnum):                 "InvalidEnum",
	ErrorCode(InvalidValue):                "InvalidValue",
	ErrorCode(InvalidOperation):            "InvalidOperation",
	ErrorCode(StackOverflow):               "StackOverflow",
	ErrorCode(StackUnderflow):              "StackUnderflow",
	ErrorCode(OutOfMemory):                 "OutOfMemory",
	ErrorCode(InvalidFramebufferOperation): "InvalidFramebufferOperation",
	ErrorCode(ContextLost):                 "ContextLost",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UnknownError(0x%04X)", uint32(c))
}

// CreationError reports a null handle returned by the driver.
type CreationError struct {
	Kind  HandleKind
	Codes []ErrorCode
}

func (e *CreationError) Error() string {
	if len(e.Codes) == 0 {
		return fmt.Sprintf("create %s: driver returned a null handle", e.Kind)
	}
	return fmt.Sprintf("create %s: driver returned a null handle (%s)", e.Kind, joinCodes(e.Codes))
}

// Unwrap returns ErrResourceExhausted for out-of-memory and context-lost failures.
func (e *CreationError) Unwrap() error {
	if slices.Contains(e.Codes, ErrorCode(OutOfMemory)) || slices.Contains(e.Codes, ErrorCode(ContextLost)) {
		return ErrResourceExhausted
	}
	return nil
}

// CompileError carries the driver's compile log for the failing stage.
type CompileError struct {
	Stage ShaderStage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s Compile Error: %s", e.Stage, strings.TrimSpace(e.Log))
}

// LinkError carries the driver's link log.
type LinkError struct {
	Program string
	Log     string
}

func (e *LinkError) Error() string {
	if e.Program == "" {
		return fmt.Sprintf("Link Error: %s", strings.TrimSpace(e.Log))
	}
	return fmt.Sprintf("Link Error (%s): %s", e.Program, strings.TrimSpace(e.Log))
}

// FramebufferIncompleteError reports the attachment combination of a framebuffer that failed its
// completeness check.
type FramebufferIncompleteError struct {
	Framebuffer string
	Attachments []string
	Status      Enum
	Reason      string
}

var framebufferStatusNames = map[Enum]string{
	FramebufferUndefined:                   "UNDEFINED",
	FramebufferIncompleteAttachment:        "INCOMPLETE_ATTACHMENT",
	FramebufferIncompleteMissingAttachment: "INCOMPLETE_MISSING_ATTACHMENT",
	FramebufferIncompleteDrawBuffer:        "INCOMPLETE_DRAW_BUFFER",
	FramebufferIncompleteReadBuffer:        "INCOMPLETE_READ_BUFFER",
	FramebufferUnsupported:                 "UNSUPPORTED",
	FramebufferIncompleteMultisample:       "INCOMPLETE_MULTISAMPLE",
}

// FramebufferStatusName returns the symbolic name of a completeness status.
func FramebufferStatusName(status Enum) string {
	if status == FramebufferComplete {
		return "COMPLETE"
	}
	if name, ok := framebufferStatusNames[status]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", uint32(status))
}

func (e *FramebufferIncompleteError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "framebuffer %q incomplete", e.Framebuffer)
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %s)", FramebufferStatusName(e.Status))
	}
	if len(e.Attachments) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Attachments, ", "))
	}
	return b.String()
}

// UnsupportedFormatError reports an image whose pixel layout has no mapped texture format.
type UnsupportedFormatError struct {
	Name     string
	Channels int
	HDR      bool
}

func (e *UnsupportedFormatError) Error() string {
	kind := "8-bit"
	if e.HDR {
		kind = "float"
	}
	return fmt.Sprintf("unsupported image format for %q: %d %s channels", e.Name, e.Channels, kind)
}

// DriverError is one or more polled driver error codes, tagged with the pass and call that
// surfaced them.
type DriverError struct {
	Codes []ErrorCode
	Pass  string
	Call  string
}

func (e *DriverError) Error() string {
	where := e.Call
	if e.Pass != "" {
		where = e.Pass + "/" + e.Call
	}
	return fmt.Sprintf("driver error after %s: %s", where, joinCodes(e.Codes))
}

// Has reports whether the error includes the given code.
func (e *DriverError) Has(code Enum) bool {
	return slices.Contains(e.Codes, ErrorCode(code))
}

func joinCodes(codes []ErrorCode) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
