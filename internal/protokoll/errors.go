package protokoll

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateSyntax marks malformed markup or custom tags in the source.
	ErrTemplateSyntax = errors.New("protokoll: template syntax error")
	// ErrTagSyntax marks an invalid invocation of a custom tag. It is part of
	// the ErrTemplateSyntax family.
	ErrTagSyntax = fmt.Errorf("%w: invalid tag", ErrTemplateSyntax)
	// ErrForbiddenCommand marks a txt2tags command line (%!) in the source.
	ErrForbiddenCommand = errors.New("protokoll: forbidden command")
	// ErrEncoding marks a source that is not valid UTF-8.
	ErrEncoding = errors.New("protokoll: source is not UTF-8 encoded")
	// ErrToolchain marks a failure of txt2tags or pdflatex.
	ErrToolchain = errors.New("protokoll: toolchain error")
	// ErrNoSource is returned when no markup source could be resolved.
	ErrNoSource = errors.New("protokoll: no source available")
)

// TagError is returned by tag handlers for invalid invocations.
type TagError struct {
	Tag string
	Msg string
}

func (e *TagError) Error() string {
	return fmt.Sprintf("tag %q: %s", e.Tag, e.Msg)
}

func (e *TagError) Unwrap() error {
	return ErrTagSyntax
}

func tagErrorf(tag, format string, args ...any) *TagError {
	return &TagError{Tag: tag, Msg: fmt.Sprintf(format, args...)}
}

// ForbiddenCommandError reports the first source line starting with "%!".
type ForbiddenCommandError struct {
	Line int
	Text string
}

func (e *ForbiddenCommandError) Error() string {
	return fmt.Sprintf("forbidden command in line %d: %s", e.Line, e.Text)
}

func (e *ForbiddenCommandError) Unwrap() error {
	return ErrForbiddenCommand
}

// ToolchainError carries the raw diagnostic output of a failed toolchain stage.
type ToolchainError struct {
	Stage  string
	Output string
	Err    error
}

func (e *ToolchainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v: %s", e.Stage, e.Err, e.Output)
	}
	return fmt.Sprintf("%s failed: %s", e.Stage, e.Output)
}

func (e *ToolchainError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrToolchain, e.Err}
	}
	return []error{ErrToolchain}
}
