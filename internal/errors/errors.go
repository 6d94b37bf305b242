// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors turns failures of the ctxengine CLI into structured,
// user-facing errors with a stable exit code.
//
// A UserError says what went wrong (Message), why (Cause) and what to do
// about it (Fix):
//
//	return errors.NewNotInitializedError(
//	    "No project loaded",
//	    "The context engine has not scanned a project yet",
//	    "Run 'ctxengine init <dir>' first",
//	)
//
// Errors coming out of pkg/engine can be mapped with Classify, which picks
// the exit code from the sentinel errors in the chain.
//
// # Exit Codes
//
//   - ExitSuccess (0)
//   - ExitConfig (1): unreadable or invalid configuration
//   - ExitInput (4): bad arguments or flag values
//   - ExitPermission (5): a file or directory could not be accessed
//   - ExitNotFound (6): the project root or a file does not exist
//   - ExitNotInitialized (7): a query ran before a project was scanned
//   - ExitInternal (10): anything else; a bug worth reporting
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/kraklabs/ctxengine/pkg/engine"
)

// Exit codes.
const (
	ExitSuccess        = 0
	ExitConfig         = 1
	ExitInput          = 4
	ExitPermission     = 5
	ExitNotFound       = 6
	ExitNotInitialized = 7

	// ExitInternal signals a bug.
	ExitInternal = 10
)

// UserError is an error meant to be shown to the person running the CLI.
type UserError struct {
	Message  string
	Cause    string
	Fix      string
	ExitCode int

	// Err is the wrapped error, if any.
	Err error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func newUserError(code int, msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: code, Err: err}
}

// NewConfigError reports a configuration file that cannot be read or parsed.
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitConfig, msg, cause, fix, err)
}

// NewInputError reports invalid arguments or flag values.
func NewInputError(msg, cause, fix string) *UserError {
	return newUserError(ExitInput, msg, cause, fix, nil)
}

// NewPermissionError reports a path that exists but cannot be accessed.
func NewPermissionError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitPermission, msg, cause, fix, err)
}

// NewNotFoundError reports a missing project root or file.
func NewNotFoundError(msg, cause, fix string) *UserError {
	return newUserError(ExitNotFound, msg, cause, fix, nil)
}

// NewNotInitializedError reports a query issued before any project was
// scanned.
func NewNotInitializedError(msg, cause, fix string) *UserError {
	return newUserError(ExitNotInitialized, msg, cause, fix, nil)
}

// NewInternalError reports an unexpected failure.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitInternal, msg, cause, fix, err)
}

// Classify maps err to a UserError. UserErrors pass through unchanged;
// engine sentinels and file system errors get a matching exit code; the
// rest become internal errors. Classify returns nil for a nil error.
func Classify(err error) *UserError {
	if err == nil {
		return nil
	}
	var ue *UserError
	if stderrors.As(err, &ue) {
		return ue
	}

	switch {
	case stderrors.Is(err, engine.ErrNotInitialized):
		return newUserError(ExitNotInitialized,
			"No project loaded",
			"The context engine has not scanned a project yet",
			"Run 'ctxengine init <dir>' or pass --root",
			err)
	case stderrors.Is(err, engine.ErrFileNotFound):
		return newUserError(ExitNotFound,
			"File is not part of the project",
			"The path is unknown, excluded, or has an unsupported extension",
			"Check the path is relative to the project root, then run 'ctxengine stats' to see what was scanned",
			err)
	case stderrors.Is(err, engine.ErrInvalidPath):
		return newUserError(ExitInput,
			"Invalid file path",
			"Paths must be non-empty and stay inside the project root",
			"Pass a path relative to the project root",
			err)
	case stderrors.Is(err, fs.ErrNotExist):
		return newUserError(ExitNotFound,
			"Path does not exist",
			"",
			"Check the project root and try again",
			err)
	case stderrors.Is(err, fs.ErrPermission):
		return newUserError(ExitPermission,
			"Permission denied",
			"",
			"Run with a user that can read the project directory",
			err)
	case stderrors.Is(err, context.Canceled):
		return newUserError(ExitInternal, "Interrupted", "", "", err)
	}

	return newUserError(ExitInternal,
		"Unexpected error",
		"",
		"This is a bug. Please report it with the command you ran",
		err)
}

var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format renders the error for a terminal. Empty Cause and Fix lines are
// left out. NO_COLOR is honored.
func (e *UserError) Format(noColor bool) string {
	saved := color.NoColor
	defer func() { color.NoColor = saved }()
	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var b strings.Builder
	b.WriteString(colorError.Sprint("Error: "))
	b.WriteString(e.Error())
	b.WriteString("\n")
	if e.Cause != "" {
		b.WriteString(colorCause.Sprint("Cause: "))
		b.WriteString(e.Cause)
		b.WriteString("\n")
	}
	if e.Fix != "" {
		b.WriteString(colorFix.Sprint("Fix:   "))
		b.WriteString(e.Fix)
		b.WriteString("\n")
	}
	return b.String()
}

// ErrorJSON is the --json rendering of a UserError.
type ErrorJSON struct {
	Error    string `json:"error"`
	Detail   string `json:"detail,omitempty"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the error for machine consumption.
func (e *UserError) ToJSON() ErrorJSON {
	out := ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
	if e.Err != nil {
		out.Detail = e.Err.Error()
	}
	return out
}

// Report writes err to w, as JSON or formatted text, and returns the exit
// code to use.
func Report(w io.Writer, err error, jsonOutput bool) int {
	ue := Classify(err)
	if ue == nil {
		return ExitSuccess
	}
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(ue.ToJSON())
	} else {
		fmt.Fprint(w, ue.Format(false))
	}
	return ue.ExitCode
}

// FatalError reports err on stderr and exits. It returns only when err is
// nil.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}
	os.Exit(Report(os.Stderr, err, jsonOutput))
}
