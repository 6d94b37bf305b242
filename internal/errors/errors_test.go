// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/kraklabs/ctxengine/pkg/engine"
)

func TestUserError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		want string
	}{
		{"with wrapped error", &UserError{Message: "Cannot scan project", Err: fmt.Errorf("boom")}, "Cannot scan project: boom"},
		{"without wrapped error", &UserError{Message: "Invalid budget"}, "Invalid budget"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	cause := fmt.Errorf("underlying")
	tests := []struct {
		name     string
		err      *UserError
		wantCode int
		wantErr  error
	}{
		{"config", NewConfigError("m", "c", "f", cause), ExitConfig, cause},
		{"input", NewInputError("m", "c", "f"), ExitInput, nil},
		{"permission", NewPermissionError("m", "c", "f", cause), ExitPermission, cause},
		{"not found", NewNotFoundError("m", "c", "f"), ExitNotFound, nil},
		{"not initialized", NewNotInitializedError("m", "c", "f"), ExitNotInitialized, nil},
		{"internal", NewInternalError("m", "c", "f", cause), ExitInternal, cause},
	}
	seen := map[int]string{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", tt.err.ExitCode, tt.wantCode)
			}
			if tt.err.Message != "m" || tt.err.Cause != "c" || tt.err.Fix != "f" {
				t.Errorf("fields not set: %+v", tt.err)
			}
			if !errors.Is(tt.err.Unwrap(), tt.wantErr) {
				t.Errorf("Unwrap() = %v, want %v", tt.err.Unwrap(), tt.wantErr)
			}
		})
		if other, dup := seen[tt.wantCode]; dup {
			t.Errorf("exit code %d shared by %s and %s", tt.wantCode, other, tt.name)
		}
		seen[tt.wantCode] = tt.name
	}
}

func TestClassify(t *testing.T) {
	explicit := NewInputError("Bad flag", "", "")
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"user error passes through", fmt.Errorf("wrapped: %w", explicit), ExitInput},
		{"not initialized", engine.ErrNotInitialized, ExitNotInitialized},
		{"file not found", fmt.Errorf("%w: a.ts", engine.ErrFileNotFound), ExitNotFound},
		{"invalid path", fmt.Errorf("%w: \"../x\"", engine.ErrInvalidPath), ExitInput},
		{"missing root", fmt.Errorf("scan project: %w", fs.ErrNotExist), ExitNotFound},
		{"permission", &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrPermission}, ExitPermission},
		{"cancelled", context.Canceled, ExitInternal},
		{"anything else", fmt.Errorf("boom"), ExitInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ue := Classify(tt.err)
			if ue == nil {
				t.Fatal("Classify returned nil")
			}
			if ue.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", ue.ExitCode, tt.wantCode)
			}
			if !errors.Is(ue, tt.err) && !errors.Is(tt.err, ue) {
				t.Errorf("classified error lost the original chain")
			}
		})
	}

	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
	if Classify(explicit) != explicit {
		t.Error("a UserError should be returned as is")
	}
}

func TestUserError_Format(t *testing.T) {
	err := NewNotFoundError("File is not part of the project", "Unknown path", "Run 'ctxengine stats'")
	got := err.Format(true)

	want := "Error: File is not part of the project\n" +
		"Cause: Unknown path\n" +
		"Fix:   Run 'ctxengine stats'\n"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}

	short := NewInputError("Bad flag", "", "").Format(true)
	if strings.Contains(short, "Cause:") || strings.Contains(short, "Fix:") {
		t.Errorf("empty sections should be omitted, got %q", short)
	}
}

func TestUserError_ToJSON(t *testing.T) {
	err := NewConfigError("Cannot read config", "bad yaml", "fix the file", fmt.Errorf("line 3"))
	data, jerr := json.Marshal(err.ToJSON())
	if jerr != nil {
		t.Fatal(jerr)
	}
	for _, want := range []string{`"error":"Cannot read config"`, `"detail":"line 3"`, `"exit_code":1`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("missing %s in %s", want, data)
		}
	}

	bare, _ := json.Marshal(NewInputError("x", "", "").ToJSON())
	if strings.Contains(string(bare), "cause") || strings.Contains(string(bare), "detail") {
		t.Errorf("empty fields should be omitted, got %s", bare)
	}
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	if code := Report(&buf, nil, false); code != ExitSuccess || buf.Len() != 0 {
		t.Errorf("nil error: code=%d output=%q", code, buf.String())
	}

	buf.Reset()
	code := Report(&buf, engine.ErrNotInitialized, true)
	if code != ExitNotInitialized {
		t.Errorf("code = %d, want %d", code, ExitNotInitialized)
	}
	var decoded ErrorJSON
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded.ExitCode != ExitNotInitialized || decoded.Error != "No project loaded" {
		t.Errorf("unexpected payload %+v", decoded)
	}

	buf.Reset()
	t.Setenv("NO_COLOR", "1")
	Report(&buf, fmt.Errorf("boom"), false)
	if !strings.HasPrefix(buf.String(), "Error: Unexpected error: boom\n") {
		t.Errorf("unexpected text output %q", buf.String())
	}
}
