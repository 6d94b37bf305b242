// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package output renders command results for machines and for prompts.
//
// JSON is used for --json output. WriteWindow renders a context window as
// plain text blocks, one per file, ready to paste into a model prompt.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kraklabs/ctxengine/pkg/selector"
)

// JSON writes data as indented JSON.
func JSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// JSONCompact writes data as a single JSON line.
func JSONCompact(w io.Writer, data any) error {
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// WindowHeader is the line written before each file of a rendered window.
func WindowHeader(path, language string, score float64, tokens int) string {
	return fmt.Sprintf("==> %s [%s] score=%.1f tokens=%d <==", path, language, score, tokens)
}

// WriteWindow renders w as one header line plus content per file, in
// window order, followed by a summary line.
func WriteWindow(out io.Writer, w *selector.ContextWindow) error {
	var b strings.Builder
	for _, f := range w.Files {
		b.WriteString(WindowHeader(f.Path, f.Language, f.RelevanceScore, selector.EstimateTokens(f.Content)))
		b.WriteString("\n")
		b.WriteString(f.Content)
		if !strings.HasSuffix(f.Content, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "-- %d files, %d/%d tokens, threshold %.1f, compression %.2f --\n",
		len(w.Files), w.TotalTokens, w.Budget, w.RelevanceThreshold, w.CompressionRatio)

	_, err := io.WriteString(out, b.String())
	return err
}
