package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-guidance/internal/matching"
	"github.com/jonathan/career-guidance/internal/observability"
)

const (
	formatJSON = "json"
	formatText = "text"
)

// outputFlags are shared by the offline commands
type outputFlags struct {
	format string
	out    string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", formatJSON, "Output format: json or text")
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "Write JSON output to this file instead of stdout")
}

func (o *outputFlags) validate() error {
	switch o.format {
	case formatJSON, formatText:
		return nil
	default:
		return fmt.Errorf("invalid --format %q (must be json or text)", o.format)
	}
}

// write emits v as indented JSON, or through text when --format=text.
// --out always receives JSON.
func (o *outputFlags) write(cmd *cobra.Command, v any, text func(*observability.Printer)) error {
	if o.out != "" {
		return writeJSONFile(o.out, v)
	}
	w := cmd.OutOrStdout()
	if o.format == formatText {
		text(observability.NewPrinter(w))
		return nil
	}
	return writeJSON(w, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	// Ensure output directory exists
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	if err := writeJSON(f, v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func engineFor(matcher string) (*matching.Engine, error) {
	m, err := matching.MatcherByName(matcher)
	if err != nil {
		return nil, err
	}
	return matching.NewEngine(matching.WithMatcher(m)), nil
}
