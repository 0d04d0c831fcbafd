// ABOUTME: Text renderings of an embedding for standard output.
// ABOUTME: Supports a nested-list form, JSON, and space-separated plain values.
package embeddings

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/2389-research/imgembed/internal/models"
)

// Format names an output rendering.
type Format string

const (
	// FormatPython prints a nested list, e.g. [[0.0123, -0.0456]].
	FormatPython Format = "python"
	FormatJSON   Format = "json"
	FormatPlain  Format = "plain"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatPython, FormatJSON, FormatPlain:
		return f, nil
	case "":
		return FormatPython, nil
	}
	return "", fmt.Errorf("unknown output format %q (want python, json, or plain)", name)
}

// Write renders emb to w in the given format, followed by a newline.
func Write(w io.Writer, emb *models.Embedding, format Format) error {
	switch format {
	case FormatPython, "":
		_, err := io.WriteString(w, pythonList(emb.Vector)+"\n")
		return err
	case FormatJSON:
		return json.NewEncoder(w).Encode(emb)
	case FormatPlain:
		parts := make([]string, len(emb.Vector))
		for i, v := range emb.Vector {
			parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
		}
		_, err := io.WriteString(w, strings.Join(parts, " ")+"\n")
		return err
	}
	return fmt.Errorf("unknown output format %q", format)
}

// pythonList renders a single-row matrix the way a nested float list prints.
func pythonList(v []float32) string {
	var b strings.Builder
	b.WriteString("[[")
	for i, x := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pythonFloat(x))
	}
	b.WriteString("]]")
	return b.String()
}

// pythonFloat widens x to float64 and prints its shortest round-trip form,
// keeping a ".0" on integral values.
func pythonFloat(x float32) string {
	s := strconv.FormatFloat(float64(x), 'g', -1, 64)
	switch s {
	case "NaN":
		return "nan"
	case "+Inf":
		return "inf"
	case "-Inf":
		return "-inf"
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
