// ABOUTME: Tests for embedding output rendering.
// ABOUTME: Covers nested-list float formatting, JSON records, and plain values.
package embeddings

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/imgembed/internal/models"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"python", FormatPython, false},
		{"", FormatPython, false},
		{"JSON", FormatJSON, false},
		{"plain", FormatPlain, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPythonFloat(t *testing.T) {
	tests := []struct {
		input float32
		want  string
	}{
		{1, "1.0"},
		{0, "0.0"},
		{-2, "-2.0"},
		{0.5, "0.5"},
		{0.25, "0.25"},
		{0.00001, "9.999999747378752e-06"},
		{float32(math.NaN()), "nan"},
		{float32(math.Inf(-1)), "-inf"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, pythonFloat(tt.input), "pythonFloat(%v)", tt.input)
	}
}

func TestWritePython(t *testing.T) {
	var buf bytes.Buffer
	emb := models.NewEmbedding([]float32{0.5, -0.25, 1}, "a.png", "/models/clip-vit-base-patch32")

	require.NoError(t, Write(&buf, emb, FormatPython))
	assert.Equal(t, "[[0.5, -0.25, 1.0]]\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	emb := models.NewEmbedding([]float32{0.6, 0.8}, "a.png", "/models/clip-vit-base-patch32/")

	require.NoError(t, Write(&buf, emb, FormatJSON))

	var decoded models.Embedding
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded), "output %q", buf.String())
	assert.Equal(t, "clip-vit-base-patch32", decoded.Model)
	assert.Equal(t, 2, decoded.Dimension)
	assert.Len(t, decoded.Vector, 2)
	assert.Equal(t, "a.png", decoded.Image)
}

func TestWritePlain(t *testing.T) {
	var buf bytes.Buffer
	emb := models.NewEmbedding([]float32{0.6, 0.8}, "a.png", "m")

	require.NoError(t, Write(&buf, emb, FormatPlain))
	assert.Equal(t, "0.6 0.8", strings.TrimSpace(buf.String()))
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer

	assert.Error(t, Write(&buf, models.NewEmbedding(nil, "", ""), Format("xml")))
	assert.Zero(t, buf.Len(), "nothing is written for an unknown format")
}
