package openai

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDescriptionPrompt(t *testing.T) {
	prompt := buildDescriptionPrompt()
	assert.Contains(t, prompt, `"icon", "shape", "logo", "picture", "information"`)
	assert.Contains(t, prompt, "image_type")
	assert.Contains(t, prompt, "image_description")
}

func TestRepairJSON(t *testing.T) {
	// Missing opening quote before a key.
	broken := `{"image_type": "picture", image_description": "a dog"}`
	repaired := repairJSON(broken)

	var parsed description
	require.NoError(t, json.Unmarshal([]byte(repaired), &parsed))
	assert.Equal(t, "picture", parsed.ImageType)
	assert.Equal(t, "a dog", parsed.ImageDescription)
}

func TestSampleTexts(t *testing.T) {
	t.Run("joins with newline", func(t *testing.T) {
		assert.Equal(t, "a\nb", sampleTexts([]string{"a", "b"}))
	})

	t.Run("bounded", func(t *testing.T) {
		long := strings.Repeat("x", maxSummaryInputChars)
		got := sampleTexts([]string{long, "overflow"})
		assert.LessOrEqual(t, len(got), maxSummaryInputChars)
		assert.NotContains(t, got, "overflow")
	})

	t.Run("truncates at rune boundary", func(t *testing.T) {
		// The budget lands mid-rune in the second text.
		got := sampleTexts([]string{strings.Repeat("x", maxSummaryInputChars-3), "日本語"})
		assert.True(t, utf8.ValidString(got))
		assert.LessOrEqual(t, len(got), maxSummaryInputChars)
	})
}

func TestTruncateAtRune(t *testing.T) {
	assert.Equal(t, "abc", truncateAtRune("abc", 5))
	assert.Equal(t, "ab", truncateAtRune("abc", 2))
	assert.Equal(t, "日", truncateAtRune("日本", 4))
	assert.Equal(t, "", truncateAtRune("日本", 2))
	assert.True(t, utf8.ValidString(truncateAtRune("héllo", 2)))
}

func TestImageMIMEType(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	assert.Equal(t, "image/png", imageMIMEType(png))

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}
	assert.Equal(t, "image/jpeg", imageMIMEType(jpeg))

	assert.Equal(t, "image/jpeg", imageMIMEType([]byte("not an image")))
}
