package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/detect"
)

func TestTextExtractor(t *testing.T) {
	t.Run("plain utf8", func(t *testing.T) {
		result, err := NewTextExtractor(nil).Extract(context.Background(), []byte("hello, 世界"))
		require.NoError(t, err)
		require.Len(t, result.Texts, 1)
		assert.Equal(t, 0, result.Texts[0].PageNo)
		assert.Equal(t, "hello, 世界", result.Texts[0].Text)
		assert.Equal(t, 1, result.PageCount)
	})

	t.Run("utf16 BOM", func(t *testing.T) {
		content := []byte{0xFF, 0xFE, 'h', 0, 'i', 0}
		result, err := NewTextExtractor(nil).Extract(context.Background(), content)
		require.NoError(t, err)
		assert.Equal(t, "hi", result.Texts[0].Text)
	})

	t.Run("configured encoding", func(t *testing.T) {
		// "café" in Latin-1.
		content := []byte{'c', 'a', 'f', 0xE9}
		result, err := NewTextExtractor(charmap.ISO8859_1).Extract(context.Background(), content)
		require.NoError(t, err)
		assert.Equal(t, "café", result.Texts[0].Text)
	})
}

func TestImageExtractor(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	result, err := NewImageExtractor().Extract(context.Background(), payload)
	require.NoError(t, err)
	require.Len(t, result.Images, 1)
	assert.Equal(t, 0, result.Images[0].PageNo)
	assert.Equal(t, 0, result.Images[0].ImageNo)
	assert.Equal(t, payload, result.Images[0].Payload)
	assert.Empty(t, result.Texts)

	_, err = NewImageExtractor().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup(detect.FileTypePDF)
	assert.False(t, ok)

	text := NewTextExtractor(nil)
	r.Register(detect.FileTypeTxt, text)
	got, ok := r.Lookup(detect.FileTypeTxt)
	require.True(t, ok)
	assert.Same(t, text, got.(*TextExtractor))
}

func TestResultEmpty(t *testing.T) {
	assert.True(t, (&Result{PageCount: 3}).Empty())
	assert.False(t, (&Result{Texts: []core.PageText{{Text: "x"}}}).Empty())
	assert.False(t, (&Result{Tables: []core.TableText{{Text: "x"}}}).Empty())
}

func TestMarkdownTable(t *testing.T) {
	t.Run("header and rows", func(t *testing.T) {
		got := MarkdownTable([][]string{{"Name", "Value"}, {"alpha", "1"}})
		assert.Equal(t, "| Name | Value |\n| --- | --- |\n| alpha | 1 |", got)
	})

	t.Run("ragged rows padded", func(t *testing.T) {
		got := MarkdownTable([][]string{{"a", "b"}, {"c"}})
		assert.Equal(t, "| a | b |\n| --- | --- |\n| c |  |", got)
	})

	t.Run("pipes escaped", func(t *testing.T) {
		assert.Contains(t, MarkdownTable([][]string{{"a|b"}}), "a\\|b")
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", MarkdownTable(nil))
	})
}
