package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHash(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := ContentHash([]byte("same bytes"))
		b := ContentHash([]byte("same bytes"))
		assert.Equal(t, a, b)
	})

	t.Run("distinct content distinct hash", func(t *testing.T) {
		a := ContentHash([]byte("one"))
		b := ContentHash([]byte("two"))
		assert.NotEqual(t, a, b)
	})

	t.Run("hex encoded 256 bits", func(t *testing.T) {
		h := ContentHash([]byte("x"))
		assert.Len(t, h, 64)
	})
}

func TestNewFileMetadata(t *testing.T) {
	content := []byte("identical document bytes")

	t.Run("name does not affect hash", func(t *testing.T) {
		a := NewFileMetadata(RawFile{Name: "report.pdf", Content: content})
		b := NewFileMetadata(RawFile{Name: "renamed.pdf", Content: content})
		assert.Equal(t, a.ContentHash, b.ContentHash)
		assert.NotEqual(t, a.Title, b.Title)
	})

	t.Run("title drops extension", func(t *testing.T) {
		m := NewFileMetadata(RawFile{Name: "quarterly report.docx", Content: content})
		assert.Equal(t, "quarterly report", m.Title)
	})

	t.Run("defaults for uploader and department", func(t *testing.T) {
		m := NewFileMetadata(RawFile{Name: "a.txt", Content: content})
		assert.Equal(t, "default", m.Uploader)
		assert.Equal(t, "default", m.Department)
	})

	t.Run("tags carry identity", func(t *testing.T) {
		m := NewFileMetadata(RawFile{Name: "a.txt", Content: content, Uploader: "kim", Department: "legal"})
		tags := m.Tags()
		assert.Equal(t, m.ContentHash, tags["content_hash"])
		assert.Equal(t, "kim", tags["uploader"])
		assert.Equal(t, "legal", tags["department"])
	})
}

func TestChunkID(t *testing.T) {
	id := ChunkID(PrefixText, "abc123", "7")
	assert.Equal(t, "text_abc123_chunk_7", id)

	t.Run("prefixes disambiguate", func(t *testing.T) {
		a := ChunkID(PrefixText, "abc123", "0")
		b := ChunkID(PrefixImage, "abc123", "0")
		c := ChunkID(PrefixSummary, "abc123", "0")
		assert.NotEqual(t, a, b)
		assert.NotEqual(t, b, c)
	})
}

func TestImageClassRetrievable(t *testing.T) {
	tests := []struct {
		class ImageClass
		want  bool
	}{
		{ImageClassIcon, false},
		{ImageClassShape, false},
		{ImageClassLogo, false},
		{ImageClassPicture, true},
		{ImageClassInformation, true},
		{ImageClassUnset, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.class.Retrievable(), "class %q", tt.class)
	}
}

func TestPageStats(t *testing.T) {
	var s PageStats
	s.Update(true, true)
	s.Update(true, false)
	s.Update(false, true)
	s.Update(false, false)
	s.Update(true, false)

	assert.Equal(t, 1, s.TextYesImageYes)
	assert.Equal(t, 2, s.TextYesImageNo)
	assert.Equal(t, 1, s.TextNoImageYes)
	assert.Equal(t, 1, s.TextNoImageNo)
	assert.Equal(t, 5, s.Total())
}

func TestValidateRawFile(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, ValidateRawFile(RawFile{Name: "a.pdf", Content: []byte("x")}))
	})

	t.Run("empty name", func(t *testing.T) {
		err := ValidateRawFile(RawFile{Content: []byte("x")})
		assert.ErrorIs(t, err, ErrEmptyFileName)
	})

	t.Run("empty content", func(t *testing.T) {
		err := ValidateRawFile(RawFile{Name: "a.pdf"})
		assert.ErrorIs(t, err, ErrEmptyContent)
	})
}

func TestValidatePageRange(t *testing.T) {
	require.NoError(t, ValidatePageRange(PageRange{StartPage: 1, EndPage: 3}))
	require.NoError(t, ValidatePageRange(PageRange{StartPage: 2, EndPage: 2}))
	assert.ErrorIs(t, ValidatePageRange(PageRange{StartPage: 3, EndPage: 1}), ErrInvalidPageRange)
	assert.ErrorIs(t, ValidatePageRange(PageRange{StartPage: -1, EndPage: 0}), ErrNegativePageNo)
}

func TestFatalResult(t *testing.T) {
	r := FatalResult("doc.pdf", &FatalError{Type: FatalUnclassified, Data: "boom"})
	assert.True(t, r.Failed())
	assert.Zero(t, r.PageCount)
	assert.Zero(t, r.TextCount)
	assert.Zero(t, r.ImageCount)
	assert.Equal(t, FatalUnclassified, r.Fatal.Type)
}
