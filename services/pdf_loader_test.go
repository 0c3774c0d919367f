package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPDF_RejectsNonPDFBeforeIO(t *testing.T) {
	extractor := &fakePDFExtractor{pages: []string{"should not be read"}}
	_, err := LoadPDF(extractor, "uploads/notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, 0, extractor.calls, "the extension check must fail before any I/O")
}

func TestLoadPDF_OneDocumentPerPage(t *testing.T) {
	extractor := &fakePDFExtractor{pages: []string{"page one text", "page two text"}}
	docs, err := LoadPDF(extractor, "uploads/report.pdf")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "page one text", docs[0].Text)
	assert.Equal(t, "uploads/report.pdf", docs[0].Metadata["source"])
	assert.Equal(t, "1", docs[0].Metadata["page"])
	assert.Equal(t, "2", docs[1].Metadata["page"])
}

func TestLoadPDF_SkipsBlankPages(t *testing.T) {
	extractor := &fakePDFExtractor{pages: []string{"content", "   \n  ", "more"}}
	docs, err := LoadPDF(extractor, "uploads/report.pdf")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "3", docs[1].Metadata["page"], "page numbering follows the original pages")
}

func TestLoadPDF_EmptyExtraction(t *testing.T) {
	extractor := &fakePDFExtractor{pages: []string{"", "  "}}
	_, err := LoadPDF(extractor, "uploads/blank.pdf")
	assert.ErrorIs(t, err, ErrEmptyExtraction)
}

func TestLoadPDF_ExtractorFailure(t *testing.T) {
	extractor := &fakePDFExtractor{err: errors.New("corrupt file")}
	_, err := LoadPDF(extractor, "uploads/bad.pdf")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
}
