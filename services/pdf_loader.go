package services

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"github/aiworkbench/rag/models"
)

// UniPDFExtractor extracts per-page text with UniPDF.
type UniPDFExtractor struct{}

// NewUniPDFExtractor registers the metered license key and returns the
// extractor. A bad or missing key is reported but not fatal; extraction
// calls will fail instead.
func NewUniPDFExtractor(licenseKey string) *UniPDFExtractor {
	if err := license.SetMeteredKey(licenseKey); err != nil {
		log.Printf("PDF WARN: failed to set UniPDF license key: %v. PDF processing will fail.", err)
	}
	return &UniPDFExtractor{}
}

// ExtractPages returns the text content of every page, in page order.
func (e *UniPDFExtractor) ExtractPages(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return nil, err
	}
	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return nil, err
		}
		ex, err := extractor.New(page)
		if err != nil {
			return nil, err
		}
		text, err := ex.ExtractText()
		if err != nil {
			return nil, err
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// LoadPDF turns a local PDF file into one RawDocument per page. The
// extension is checked before any I/O happens.
func LoadPDF(extractor PDFExtractor, path string) ([]models.RawDocument, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return nil, fmt.Errorf("%w: %s is not a PDF file", ErrUnsupportedFormat, path)
	}
	log.Printf("LOADER: Loading PDF: %s", path)

	pages, err := extractor.ExtractPages(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", path, err)
	}

	docs := make([]models.RawDocument, 0, len(pages))
	for i, text := range pages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, models.RawDocument{
			Text: text,
			Metadata: map[string]string{
				"source": path,
				"page":   fmt.Sprintf("%d", i+1),
			},
		})
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyExtraction, path)
	}
	return docs, nil
}
