package models

// SourceKind identifies which loader handles a source.
type SourceKind string

const (
	SourcePDF     SourceKind = "pdf"
	SourceYouTube SourceKind = "youtube"
	SourceWebPage SourceKind = "webpage"
)

// SourceDescriptor is the classified form of a raw ingestion input.
// It is computed once from the file path or URL and never mutated.
type SourceDescriptor struct {
	Path string
	Kind SourceKind
}

// RawDocument is one unit of extracted text (a PDF page, a transcript,
// a web page) before chunking. It lives only for the duration of a
// single ingestion request.
type RawDocument struct {
	Text     string
	Metadata map[string]string
}

// Chunk is the unit of embedding and storage. Metadata is inherited
// from the parent RawDocument.
type Chunk struct {
	Text     string
	Metadata map[string]string
}

// RetrievedChunk is a chunk read back from the vector store at query
// time, with its metadata decoded to a plain map.
type RetrievedChunk struct {
	Text     string
	Metadata map[string]interface{}
}
