package domain

// RawDocument represents source bytes before extraction.
// It is produced by the fetcher or an upload and consumed by a normaliser.
type RawDocument struct {
	// URI is the original location (URL or filename).
	URI string

	// MIMEType is the declared or sniffed content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains fetch-specific key-value pairs.
	Metadata map[string]any
}
