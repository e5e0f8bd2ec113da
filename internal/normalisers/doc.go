// Package normalisers provides implementations of the Normaliser interface
// for various document formats. Each normaliser knows how to extract text
// content from a specific MIME type.
//
// Normalisers are registered with the Registry at startup. The registry
// resolves the content type of a source and dispatches it to the highest
// priority normaliser that handles that type.
package normalisers
