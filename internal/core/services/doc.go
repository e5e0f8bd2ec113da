// Package services holds the DocuGen use cases behind the driving ports.
//
// IngestService runs the write path once per source: fetch or upload,
// extract, chunk, embed, store. GenerationService runs the read path per
// request: retrieve context, resolve a technology, synthesize files and
// assemble a bundle. Everything external is reached through driven ports.
package services
