// Package library persists documents and their derived artifacts.
//
// Each Item is keyed by its source path and owns up to four artifact files
// under the configured artifact directory: extracted content, the analysis
// Markdown, the conversation log, and note metadata. Item rows live in SQLite;
// artifact bodies live on disk and are replaced atomically on every write.
// Analysis text and conversation logs are cached in memory after first load.
//
// Schema changes bump the version in schema.go; users delete library.db to
// adopt the new schema (artifacts are not affected).
package library
