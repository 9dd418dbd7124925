// Package extract turns a source document on local disk into plain text.
//
// PDF files are read with github.com/ledongthuc/pdf. Plain-text and Markdown
// files are decoded as UTF-8 with BOM detection (UTF-8 or UTF-16). All output
// is NFC-normalized. Every failure wraps services.ErrLocalExtraction.
package extract
