// Package ingest implements the ingestion lane worker: local extraction of a
// source document followed by an optional remote refinement pass. Refinement
// never fails the job; on any error the worker keeps a truncated copy of the
// extracted text instead.
package ingest
