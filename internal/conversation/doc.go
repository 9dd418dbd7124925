// Package conversation implements the conversation lane worker for questions
// about a document and for passage translation. Each request is a single
// attempt; failures are classified and reported, never retried.
package conversation
