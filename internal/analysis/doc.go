// Package analysis implements the analysis lane worker. It asks the model for a
// structured reading of a document and owns the retry policy: exponential
// backoff between attempts, with rate-limit responses overriding the schedule
// using the server's suggested wait.
package analysis
