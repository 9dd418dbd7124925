// Package preflight provides readiness checks for the filesystem paths and the
// completion endpoint litman depends on.
//
// The "litman doctor" command runs RunAll and renders each Result. Checks never
// return errors; a failing check reports Passed=false with a short detail.
package preflight
