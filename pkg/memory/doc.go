// Package memory persists long-term assistant memory as a single JSON
// document: an arbitrary key/value mapping plus a bounded, reserved list of
// condensed conversation learnings. Reads are permissive (a missing or
// corrupt file yields empty state); writes go through a temp file and rename
// so a crash never leaves a half-written document in place.
package memory
