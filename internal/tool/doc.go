// Package tool runs the external probing programs (ffprobe, exiftool) with
// a per-call timeout and classifies their stderr into probe error kinds.
package tool
