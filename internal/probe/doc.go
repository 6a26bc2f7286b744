// Package probe holds what every backend probe shares: the error kinds that
// drive fallback, the attempt trace, panic containment, and the codec label
// table.
//
// A probe inspects one file with one technology and either returns a fully
// parsed record or an error whose kind is [ErrNotApplicable] (the file is
// not of the probe's sub-format) or [ErrParseCorrupted] (it is, but the
// content is malformed). Both kinds mean "try the next probe". Context
// errors are returned unchanged so callers can stop a chain.
//
// Backends live in subpackages: ffprobe, exiftool, native (ISO-BMFF and
// RIFF/WAVE), imaging, office, pdfdoc and mesh.
package probe
