package tool

import (
	"regexp"

	"github.com/backmassage/mediainfo/internal/probe"
)

// Pre-compiled regexes for classifying tool stderr. Corruption is checked
// first: a truncated MP4 also reports "Invalid data".
var (
	reCorrupted = regexp.MustCompile(
		`(?i)moov atom not found|` +
			`truncat|` +
			`corrupt|` +
			`Invalid NAL unit size|` +
			`partial file|` +
			`error reading header|` +
			`End of file while parsing`)

	reNotMedia = regexp.MustCompile(
		`(?i)Invalid data found when processing input|` +
			`Unknown file format|` +
			`File format error|` +
			`does not contain any stream|` +
			`could not find codec parameters`)
)

// MatchCorrupted reports whether stderr describes a damaged file.
func MatchCorrupted(stderr string) bool {
	return reCorrupted.MatchString(stderr)
}

// MatchNotMedia reports whether stderr says the input is not a format the
// tool understands.
func MatchNotMedia(stderr string) bool {
	return reNotMedia.MatchString(stderr)
}

// Classify converts a failed Run into a probe error of the right kind. A
// timeout is not applicable so the next backend is tried; context errors
// are returned unchanged.
func Classify(name string, res Result, err error) error {
	if err == nil {
		return nil
	}
	if probe.IsContext(err) {
		return err
	}
	if MatchCorrupted(res.Stderr) {
		return probe.Corrupted(name, err)
	}
	return probe.NotApplicable(name, err)
}
