package pipeline

// RunStats tracks aggregate counters across a batch run.
type RunStats struct {
	Total       int
	Described   int   // A probe produced a record.
	Absent      int   // Supported category, but no probe could read the file.
	Unsupported int   // Category not handled.
	Canceled    int   // Not resolved because the run was interrupted.
	Corrupted   int   // Files where at least one probe reported corruption.
	TotalBytes  int64 // Size of the described files.
}

// Coverage returns the share of supported files that were described, in
// the range 0..1.
func (s *RunStats) Coverage() float64 {
	supported := s.Described + s.Absent
	if supported == 0 {
		return 0
	}
	return float64(s.Described) / float64(supported)
}
