package artifact

// WindowStart truncates a timestamp to the start of its window bucket.
// Non-positive window sizes return the timestamp unchanged.
func WindowStart(tsMs, windowMs int64) int64 {
	if windowMs <= 0 {
		return tsMs
	}
	return (tsMs / windowMs) * windowMs
}
