package gpio

// logical converts a raw line level into a logical value.
func logical(raw int, activeLow bool) bool {
	if activeLow {
		return raw == 0
	}
	return raw != 0
}
