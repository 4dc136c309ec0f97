package domain

// Zero overwrites derived key material once an operation no longer needs it.
// Safe to call with nil.
func Zero(b []byte) {
	clear(b)
}
