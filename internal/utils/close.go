package utils

import "io"

// maxDrain bounds how much of an unread body is discarded before closing.
const maxDrain = 64 << 10

// Close closes c and ignores any error. Meant for deferred cleanup.
func Close(c io.Closer) {
	_ = c.Close()
}

// DrainAndClose discards what is left of an HTTP response body, up to
// maxDrain bytes, then closes it so the connection can go back to the pool.
func DrainAndClose(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, maxDrain))
	_ = rc.Close()
}
