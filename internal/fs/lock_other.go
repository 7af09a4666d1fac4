//go:build !unix

package fs

// Lock is a no-op on platforms without flock.
func Lock(File) error { return nil }
