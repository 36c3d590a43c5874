//go:build windows

package cmd

// acquireLock is a no-op on Windows.
func acquireLock(string) (func(), error) {
	return func() {}, nil
}
