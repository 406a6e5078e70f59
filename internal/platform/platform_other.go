//go:build !windows

package platform

import "os"

func newBackend() Backend {
	return Unsupported(os.Stderr)
}
