//go:build windows

package platform

import (
	"github.com/adaryorg/securedesk/internal/platform/win32"
)

func newBackend() Backend {
	return Backend{
		Sessions:  win32.NewDesktops(),
		Screen:    win32.ScreenCapturer{},
		Backdrops: win32.Backdrops{},
		Notifier:  win32.Notifier{},
	}
}
