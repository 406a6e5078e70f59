//go:build windows

package main

import (
	"github.com/adaryorg/securedesk/internal/isolate"
	"github.com/adaryorg/securedesk/internal/platform/win32"
)

// The console cannot be drawn on another desktop, so Windows asks for
// confirmation with a native message box instead of reading a secret.
func buildDialog(req request) (isolate.Dialog, error) {
	return win32.NewConfirmDialog(req.Title, req.Prompt), nil
}

func dialogResult(isolate.Dialog) string {
	return ""
}
