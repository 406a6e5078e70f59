//go:build windows

package win32

import (
	"github.com/adaryorg/securedesk/internal/isolate"
)

// ConfirmDialog is an OK/Cancel message box usable as an isolate.Dialog.
type ConfirmDialog struct {
	Title string
	Text  string
}

func NewConfirmDialog(title, text string) *ConfirmDialog {
	return &ConfirmDialog{Title: title, Text: text}
}

func (c *ConfirmDialog) ShowModal(owner isolate.Surface) isolate.Outcome {
	var hwnd uintptr
	if h, ok := owner.(interface{ Handle() uintptr }); ok {
		hwnd = h.Handle()
	}

	switch messageBox(hwnd, c.Title, c.Text, mbOKCancel|mbIconQuestion|mbSetForeground|mbTopmost) {
	case idOK:
		return isolate.OutcomeOK
	case idCancel:
		return isolate.OutcomeCancel
	default:
		return isolate.OutcomeNone
	}
}

func (c *ConfirmDialog) Destroy() {}
