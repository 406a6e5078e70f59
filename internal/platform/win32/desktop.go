//go:build windows

package win32

import (
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/adaryorg/securedesk/internal/isolate"
)

// maxPumpedMessages bounds a single PumpMessages call so a window that keeps
// posting to itself cannot stall the caller.
const maxPumpedMessages = 1000

// Desktops is the isolate.Sessions implementation backed by window station
// desktop objects.
type Desktops struct{}

func NewDesktops() *Desktops {
	return &Desktops{}
}

func (d *Desktops) Create(name string) (isolate.Handle, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	access := uintptr(desktopCreateMenu | desktopCreateWindow | desktopReadObjects |
		desktopWriteObjects | desktopSwitchDesktop)
	r1, _, callErr := procCreateDesktopW.Call(uintptr(unsafe.Pointer(namePtr)), 0, 0, 0, access, 0)
	if r1 == 0 {
		return 0, fmt.Errorf("CreateDesktopW: %w", callErr)
	}
	return isolate.Handle(r1), nil
}

func (d *Desktops) BindThread(h isolate.Handle) error {
	r1, _, callErr := procSetThreadDesktop.Call(uintptr(h))
	if r1 == 0 {
		return fmt.Errorf("SetThreadDesktop: %w", callErr)
	}
	return nil
}

func (d *Desktops) ThreadSession() (isolate.Handle, error) {
	r1, _, callErr := procGetThreadDesktop.Call(uintptr(windows.GetCurrentThreadId()))
	if r1 == 0 {
		return 0, fmt.Errorf("GetThreadDesktop: %w", callErr)
	}
	return isolate.Handle(r1), nil
}

func (d *Desktops) ActiveSession() (isolate.Handle, error) {
	r1, _, callErr := procOpenInputDesktop.Call(0, 0, desktopReadObjects)
	if r1 == 0 {
		return 0, fmt.Errorf("OpenInputDesktop: %w", callErr)
	}
	return isolate.Handle(r1), nil
}

func (d *Desktops) Release(h isolate.Handle) error {
	return closeDesktop(h)
}

func (d *Desktops) Switch(h isolate.Handle) error {
	r1, _, callErr := procSwitchDesktop.Call(uintptr(h))
	if r1 == 0 {
		return fmt.Errorf("SwitchDesktop: %w", callErr)
	}
	return nil
}

func (d *Desktops) Destroy(h isolate.Handle) error {
	return closeDesktop(h)
}

func (d *Desktops) NameContains(h isolate.Handle, substr string) (bool, error) {
	name, err := objectName(h)
	if err != nil {
		return false, err
	}
	return strings.Contains(name, substr), nil
}

// DisableIME turns off the input method editor for every thread of the
// process that has not created one yet.
func (d *Desktops) DisableIME() error {
	if err := procImmDisableIME.Find(); err != nil {
		return err
	}
	r1, _, callErr := procImmDisableIME.Call(0)
	if r1 == 0 {
		return fmt.Errorf("ImmDisableIME: %w", callErr)
	}
	return nil
}

func (d *Desktops) PumpMessages() {
	var m msg
	for i := 0; i < maxPumpedMessages; i++ {
		r1, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
		if r1 == 0 {
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func closeDesktop(h isolate.Handle) error {
	r1, _, callErr := procCloseDesktop.Call(uintptr(h))
	if r1 == 0 {
		return fmt.Errorf("CloseDesktop: %w", callErr)
	}
	return nil
}

func objectName(h isolate.Handle) (string, error) {
	var needed uint32
	procGetUserObjectInformationW.Call(uintptr(h), uoiName, 0, 0, uintptr(unsafe.Pointer(&needed)))
	if needed == 0 {
		return "", fmt.Errorf("GetUserObjectInformationW: no name for handle %#x", uintptr(h))
	}

	buf := make([]uint16, needed/2+1)
	r1, _, callErr := procGetUserObjectInformationW.Call(
		uintptr(h),
		uoiName,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)*2),
		uintptr(unsafe.Pointer(&needed)),
	)
	if r1 == 0 {
		return "", fmt.Errorf("GetUserObjectInformationW: %w", callErr)
	}
	return windows.UTF16ToString(buf), nil
}
