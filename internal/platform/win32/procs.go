//go:build windows

// Package win32 implements the secure desktop collaborators on top of the
// Windows desktop object API: CreateDesktop, SetThreadDesktop, SwitchDesktop
// and friends, GDI for the screen snapshot and backdrop, and MessageBox for
// warnings.
package win32

import (
	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	gdi32    = windows.NewLazySystemDLL("gdi32.dll")
	imm32    = windows.NewLazySystemDLL("imm32.dll")
	winmm    = windows.NewLazySystemDLL("winmm.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	// desktops
	procCreateDesktopW            = user32.NewProc("CreateDesktopW")
	procSetThreadDesktop          = user32.NewProc("SetThreadDesktop")
	procGetThreadDesktop          = user32.NewProc("GetThreadDesktop")
	procOpenInputDesktop          = user32.NewProc("OpenInputDesktop")
	procSwitchDesktop             = user32.NewProc("SwitchDesktop")
	procCloseDesktop              = user32.NewProc("CloseDesktop")
	procGetUserObjectInformationW = user32.NewProc("GetUserObjectInformationW")
	procImmDisableIME             = imm32.NewProc("ImmDisableIME")

	// messages
	procPeekMessageW     = user32.NewProc("PeekMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessageW = user32.NewProc("DispatchMessageW")
	procMessageBoxW      = user32.NewProc("MessageBoxW")
	procPlaySoundW       = winmm.NewProc("PlaySoundW")

	// windows
	procRegisterClassExW = user32.NewProc("RegisterClassExW")
	procCreateWindowExW  = user32.NewProc("CreateWindowExW")
	procDefWindowProcW   = user32.NewProc("DefWindowProcW")
	procDestroyWindow    = user32.NewProc("DestroyWindow")
	procShowWindow       = user32.NewProc("ShowWindow")
	procUpdateWindow     = user32.NewProc("UpdateWindow")
	procBeginPaint       = user32.NewProc("BeginPaint")
	procEndPaint         = user32.NewProc("EndPaint")
	procGetClientRect    = user32.NewProc("GetClientRect")
	procLoadCursorW      = user32.NewProc("LoadCursorW")
	procGetModuleHandleW = kernel32.NewProc("GetModuleHandleW")

	// gdi
	procGetDC                  = user32.NewProc("GetDC")
	procReleaseDC              = user32.NewProc("ReleaseDC")
	procGetSystemMetrics       = user32.NewProc("GetSystemMetrics")
	procCreateCompatibleDC     = gdi32.NewProc("CreateCompatibleDC")
	procCreateCompatibleBitmap = gdi32.NewProc("CreateCompatibleBitmap")
	procSelectObject           = gdi32.NewProc("SelectObject")
	procBitBlt                 = gdi32.NewProc("BitBlt")
	procGetDIBits              = gdi32.NewProc("GetDIBits")
	procStretchDIBits          = gdi32.NewProc("StretchDIBits")
	procDeleteObject           = gdi32.NewProc("DeleteObject")
	procDeleteDC               = gdi32.NewProc("DeleteDC")
)

const (
	desktopReadObjects   = 0x0001
	desktopCreateWindow  = 0x0002
	desktopCreateMenu    = 0x0004
	desktopWriteObjects  = 0x0080
	desktopSwitchDesktop = 0x0100

	uoiName = 2

	pmRemove = 0x0001

	mbOKCancel      = 0x00000001
	mbIconQuestion  = 0x00000020
	mbIconWarning   = 0x00000030
	mbTaskModal     = 0x00002000
	mbSetForeground = 0x00010000
	mbTopmost       = 0x00040000

	idOK     = 1
	idCancel = 2

	sndAsync     = 0x0001
	sndNoDefault = 0x0002
	sndFilename  = 0x00020000

	smCxScreen = 0
	smCyScreen = 1

	srcCopy      = 0x00CC0020
	biRGB        = 0
	dibRGBColors = 0

	wsPopup        = 0x80000000
	wsVisible      = 0x10000000
	wsExTopmost    = 0x00000008
	wsExToolWindow = 0x00000080
	swShow         = 5

	wmPaint      = 0x000F
	wmEraseBkgnd = 0x0014

	idcArrow = 32512
)

type point struct {
	X, Y int32
}

type rect struct {
	Left, Top, Right, Bottom int32
}

type msg struct {
	Hwnd     uintptr
	Message  uint32
	WParam   uintptr
	LParam   uintptr
	Time     uint32
	Pt       point
	LPrivate uint32
}

type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

type bitmapInfo struct {
	Header bitmapInfoHeader
	Colors [1]uint32
}

type paintStruct struct {
	Hdc         uintptr
	Erase       int32
	RcPaint     rect
	Restore     int32
	IncUpdate   int32
	RgbReserved [32]byte
}

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   uintptr
	Icon       uintptr
	Cursor     uintptr
	Background uintptr
	MenuName   *uint16
	ClassName  *uint16
	IconSm     uintptr
}

// topDownBGRA describes a 32-bit top-down DIB of w x h pixels.
func topDownBGRA(w, h int32) bitmapInfo {
	var bmi bitmapInfo
	bmi.Header.Size = uint32(40)
	bmi.Header.Width = w
	bmi.Header.Height = -h
	bmi.Header.Planes = 1
	bmi.Header.BitCount = 32
	bmi.Header.Compression = biRGB
	return bmi
}
