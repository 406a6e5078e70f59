//go:build windows

package win32

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"unsafe"

	"golang.org/x/image/draw"
	"golang.org/x/sys/windows"

	"github.com/adaryorg/securedesk/internal/isolate"
)

const backdropClass = "SecureDeskBackdrop"

var (
	registerOnce sync.Once
	registerErr  error

	// pixels of every live backdrop, keyed by window handle, for WM_PAINT
	framesMu sync.Mutex
	frames   = map[uintptr]*frame{}
)

type frame struct {
	bgra          []byte
	width, height int32
}

// Backdrops shows a borderless top-most window covering the screen.
type Backdrops struct{}

// Backdrop is a visible backdrop window. Close must be called on the thread
// that showed it.
type Backdrop struct {
	hwnd uintptr
}

// Handle returns the window handle, usable as a dialog owner.
func (b *Backdrop) Handle() uintptr {
	return b.hwnd
}

func (b *Backdrop) Close() error {
	if b.hwnd == 0 {
		return nil
	}
	framesMu.Lock()
	delete(frames, b.hwnd)
	framesMu.Unlock()

	r1, _, callErr := procDestroyWindow.Call(b.hwnd)
	b.hwnd = 0
	if r1 == 0 {
		return fmt.Errorf("DestroyWindow: %w", callErr)
	}
	return nil
}

func (Backdrops) Show(img image.Image) (isolate.Surface, error) {
	if img == nil {
		return nil, errors.New("no backdrop image")
	}
	if err := registerBackdropClass(); err != nil {
		return nil, err
	}

	f := newFrame(img)
	cx, _, _ := procGetSystemMetrics.Call(smCxScreen)
	cy, _, _ := procGetSystemMetrics.Call(smCyScreen)

	className, _ := windows.UTF16PtrFromString(backdropClass)
	title, _ := windows.UTF16PtrFromString("")
	instance, _, _ := procGetModuleHandleW.Call(0)

	hwnd, _, callErr := procCreateWindowExW.Call(
		wsExTopmost|wsExToolWindow,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(title)),
		wsPopup|wsVisible,
		0, 0, cx, cy,
		0, 0, instance, 0,
	)
	if hwnd == 0 {
		return nil, fmt.Errorf("CreateWindowExW: %w", callErr)
	}

	framesMu.Lock()
	frames[hwnd] = f
	framesMu.Unlock()

	procShowWindow.Call(hwnd, swShow)
	procUpdateWindow.Call(hwnd)
	return &Backdrop{hwnd: hwnd}, nil
}

func newFrame(img image.Image) *frame {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	bgra := make([]byte, len(rgba.Pix))
	copy(bgra, rgba.Pix)
	swapRedBlue(bgra)
	return &frame{bgra: bgra, width: int32(b.Dx()), height: int32(b.Dy())}
}

func registerBackdropClass() error {
	registerOnce.Do(func() {
		className, err := windows.UTF16PtrFromString(backdropClass)
		if err != nil {
			registerErr = err
			return
		}
		instance, _, _ := procGetModuleHandleW.Call(0)
		cursor, _, _ := procLoadCursorW.Call(0, idcArrow)
		wc := wndClassEx{
			WndProc:   windows.NewCallback(backdropProc),
			Instance:  instance,
			Cursor:    cursor,
			ClassName: className,
		}
		wc.Size = uint32(unsafe.Sizeof(wc))
		r1, _, callErr := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc)))
		if r1 == 0 {
			registerErr = fmt.Errorf("RegisterClassExW: %w", callErr)
		}
	})
	return registerErr
}

func backdropProc(hwnd uintptr, message uint32, wParam, lParam uintptr) uintptr {
	switch message {
	case wmEraseBkgnd:
		return 1
	case wmPaint:
		paintBackdrop(hwnd)
		return 0
	}
	r1, _, _ := procDefWindowProcW.Call(hwnd, uintptr(message), wParam, lParam)
	return r1
}

func paintBackdrop(hwnd uintptr) {
	var ps paintStruct
	hdc, _, _ := procBeginPaint.Call(hwnd, uintptr(unsafe.Pointer(&ps)))
	defer procEndPaint.Call(hwnd, uintptr(unsafe.Pointer(&ps)))
	if hdc == 0 {
		return
	}

	framesMu.Lock()
	f := frames[hwnd]
	framesMu.Unlock()
	if f == nil || len(f.bgra) == 0 {
		return
	}

	var client rect
	procGetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&client)))
	bmi := topDownBGRA(f.width, f.height)
	procStretchDIBits.Call(
		hdc,
		0, 0, uintptr(client.Right-client.Left), uintptr(client.Bottom-client.Top),
		0, 0, uintptr(f.width), uintptr(f.height),
		uintptr(unsafe.Pointer(&f.bgra[0])),
		uintptr(unsafe.Pointer(&bmi)),
		dibRGBColors,
		srcCopy,
	)
}
