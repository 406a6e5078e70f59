//go:build windows

package win32

import (
	"errors"
	"fmt"
	"image"
	"unsafe"
)

// ScreenCapturer grabs the primary monitor through GDI.
type ScreenCapturer struct{}

func (ScreenCapturer) Capture() (*image.RGBA, error) {
	w, _, _ := procGetSystemMetrics.Call(smCxScreen)
	h, _, _ := procGetSystemMetrics.Call(smCyScreen)
	width, height := int32(w), int32(h)
	if width <= 0 || height <= 0 {
		return nil, errors.New("screen has no area")
	}

	screenDC, _, callErr := procGetDC.Call(0)
	if screenDC == 0 {
		return nil, fmt.Errorf("GetDC: %w", callErr)
	}
	defer procReleaseDC.Call(0, screenDC)

	memDC, _, callErr := procCreateCompatibleDC.Call(screenDC)
	if memDC == 0 {
		return nil, fmt.Errorf("CreateCompatibleDC: %w", callErr)
	}
	defer procDeleteDC.Call(memDC)

	bitmap, _, callErr := procCreateCompatibleBitmap.Call(screenDC, uintptr(width), uintptr(height))
	if bitmap == 0 {
		return nil, fmt.Errorf("CreateCompatibleBitmap: %w", callErr)
	}
	defer procDeleteObject.Call(bitmap)

	old, _, _ := procSelectObject.Call(memDC, bitmap)
	r1, _, callErr := procBitBlt.Call(memDC, 0, 0, uintptr(width), uintptr(height), screenDC, 0, 0, srcCopy)
	procSelectObject.Call(memDC, old)
	if r1 == 0 {
		return nil, fmt.Errorf("BitBlt: %w", callErr)
	}

	bmi := topDownBGRA(width, height)
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	lines, _, callErr := procGetDIBits.Call(
		memDC,
		bitmap,
		0,
		uintptr(height),
		uintptr(unsafe.Pointer(&img.Pix[0])),
		uintptr(unsafe.Pointer(&bmi)),
		dibRGBColors,
	)
	if lines == 0 {
		return nil, fmt.Errorf("GetDIBits: %w", callErr)
	}

	swapRedBlue(img.Pix)
	return img, nil
}

// swapRedBlue converts BGRA pixel data to RGBA in place, or back again.
// Alpha is forced opaque since GDI leaves it undefined.
func swapRedBlue(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
		pix[i+3] = 0xff
	}
}
