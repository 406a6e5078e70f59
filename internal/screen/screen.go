/*
MIT License

Copyright (c) 2025 Yuval Adar <adary@adary.org>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package screen captures the visible screen and prepares it as a backdrop
// for the isolated desktop.
package screen

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ErrUnsupported is returned by capturers on platforms without a screen grabber.
var ErrUnsupported = errors.New("screen capture not supported on this platform")

// dimAlpha matches the 75% black veil drawn over the snapshot.
const dimAlpha = 192

type Capturer interface {
	Capture() (*image.RGBA, error)
}

// Dim darkens img in place.
func Dim(img draw.Image) {
	if img == nil {
		return
	}
	veil := image.NewUniform(color.NRGBA{A: dimAlpha})
	draw.Draw(img, img.Bounds(), veil, image.Point{}, draw.Over)
}

// Snapshot captures the primary screen and dims it. It returns nil when the
// capture fails; callers carry on without a backdrop image.
func Snapshot(c Capturer) *image.RGBA {
	if c == nil {
		return nil
	}
	img, err := c.Capture()
	if err != nil || img == nil {
		return nil
	}
	Dim(img)
	return img
}
