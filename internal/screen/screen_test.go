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

package screen

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCapturer struct {
	img *image.RGBA
	err error
}

func (f fakeCapturer) Capture() (*image.RGBA, error) {
	return f.img, f.err
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestDimDarkensEveryPixel(t *testing.T) {
	img := solid(4, 3, color.RGBA{R: 200, G: 100, B: 40, A: 255})

	Dim(img)

	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			px := img.RGBAAt(x, y)
			// 63/255 of the original survives the veil
			assert.InDelta(t, 200*63/255, int(px.R), 1)
			assert.InDelta(t, 100*63/255, int(px.G), 1)
			assert.InDelta(t, 40*63/255, int(px.B), 1)
			assert.Equal(t, uint8(255), px.A)
		}
	}
}

func TestDimNilIsNoop(t *testing.T) {
	assert.NotPanics(t, func() { Dim(nil) })
}

func TestSnapshot(t *testing.T) {
	white := solid(2, 2, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	img := Snapshot(fakeCapturer{img: white})
	require.NotNil(t, img)
	assert.Less(t, img.RGBAAt(0, 0).R, uint8(255))

	assert.Nil(t, Snapshot(fakeCapturer{err: errors.New("no display")}))
	assert.Nil(t, Snapshot(nil))
}
