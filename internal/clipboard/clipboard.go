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

package clipboard

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	atotto "github.com/atotto/clipboard"
	"golang.design/x/clipboard"

	"github.com/adaryorg/securedesk/internal/logging"
)

var (
	initOnce sync.Once
	initErr  error
)

// ErrUnavailable means no clipboard backend could be reached.
var ErrUnavailable = errors.New("clipboard unavailable")

// ContentStore is the part of the system clipboard the guard and monitor need.
type ContentStore interface {
	// ContentHash returns a fingerprint of everything on the clipboard, or nil
	// when the clipboard cannot be read.
	ContentHash() []byte
	Clear() error
}

// Service talks to the system clipboard.
type Service struct {
	useWayland bool
}

func NewService() *Service {
	return &Service{useWayland: isWaylandSession()}
}

func (s *Service) ContentHash() []byte {
	text, image, err := s.read()
	if err != nil {
		logging.Debug("Clipboard hash unavailable: %v", err)
		return nil
	}
	return hashContents(text, image)
}

// hashContents fingerprints text and image data. Lengths are mixed in so
// moving bytes between formats changes the hash.
func hashContents(text, image []byte) []byte {
	h := sha256.New()
	fmt.Fprintf(h, "text:%d\n", len(text))
	h.Write(text)
	fmt.Fprintf(h, "image:%d\n", len(image))
	h.Write(image)
	return h.Sum(nil)
}

func (s *Service) Clear() error {
	if s.useWayland {
		cmd := exec.Command("wl-copy", "--clear")
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("wl-copy clear failed: %w", err)
		}
		return nil
	}

	// atotto empties the clipboard natively on Windows and via xclip/xsel on X11
	err := atotto.WriteAll("")
	if err == nil {
		return nil
	}
	logging.Debug("atotto clear failed, falling back: %v", err)

	if err := ensureInit(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	clipboard.Write(clipboard.FmtText, []byte{})
	return nil
}

func (s *Service) read() (text, image []byte, err error) {
	if s.useWayland {
		return readWayland()
	}

	if err := ensureInit(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return clipboard.Read(clipboard.FmtText), clipboard.Read(clipboard.FmtImage), nil
}

func readWayland() (text, image []byte, err error) {
	if _, err := exec.LookPath("wl-paste"); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// wl-paste exits non-zero on an empty selection; that is an empty clipboard, not a failure
	text, _ = exec.Command("wl-paste", "--no-newline").Output()

	types, _ := exec.Command("wl-paste", "--list-types").Output()
	typesStr := string(types)
	for _, format := range []string{"image/png", "image/jpeg", "image/gif", "image/bmp"} {
		if strings.Contains(typesStr, format) {
			output, err := exec.Command("wl-paste", "--type", format).Output()
			if err == nil {
				image = output
				break
			}
		}
	}

	return text, image, nil
}

func ensureInit() error {
	initOnce.Do(func() {
		initErr = clipboard.Init()
	})
	return initErr
}

func isWaylandSession() bool {
	return os.Getenv("WAYLAND_DISPLAY") != "" || os.Getenv("XDG_SESSION_TYPE") == "wayland"
}
