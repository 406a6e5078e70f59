//go:build windows

package win32

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const (
	uacSoundKey      = `AppEvents\Schemes\Apps\.Default\WindowsUAC\`
	uacSoundFallback = `%SystemRoot%\Media\Windows User Account Control.wav`
)

// Notifier shows system-modal message boxes and plays the elevation cue.
type Notifier struct{}

func (Notifier) Warn(title, text string) {
	messageBox(0, title, text, mbIconWarning|mbTaskModal|mbSetForeground|mbTopmost)
}

func (Notifier) PlayCue() error {
	path, err := uacSoundPath()
	if err != nil {
		return err
	}
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	r1, _, callErr := procPlaySoundW.Call(uintptr(unsafe.Pointer(pathPtr)), 0, sndFilename|sndAsync|sndNoDefault)
	if r1 == 0 {
		return fmt.Errorf("PlaySoundW %s: %w", path, callErr)
	}
	return nil
}

// uacSoundPath resolves the sound the user has configured for elevation
// prompts, falling back to the stock Windows file.
func uacSoundPath() (string, error) {
	for _, scheme := range []string{".Current", ".Default"} {
		if path := registrySound(uacSoundKey + scheme); path != "" {
			return path, nil
		}
	}

	path, err := registry.ExpandString(uacSoundFallback)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

func registrySound(key string) string {
	k, err := registry.OpenKey(registry.CURRENT_USER, key, registry.QUERY_VALUE)
	if err != nil {
		return ""
	}
	defer k.Close()

	value, _, err := k.GetStringValue("")
	if err != nil || value == "" {
		return ""
	}
	path, err := registry.ExpandString(value)
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func messageBox(owner uintptr, title, text string, flags uintptr) int {
	titlePtr, _ := windows.UTF16PtrFromString(title)
	textPtr, _ := windows.UTF16PtrFromString(text)
	r1, _, _ := procMessageBoxW.Call(owner, uintptr(unsafe.Pointer(textPtr)), uintptr(unsafe.Pointer(titlePtr)), flags)
	return int(r1)
}
