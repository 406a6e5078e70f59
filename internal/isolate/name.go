package isolate

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
)

const maxSessionNameLen = 15

var nameStripper = strings.NewReplacer("+", "", "/", "", "=", "")

// newSessionName returns an unguessable desktop name such as "DqK3v9XbT0aLm2Z".
func newSessionName() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	name := "D" + nameStripper.Replace(base64.StdEncoding.EncodeToString(buf))
	if len(name) > maxSessionNameLen {
		name = name[:maxSessionNameLen]
	}
	return name, nil
}
