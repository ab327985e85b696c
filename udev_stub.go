//go:build !linux

package blinkstick

import "errors"

// WriteUdevRule only does something on Linux; udev does not exist elsewhere.
func WriteUdevRule(dir string) (string, error) {
	return "", errors.New("udev rules are only available on linux")
}
