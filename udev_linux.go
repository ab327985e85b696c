//go:build linux

package blinkstick

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// UdevRule grants all users access to the device nodes of this family.
var UdevRule = fmt.Sprintf(
	`SUBSYSTEM=="usb", ATTR{idVendor}=="%04x", ATTR{idProduct}=="%04x", MODE:="0666"`+"\n",
	IDVendor, IDProduct)

const udevRuleName = "85-blinkstick.rules"

// WriteUdevRule writes the fixed permission rule into dir, normally
// /etc/udev/rules.d, and returns the path written.
func WriteUdevRule(dir string) (string, error) {
	if unix.Geteuid() != 0 {
		if err := unix.Access(dir, unix.W_OK); err != nil {
			return "", fmt.Errorf("no write access to %s (try running as root): %w", dir, err)
		}
	}
	path := filepath.Join(dir, udevRuleName)
	if err := os.WriteFile(path, []byte(UdevRule), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
