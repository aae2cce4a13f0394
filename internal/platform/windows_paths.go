//go:build windows

package platform

import (
	"errors"
	"os"
)

func dataHome() (string, error) {
	if dir := os.Getenv("APPDATA"); dir != "" {
		return dir, nil
	}
	return "", errors.New("%APPDATA% is not set")
}
