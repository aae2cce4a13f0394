//go:build !linux && !darwin && !windows

package platform

import "os"

func dataHome() (string, error) {
	return os.UserConfigDir()
}
