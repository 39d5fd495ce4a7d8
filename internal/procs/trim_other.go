//go:build !windows

package procs

import "errors"

// TrimWorkingSet is only implemented on Windows.
func TrimWorkingSet(int32) error { return errors.ErrUnsupported }
