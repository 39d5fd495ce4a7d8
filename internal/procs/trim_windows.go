//go:build windows

package procs

import "golang.org/x/sys/windows"

// TrimWorkingSet asks the OS to page out as much of pid's working set as
// it can.
func TrimWorkingSet(pid int32) error {
	h, err := windows.OpenProcess(windows.PROCESS_SET_QUOTA|windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)
	return windows.SetProcessWorkingSetSizeEx(h, ^uintptr(0), ^uintptr(0), 0)
}
