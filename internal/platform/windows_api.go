//go:build windows

package platform

import (
	"path/filepath"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	kernel32                     = windows.NewLazySystemDLL("kernel32.dll")
	psapi                        = windows.NewLazySystemDLL("psapi.dll")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procOpenProcess              = kernel32.NewProc("OpenProcess")
	procCloseHandle              = kernel32.NewProc("CloseHandle")
	procGetModuleFileNameExW     = psapi.NewProc("GetModuleFileNameExW")
)

const (
	processQueryInformation = 0x0400
	processVMRead           = 0x0010
)

// WindowsAPI implements WindowAPI for Windows platform
type WindowsAPI struct{}

// NewWindowsAPI creates a new Windows API instance
func NewWindowsAPI() *WindowsAPI {
	return &WindowsAPI{}
}

// NewWindowAPI creates a new WindowAPI instance for Windows
func NewWindowAPI() WindowAPI {
	return NewWindowsAPI()
}

// ForegroundWindow returns the handle of the currently focused top-level window
func (w *WindowsAPI) ForegroundWindow() Handle {
	hwnd, _, _ := procGetForegroundWindow.Call()
	return Handle(hwnd)
}

// ForegroundAppInfo resolves the executable owning the foreground window
func (w *WindowsAPI) ForegroundAppInfo() *AppInfo {
	hwnd := w.ForegroundWindow()
	if hwnd.IsZero() {
		return nil
	}

	var processID uint32
	procGetWindowThreadProcessId.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&processID)))
	if processID == 0 {
		return nil
	}

	hProcess, _, _ := procOpenProcess.Call(processQueryInformation|processVMRead, 0, uintptr(processID))
	if hProcess == 0 {
		return nil
	}
	defer procCloseHandle.Call(hProcess)

	var buffer [windows.MAX_PATH]uint16
	ret, _, _ := procGetModuleFileNameExW.Call(hProcess, 0, uintptr(unsafe.Pointer(&buffer[0])), windows.MAX_PATH)
	if ret == 0 {
		return nil
	}

	exePath := windows.UTF16ToString(buffer[:])
	if exePath == "" {
		return nil
	}

	filename := filepath.Base(exePath)
	return &AppInfo{
		Name:    strings.TrimSuffix(filename, filepath.Ext(filename)),
		ExePath: exePath,
	}
}
