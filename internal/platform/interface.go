package platform

import "errors"

var (
	// ErrNoInterface is returned when an automation object does not support a requested interface
	ErrNoInterface = errors.New("interface not supported")
	// ErrUnsupported is returned by platforms without a shell automation runtime
	ErrUnsupported = errors.New("shell automation is not supported on this platform")
)

// Handle is an opaque native window identity. Equality is the only meaningful operation.
type Handle uintptr

// IsZero reports whether the handle identifies no window
func (h Handle) IsZero() bool {
	return h == 0
}

// WindowAPI defines the interface for platform-specific window operations
type WindowAPI interface {
	ForegroundWindow() Handle
	ForegroundAppInfo() *AppInfo
}

// AppInfo contains information about the process owning the foreground window
type AppInfo struct {
	Name    string `json:"name"`
	ExePath string `json:"exePath"`
}

// Automation is the thread-bound object automation runtime.
// Every method must be called from the thread that called Initialize.
type Automation interface {
	Initialize() error
	Uninitialize()
	CreateShellWindows() (ShellWindows, error)
}

// Releaser is implemented by every automation object view
type Releaser interface {
	Release()
}

// ShellWindows is the live collection of shell windows, desktop included
type ShellWindows interface {
	Releaser
	Count() (int, error)
	Item(index int) (Object, error)
}

// Object is a generic dispatchable automation object
type Object interface {
	Releaser
	// AsWebBrowser returns an error wrapping ErrNoInterface when unsupported
	AsWebBrowser() (WebBrowser, error)
	// AsFolderView returns an error wrapping ErrNoInterface when unsupported
	AsFolderView() (FolderView, error)
}

// WebBrowser is the browser view of a shell window
type WebBrowser interface {
	Releaser
	HWND() (Handle, error)
	Document() (Object, error)
}

// FolderView exposes the selection of a file browsing view
type FolderView interface {
	Releaser
	SelectedItems() (FolderItems, error)
}

// FolderItems is an indexable selection collection
type FolderItems interface {
	Releaser
	Count() (int, error)
	Item(index int) (FolderItem, error)
}

// FolderItem is one selected shell item
type FolderItem interface {
	Releaser
	Path() (string, error)
}
