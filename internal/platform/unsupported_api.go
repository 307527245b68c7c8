//go:build !windows

package platform

// UnsupportedAPI implements WindowAPI and Automation where no shell automation exists
type UnsupportedAPI struct{}

// NewWindowAPI creates a WindowAPI that never reports a foreground window
func NewWindowAPI() WindowAPI {
	return &UnsupportedAPI{}
}

// NewAutomation creates an Automation whose Initialize always fails
func NewAutomation() Automation {
	return &UnsupportedAPI{}
}

// ForegroundWindow always returns the zero handle
func (u *UnsupportedAPI) ForegroundWindow() Handle {
	return 0
}

// ForegroundAppInfo always returns nil
func (u *UnsupportedAPI) ForegroundAppInfo() *AppInfo {
	return nil
}

func (u *UnsupportedAPI) Initialize() error {
	return ErrUnsupported
}

func (u *UnsupportedAPI) Uninitialize() {}

func (u *UnsupportedAPI) CreateShellWindows() (ShellWindows, error) {
	return nil, ErrUnsupported
}
