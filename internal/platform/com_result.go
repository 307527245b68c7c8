package platform

import (
	"errors"

	"github.com/go-ole/go-ole"
)

// sFalse is what CoInitializeEx returns when the thread already joined a
// compatible apartment. The call still has to be balanced by CoUninitialize.
const sFalse = 0x00000001

// shellWindowsContext asks for ShellWindows from the shell's own process
const shellWindowsContext = ole.CLSCTX_LOCAL_SERVER

// initResult maps a CoInitializeEx result onto the Automation contract
func initResult(err error) error {
	var oleErr *ole.OleError
	if errors.As(err, &oleErr) && oleErr.Code() == sFalse {
		return nil
	}
	return err
}
