//go:build windows

package platform

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"golang.org/x/sys/windows"
)

var (
	clsidShellWindows       = ole.NewGUID("{9BA05972-F6A8-11CF-A442-00A0C90A8F39}")
	iidWebBrowser2          = ole.NewGUID("{D30C1661-CDAF-11D0-8A3E-00C04FC9E26E}")
	iidShellFolderViewDual3 = ole.NewGUID("{29EC8E6C-46D3-411F-BAAA-611A6C9CAC66}")
	errEmptyDispatchVariant = errors.New("property returned no object")

	procCoCreateInstance = windows.NewLazySystemDLL("ole32.dll").NewProc("CoCreateInstance")
)

// COMAutomation drives the shell through COM with single-threaded apartment semantics
type COMAutomation struct{}

// NewAutomation creates the COM backed Automation
func NewAutomation() Automation {
	return &COMAutomation{}
}

// Initialize enters a single-threaded apartment on the calling thread
func (c *COMAutomation) Initialize() error {
	return initResult(ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED|ole.COINIT_DISABLE_OLE1DDE))
}

// Uninitialize leaves the apartment entered by Initialize
func (c *COMAutomation) Uninitialize() {
	ole.CoUninitialize()
}

// CreateShellWindows instantiates the out-of-process ShellWindows collection
func (c *COMAutomation) CreateShellWindows() (ShellWindows, error) {
	unknown, err := createInstance(clsidShellWindows, ole.IID_IDispatch, shellWindowsContext)
	if err != nil {
		return nil, err
	}
	defer unknown.Release()

	disp, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, err
	}
	return &comShellWindows{disp: disp}, nil
}

// createInstance is CoCreateInstance with an explicit class context.
// ole.CreateInstance always passes CLSCTX_SERVER.
func createInstance(clsid, iid *ole.GUID, clsctx uintptr) (*ole.IUnknown, error) {
	var unknown *ole.IUnknown
	hr, _, _ := procCoCreateInstance.Call(
		uintptr(unsafe.Pointer(clsid)),
		0,
		clsctx,
		uintptr(unsafe.Pointer(iid)),
		uintptr(unsafe.Pointer(&unknown)))
	if hr != 0 {
		return nil, ole.NewError(hr)
	}
	return unknown, nil
}

type comShellWindows struct {
	disp *ole.IDispatch
}

func (s *comShellWindows) Count() (int, error) {
	return intProperty(s.disp, "Count")
}

func (s *comShellWindows) Item(index int) (Object, error) {
	disp, err := dispatchResult(oleutil.CallMethod(s.disp, "Item", index))
	if err != nil {
		return nil, err
	}
	return &comObject{disp: disp}, nil
}

func (s *comShellWindows) Release() {
	release(s.disp)
}

type comObject struct {
	disp *ole.IDispatch
}

func (o *comObject) AsWebBrowser() (WebBrowser, error) {
	disp, err := queryDispatch(o.disp, iidWebBrowser2)
	if err != nil {
		return nil, err
	}
	return &comWebBrowser{disp: disp}, nil
}

func (o *comObject) AsFolderView() (FolderView, error) {
	disp, err := queryDispatch(o.disp, iidShellFolderViewDual3)
	if err != nil {
		return nil, err
	}
	return &comFolderView{disp: disp}, nil
}

func (o *comObject) Release() {
	release(o.disp)
}

type comWebBrowser struct {
	disp *ole.IDispatch
}

func (b *comWebBrowser) HWND() (Handle, error) {
	v, err := oleutil.GetProperty(b.disp, "HWND")
	if err != nil {
		return 0, err
	}
	defer v.Clear()
	return Handle(uintptr(v.Val)), nil
}

func (b *comWebBrowser) Document() (Object, error) {
	disp, err := dispatchResult(oleutil.GetProperty(b.disp, "Document"))
	if err != nil {
		return nil, err
	}
	return &comObject{disp: disp}, nil
}

func (b *comWebBrowser) Release() {
	release(b.disp)
}

type comFolderView struct {
	disp *ole.IDispatch
}

func (f *comFolderView) SelectedItems() (FolderItems, error) {
	disp, err := dispatchResult(oleutil.CallMethod(f.disp, "SelectedItems"))
	if err != nil {
		return nil, err
	}
	return &comFolderItems{disp: disp}, nil
}

func (f *comFolderView) Release() {
	release(f.disp)
}

type comFolderItems struct {
	disp *ole.IDispatch
}

func (i *comFolderItems) Count() (int, error) {
	return intProperty(i.disp, "Count")
}

func (i *comFolderItems) Item(index int) (FolderItem, error) {
	disp, err := dispatchResult(oleutil.CallMethod(i.disp, "Item", index))
	if err != nil {
		return nil, err
	}
	return &comFolderItem{disp: disp}, nil
}

func (i *comFolderItems) Release() {
	release(i.disp)
}

type comFolderItem struct {
	disp *ole.IDispatch
}

func (i *comFolderItem) Path() (string, error) {
	v, err := oleutil.GetProperty(i.disp, "Path")
	if err != nil {
		return "", err
	}
	defer v.Clear()
	return v.ToString(), nil
}

func (i *comFolderItem) Release() {
	release(i.disp)
}

// queryDispatch asks for a dual interface and maps any refusal to ErrNoInterface
func queryDispatch(disp *ole.IDispatch, iid *ole.GUID) (*ole.IDispatch, error) {
	result, err := disp.QueryInterface(iid)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoInterface, iid.String(), err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoInterface, iid.String())
	}
	return result, nil
}

// dispatchResult takes ownership of the object inside a VARIANT result
func dispatchResult(v *ole.VARIANT, err error) (*ole.IDispatch, error) {
	if err != nil {
		return nil, err
	}
	disp := v.ToIDispatch()
	if disp == nil {
		v.Clear()
		return nil, errEmptyDispatchVariant
	}
	return disp, nil
}

func intProperty(disp *ole.IDispatch, name string) (int, error) {
	v, err := oleutil.GetProperty(disp, name)
	if err != nil {
		return 0, err
	}
	defer v.Clear()
	return int(v.Val), nil
}

func release(disp *ole.IDispatch) {
	if disp != nil {
		disp.Release()
	}
}
