package explorer

import (
	"errors"
	"fmt"

	"deskbridge/internal/platform"
)

var errFake = errors.New("fake failure")

// tracker counts automation objects handed out and not yet released
type tracker struct {
	live int
}

func (t *tracker) acquire() { t.live++ }
func (t *tracker) release() { t.live-- }

type fakeRuntime struct {
	tr           *tracker
	initErr      error
	createErr    error
	windows      *fakeWindows
	initCalls    int
	uninitCalls  int
	liveAtUninit int
}

func newFakeRuntime(objects ...*fakeObject) *fakeRuntime {
	tr := &tracker{}
	for _, o := range objects {
		o.bind(tr)
	}
	return &fakeRuntime{tr: tr, windows: &fakeWindows{tr: tr, items: objects}}
}

func (r *fakeRuntime) Initialize() error {
	r.initCalls++
	return r.initErr
}

func (r *fakeRuntime) Uninitialize() {
	r.uninitCalls++
	r.liveAtUninit = r.tr.live
}

func (r *fakeRuntime) CreateShellWindows() (platform.ShellWindows, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.tr.acquire()
	return r.windows, nil
}

type fakeWindows struct {
	tr       *tracker
	items    []*fakeObject
	countErr error
	itemErr  map[int]error
	fetched  []int
	released int
}

func (w *fakeWindows) Count() (int, error) {
	if w.countErr != nil {
		return 0, w.countErr
	}
	return len(w.items), nil
}

func (w *fakeWindows) Item(index int) (platform.Object, error) {
	w.fetched = append(w.fetched, index)
	if err := w.itemErr[index]; err != nil {
		return nil, err
	}
	w.tr.acquire()
	return w.items[index], nil
}

func (w *fakeWindows) Release() {
	w.released++
	w.tr.release()
}

type fakeObject struct {
	tr        *tracker
	browser   *fakeBrowser
	castErr   error
	view      *fakeFolderView
	folderErr error
	released  int
}

func (o *fakeObject) bind(tr *tracker) {
	o.tr = tr
	if o.browser != nil {
		o.browser.tr = tr
		if o.browser.document != nil {
			o.browser.document.bind(tr)
		}
	}
	if o.view != nil {
		o.view.tr = tr
		if o.view.items != nil {
			o.view.items.tr = tr
		}
	}
}

func (o *fakeObject) AsWebBrowser() (platform.WebBrowser, error) {
	if o.castErr != nil || o.browser == nil {
		return nil, fmt.Errorf("%w: browser view", platform.ErrNoInterface)
	}
	o.tr.acquire()
	return o.browser, nil
}

func (o *fakeObject) AsFolderView() (platform.FolderView, error) {
	if o.folderErr != nil || o.view == nil {
		return nil, fmt.Errorf("%w: folder view", platform.ErrNoInterface)
	}
	o.tr.acquire()
	return o.view, nil
}

func (o *fakeObject) Release() {
	o.released++
	o.tr.release()
}

type fakeBrowser struct {
	tr        *tracker
	hwnd      platform.Handle
	hwndErr   error
	hwndReads int
	document  *fakeObject
	docErr    error
	released  int
}

func (b *fakeBrowser) HWND() (platform.Handle, error) {
	b.hwndReads++
	if b.hwndErr != nil {
		return 0, b.hwndErr
	}
	return b.hwnd, nil
}

func (b *fakeBrowser) Document() (platform.Object, error) {
	if b.docErr != nil || b.document == nil {
		return nil, errFake
	}
	b.tr.acquire()
	return b.document, nil
}

func (b *fakeBrowser) Release() {
	b.released++
	b.tr.release()
}

type fakeFolderView struct {
	tr       *tracker
	items    *fakeItems
	selErr   error
	released int
}

func (v *fakeFolderView) SelectedItems() (platform.FolderItems, error) {
	if v.selErr != nil {
		return nil, v.selErr
	}
	v.tr.acquire()
	return v.items, nil
}

func (v *fakeFolderView) Release() {
	v.released++
	v.tr.release()
}

type fakeItems struct {
	tr       *tracker
	paths    []string
	countErr error
	itemErr  map[int]error
	pathErr  map[int]error
	released int
}

func (i *fakeItems) Count() (int, error) {
	if i.countErr != nil {
		return 0, i.countErr
	}
	return len(i.paths), nil
}

func (i *fakeItems) Item(index int) (platform.FolderItem, error) {
	if err := i.itemErr[index]; err != nil {
		return nil, err
	}
	i.tr.acquire()
	return &fakeItem{tr: i.tr, path: i.paths[index], err: i.pathErr[index]}, nil
}

func (i *fakeItems) Release() {
	i.released++
	i.tr.release()
}

type fakeItem struct {
	tr   *tracker
	path string
	err  error
}

func (i *fakeItem) Path() (string, error) {
	if i.err != nil {
		return "", i.err
	}
	return i.path, nil
}

func (i *fakeItem) Release() {
	i.tr.release()
}

// folderWindow builds a file browser window with the given selection
func folderWindow(hwnd platform.Handle, paths ...string) *fakeObject {
	if paths == nil {
		paths = []string{}
	}
	return &fakeObject{
		browser: &fakeBrowser{
			hwnd: hwnd,
			document: &fakeObject{
				view: &fakeFolderView{items: &fakeItems{paths: paths}},
			},
		},
	}
}

// nonBrowserWindow builds a shell window that only speaks the generic interface
func nonBrowserWindow() *fakeObject {
	return &fakeObject{castErr: errFake}
}

func (o *fakeObject) items() *fakeItems {
	return o.browser.document.view.items
}

type fakeWindowAPI struct {
	hwnd  platform.Handle
	info  *platform.AppInfo
	calls int
}

func (f *fakeWindowAPI) ForegroundWindow() platform.Handle {
	f.calls++
	return f.hwnd
}

func (f *fakeWindowAPI) ForegroundAppInfo() *platform.AppInfo {
	return f.info
}
