package explorer

import (
	"errors"

	"deskbridge/internal/platform"
)

// CastPolicy decides what happens when a window does not expose the browser view
type CastPolicy int

const (
	// AbortOnCastFailure fails the whole scan on the first cast failure
	AbortOnCastFailure CastPolicy = iota
	// SkipOnCastFailure releases the candidate and keeps scanning
	SkipOnCastFailure
)

// String returns the string representation of the policy
func (p CastPolicy) String() string {
	if p == SkipOnCastFailure {
		return "skip"
	}
	return "abort"
}

// ErrNoMatchingWindow is the cause carried by NOT_FOUND failures
var ErrNoMatchingWindow = errors.New("no shell window corresponds to the foreground window")

// FindActiveWindow scans the collection in ascending index order and returns
// the first browser view whose native handle equals target. The caller owns
// the returned view.
func FindActiveWindow(collection platform.ShellWindows, target platform.Handle, policy CastPolicy) (platform.WebBrowser, error) {
	count := Count(collection)
	for i := 0; i < count; i++ {
		item, err := collection.Item(i)
		if err != nil {
			return nil, newIndexError(KindItemAccess, i, "failed to fetch window item", err)
		}

		browser, err := item.AsWebBrowser()
		item.Release()
		if err != nil {
			if policy == SkipOnCastFailure {
				continue
			}
			return nil, newIndexError(KindInterfaceCast, i, "failed to cast window to browser view", err)
		}

		hwnd, err := browser.HWND()
		if err != nil {
			browser.Release()
			return nil, newIndexError(KindHandleQuery, i, "failed to read window handle", err)
		}
		if hwnd == target {
			return browser, nil
		}
		browser.Release()
	}

	return nil, newError(KindNotFound, "", ErrNoMatchingWindow)
}
