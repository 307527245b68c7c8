package explorer

import "deskbridge/internal/platform"

// CreateWindowCollection instantiates the shell window collection
func CreateWindowCollection(rt platform.Automation) (platform.ShellWindows, error) {
	windows, err := rt.CreateShellWindows()
	if err != nil {
		return nil, newError(KindCreation, "failed to create shell window collection", err)
	}
	return windows, nil
}

// Count returns the number of live windows. A collection that cannot report
// its size is treated as empty.
func Count(collection platform.ShellWindows) int {
	n, err := collection.Count()
	if err != nil || n < 0 {
		return 0
	}
	return n
}
