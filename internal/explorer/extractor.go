package explorer

import "deskbridge/internal/platform"

// ExtractSelectedPaths resolves every selected item to its filesystem path in
// enumeration order. Any single failure discards the partial result.
func ExtractSelectedPaths(view platform.FolderView) ([]string, error) {
	items, err := view.SelectedItems()
	if err != nil {
		return nil, newError(KindSelectionAccess, "failed to get selected items", err)
	}
	defer items.Release()

	count, err := items.Count()
	if err != nil {
		return nil, newError(KindCount, "failed to get selected item count", err)
	}

	paths := make([]string, 0, max(count, 0))
	for i := 0; i < count; i++ {
		item, err := items.Item(i)
		if err != nil {
			return nil, newIndexError(KindItemAccess, i, "failed to fetch selected item", err)
		}
		path, err := item.Path()
		item.Release()
		if err != nil {
			return nil, newIndexError(KindPathResolution, i, "failed to resolve item path", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
