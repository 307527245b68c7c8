package explorer

import "deskbridge/internal/platform"

// ResolveFolderView obtains the folder view behind a matched browser window.
// Non file-browsing windows fail here, either without a document or with a
// document that is not a folder view.
func ResolveFolderView(browser platform.WebBrowser) (platform.FolderView, error) {
	document, err := browser.Document()
	if err != nil {
		return nil, newError(KindDocumentAccess, "failed to get window document", err)
	}
	defer document.Release()

	view, err := document.AsFolderView()
	if err != nil {
		return nil, newError(KindInterfaceCast, "failed to cast document to folder view", err)
	}
	return view, nil
}
