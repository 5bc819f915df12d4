package formwidgets

import (
	"io/fs"

	vanilla "github.com/goliatone/go-formwidgets/pkg/renderers/vanilla"
)

// RuntimeAssetsFS exposes the browser assets (stylesheet and the autocomplete
// script) so Go applications can serve them without a build step.
//
// Typical mount:
//
//	mux.Handle("/formwidgets/",
//	  http.StripPrefix("/formwidgets/",
//	    http.FileServerFS(formwidgets.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
