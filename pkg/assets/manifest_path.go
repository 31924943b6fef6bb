package assets

import "github.com/vango-dev/assetpath/pkg/uripath"

// manifestPath resolves a source through a precompiled manifest entry. The
// digest path is used verbatim and the environment is never consulted.
type manifestPath struct {
	managedPath
	digestPath string
}

func (m manifestPath) render(u *uripath.URI) string {
	c := u.Clone()
	c.Path = m.digestPath
	return rewrite(m, c)
}
