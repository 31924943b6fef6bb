package assets

import "github.com/vango-dev/assetpath/pkg/uripath"

// assetPath resolves a source the Environment manages.
type assetPath struct {
	managedPath
	asset  *Asset
	env    Environment
	digest bool
}

// render resolves the asset against a copy of u.
func (a assetPath) render(u *uripath.URI) string {
	c := u.Clone()
	if a.digest && a.asset.DigestPath != "" {
		c.Path = a.asset.DigestPath
	} else {
		c.Path = a.asset.LogicalPath
	}
	return rewrite(a, c)
}

// expand renders one body-only path per dependency, in the order the
// environment reports them. A plain asset expands to itself.
func (a assetPath) expand(u *uripath.URI) []string {
	deps := a.dependencies()
	paths := make([]string, 0, len(deps))
	for _, dep := range deps {
		sub := a
		sub.asset = dep
		sub.body = true
		paths = append(paths, sub.render(u))
	}
	return paths
}

func (a assetPath) dependencies() []*Asset {
	if len(a.asset.Dependencies) > 0 {
		return a.asset.Dependencies
	}
	if len(a.asset.IncludedURIs) > 0 && a.env != nil {
		deps := make([]*Asset, 0, len(a.asset.IncludedURIs))
		for _, uri := range a.asset.IncludedURIs {
			if dep, ok := a.env.Lookup(uri); ok {
				deps = append(deps, dep)
			}
		}
		return deps
	}
	return []*Asset{a.asset}
}
