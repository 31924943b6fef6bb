package assets

import "github.com/vango-dev/assetpath/pkg/uripath"

// pathRewriter is implemented by each resolution strategy. The stages run
// in a fixed order; the fragment is never touched by any of them.
type pathRewriter interface {
	// rewriteBase prepends the strategy's directory or prefix to relative
	// paths.
	rewriteBase(u *uripath.URI)

	// rewriteQuery adds the strategy's query token.
	rewriteQuery(u *uripath.URI)

	// rewriteHostProtocol applies the asset host and scheme once path and
	// query are final.
	rewriteHostProtocol(u *uripath.URI)
}

// rewrite runs the pipeline on u in place and renders the result.
func rewrite(r pathRewriter, u *uripath.URI) string {
	r.rewriteBase(u)
	r.rewriteQuery(u)
	r.rewriteHostProtocol(u)
	return u.String()
}

// managedPath holds the stages shared by the asset and manifest strategies.
type managedPath struct {
	hostSelector
	prefix Value
	body   bool
}

func (m managedPath) rewriteBase(u *uripath.URI) {
	if u.Rooted() {
		return
	}
	u.PrependPath(m.prefix.Resolve(u.Path))
}

func (m managedPath) rewriteQuery(u *uripath.URI) {
	if m.body {
		u.AppendQuery("body=1")
	}
}
