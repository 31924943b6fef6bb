package assets

// Resolver resolves a source to a single public path.
// Templates take a Resolver so that they never deal with errors or options.
type Resolver interface {
	// Asset resolves a source asset path to its full URL path.
	//
	// Example:
	//   resolver.Asset("application.js") → "/assets/application-9f86d081.js"
	Asset(source string) string
}

// helperResolver binds a Helper to a kind and fixed options.
type helperResolver struct {
	helper *Helper
	kind   Kind
	opts   Options
}

// NewResolver returns a Resolver that resolves every source through h with
// opts. A source that cannot be resolved is returned unchanged; the failure
// is logged and reported to the Helper's observer.
//
//	resolver := assets.NewResolver(helper, assets.Options{Digest: assets.Bool(true)})
//	resolver.Asset("application.js") // "/assets/application-9f86d081.js"
func NewResolver(h *Helper, opts Options) Resolver {
	return &helperResolver{helper: h, opts: opts}
}

// NewKindResolver is like NewResolver with the defaults of kind applied.
//
//	scripts := assets.NewKindResolver(helper, assets.KindJavascript, assets.Options{})
//	scripts.Asset("application") // "/assets/application.js"
func NewKindResolver(h *Helper, kind Kind, opts Options) Resolver {
	return &helperResolver{helper: h, kind: kind, opts: opts}
}

func (r *helperResolver) Asset(source string) string {
	var (
		res *Result
		err error
	)
	if r.kind != "" {
		res, err = r.helper.ResolveKind(r.kind, source, r.opts)
	} else {
		res, err = r.helper.Resolve(source, r.opts)
	}
	if err != nil {
		return source
	}
	return res.Path
}
