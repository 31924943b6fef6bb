package assets

type valueKind uint8

const (
	valueUnset valueKind = iota
	valueLiteral
	valueComputed
	valueDisabled
)

// Value is a prefix or asset host setting. It is either a literal string,
// a function of the asset path, or explicitly disabled. The zero Value is
// unset and inherits from the next layer.
type Value struct {
	kind    valueKind
	literal string
	fn      func(path string) string
}

// Literal returns a Value that always yields s. Host literals may contain
// "%d", which is replaced by a shard number derived from the asset path.
func Literal(s string) Value {
	return Value{kind: valueLiteral, literal: s}
}

// Computed returns a Value produced by calling fn with the current asset
// path. A nil fn is rejected when the Value is used.
func Computed(fn func(path string) string) Value {
	return Value{kind: valueComputed, fn: fn}
}

// Disabled returns a Value that switches the setting off, overriding any
// inherited value.
func Disabled() Value {
	return Value{kind: valueDisabled}
}

// IsSet reports whether v was assigned, including Disabled.
func (v Value) IsSet() bool {
	return v.kind != valueUnset
}

// IsDisabled reports whether v explicitly switches the setting off.
func (v Value) IsDisabled() bool {
	return v.kind == valueDisabled
}

// IsComputed reports whether v is a function of the asset path.
func (v Value) IsComputed() bool {
	return v.kind == valueComputed
}

// Active reports whether v yields a value at all.
func (v Value) Active() bool {
	return v.kind == valueLiteral || v.kind == valueComputed
}

// Resolve returns the value for the given asset path. Unset and disabled
// values resolve to "".
func (v Value) Resolve(path string) string {
	switch v.kind {
	case valueLiteral:
		return v.literal
	case valueComputed:
		if v.fn == nil {
			return ""
		}
		return v.fn(path)
	default:
		return ""
	}
}

// String describes v for logs and diagnostics.
func (v Value) String() string {
	switch v.kind {
	case valueLiteral:
		return v.literal
	case valueComputed:
		return "<computed>"
	case valueDisabled:
		return "<disabled>"
	default:
		return "<unset>"
	}
}

func (v Value) valid() bool {
	return v.kind != valueComputed || v.fn != nil
}

func (v Value) or(fallback Value) Value {
	if v.IsSet() {
		return v
	}
	return fallback
}
