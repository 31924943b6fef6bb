package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"log/slog"
	"reflect"

	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/assetpath/internal/errors"
	"github.com/vango-dev/assetpath/pkg/assets"
)

// ValueConfig is a prefix or host setting as written in a config file:
//
//	"host": "assets%d.example.com"
//	"host": {"expr": "'cdn' + string(shard(path, 2)) + '.example.com'"}
//	"host": false
//
// A missing or null value leaves the setting unset.
type ValueConfig struct {
	Literal  string
	Expr     string
	Disabled bool

	set bool
}

// LiteralValue returns a literal ValueConfig.
func LiteralValue(s string) ValueConfig {
	return ValueConfig{Literal: s, set: true}
}

// ExprValue returns a ValueConfig computed by an expr-lang expression.
func ExprValue(src string) ValueConfig {
	return ValueConfig{Expr: src, set: true}
}

// IsSet reports whether the value was present in the config.
func (v ValueConfig) IsSet() bool {
	return v.set
}

type exprObject struct {
	Expr string `json:"expr" yaml:"expr"`
}

// UnmarshalJSON accepts a string, an {"expr": ...} object, false or null.
func (v *ValueConfig) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ValueConfig{}
		return nil
	case bytes.Equal(data, []byte("false")):
		*v = ValueConfig{Disabled: true, set: true}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = LiteralValue(s)
		return nil
	case len(data) > 0 && data[0] == '{':
		var obj exprObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.Expr == "" {
			return fmt.Errorf("value object requires a non-empty \"expr\"")
		}
		*v = ExprValue(obj.Expr)
		return nil
	}
	return fmt.Errorf("value must be a string, {\"expr\": ...} or false, got %s", data)
}

// MarshalJSON writes the value back in the form UnmarshalJSON accepts.
func (v ValueConfig) MarshalJSON() ([]byte, error) {
	switch {
	case !v.set:
		return []byte("null"), nil
	case v.Disabled:
		return []byte("false"), nil
	case v.Expr != "":
		return json.Marshal(exprObject{Expr: v.Expr})
	}
	return json.Marshal(v.Literal)
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON.
func (v *ValueConfig) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!null":
			*v = ValueConfig{}
			return nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return err
			}
			if b {
				return fmt.Errorf("line %d: value may be false but not true", node.Line)
			}
			*v = ValueConfig{Disabled: true, set: true}
			return nil
		}
		*v = LiteralValue(node.Value)
		return nil
	case yaml.MappingNode:
		var obj exprObject
		if err := node.Decode(&obj); err != nil {
			return err
		}
		if obj.Expr == "" {
			return fmt.Errorf("line %d: value object requires a non-empty expr", node.Line)
		}
		*v = ExprValue(obj.Expr)
		return nil
	}
	return fmt.Errorf("line %d: value must be a string, a mapping with expr, or false", node.Line)
}

// Value converts v into an assets.Value. Expressions are compiled once; the
// resulting function runs the program with the asset path bound to "path".
// name identifies the setting in errors and logs.
func (v ValueConfig) Value(name string) (assets.Value, error) {
	switch {
	case !v.set:
		return assets.Value{}, nil
	case v.Disabled:
		return assets.Disabled(), nil
	case v.Expr == "":
		return assets.Literal(v.Literal), nil
	}

	program, err := compileValue(v.Expr)
	if err != nil {
		return assets.Value{}, errors.New("E103").
			WithDetail(name + ": " + err.Error()).
			WithSuggestion("Expressions see `path` and may call crc32(s) or shard(s, n)").
			Wrap(err)
	}

	logger := slog.Default().With("component", "config", "setting", name)
	return assets.Computed(func(path string) string {
		out, err := exprlang.Run(program, map[string]any{"path": path})
		if err != nil {
			logger.Warn("expression failed", "path", path, "error", err)
			return ""
		}
		s, _ := out.(string)
		return s
	}), nil
}

func compileValue(src string) (*vm.Program, error) {
	return exprlang.Compile(src,
		exprlang.Env(map[string]any{"path": ""}),
		exprlang.AsKind(reflect.String),
		exprlang.Function("crc32",
			func(params ...any) (any, error) {
				return int(crc32.ChecksumIEEE([]byte(params[0].(string)))), nil
			},
			new(func(string) int),
		),
		exprlang.Function("shard",
			func(params ...any) (any, error) {
				n := params[1].(int)
				if n <= 0 {
					return 0, fmt.Errorf("shard count must be positive, got %d", n)
				}
				return int(crc32.ChecksumIEEE([]byte(params[0].(string))) % uint32(n)), nil
			},
			new(func(string, int) int),
		),
	)
}
