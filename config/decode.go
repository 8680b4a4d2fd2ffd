package config

import (
	"fmt"
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/anglepath/angle"
	"github.com/katalvlaran/anglepath/cost"
)

var (
	stateType = reflect.TypeOf(angle.State(0))
	costType  = reflect.TypeOf(cost.Cost(0))
)

// Parse decodes a YAML document into f. Fields absent from the document
// keep their current values; unknown keys are errors.
func Parse(data []byte, f *File) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Kind == 0 {
		return nil
	}
	raw, err := plain(&doc)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}

	return Decode(raw, f)
}

// Decode maps a generic value (from YAML or a JSON body) onto out. Strings
// go through the target's UnmarshalText, so angles, costs, ranges, motions
// and groups accept their text forms. JSON numbers are accepted for angles
// (decimal, whole) and costs (rounded to a thousandth).
func Decode(raw any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			numberHook,
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}

	return dec.Decode(raw)
}

func numberHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if f.Kind() != reflect.Float64 {
		return data, nil
	}
	v := reflect.ValueOf(data).Float()

	switch t {
	case costType:
		return cost.FromFloat(v)
	case stateType:
		if v != math.Trunc(v) || v < 0 || v >= angle.Count {
			return nil, fmt.Errorf("%w: %v", angle.ErrBadState, v)
		}
		return angle.State(v), nil
	}

	return data, nil
}

// plain converts a YAML tree into maps, slices and strings. Scalars keep
// their literal text so that 0x8000 stays an angle literal and 0.075 never
// becomes a float.
func plain(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return plain(n.Content[0])
	case yaml.AliasNode:
		return plain(n.Alias)
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		return n.Value, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := plain(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := plain(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[n.Content[i].Value] = v
		}
		return out, nil
	}

	return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
}
