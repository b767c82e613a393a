package input

import (
	"bytes"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/toon/pkg/toon"
)

// YAML core schema tags.
const (
	tagNull      = "!!null"
	tagBool      = "!!bool"
	tagInt       = "!!int"
	tagFloat     = "!!float"
	tagTimestamp = "!!timestamp"
	tagBinary    = "!!binary"
	tagMerge     = "!!merge"
)

// DecodeYAML decodes one or more YAML documents, keeping mapping key order.
// A stream with a single document yields that document; a stream with
// several yields a Sequence of them. An empty stream yields Null.
func DecodeYAML(data []byte) (toon.Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var docs []toon.Value

	for {
		var node yaml.Node

		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return toon.Value{}, errors.Wrapf(ErrSyntax, "YAML document %d: %v", len(docs)+1, err)
		}

		v, err := parseYAMLNode(&node, 0)
		if err != nil {
			return toon.Value{}, errors.Wrapf(err, "YAML document %d", len(docs)+1)
		}

		docs = append(docs, v)
	}

	switch len(docs) {
	case 0:
		return toon.Null(), nil
	case 1:
		return docs[0], nil
	default:
		return toon.Sequence(docs...), nil
	}
}

func parseYAMLNode(n *yaml.Node, depth int) (toon.Value, error) {
	if depth > toon.MaxDepth {
		return toon.Value{}, errors.Wrapf(toon.ErrMaxDepth, "YAML nesting exceeds %d levels", toon.MaxDepth)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return toon.Null(), nil
		}

		return parseYAMLNode(n.Content[0], depth)
	case yaml.AliasNode:
		return parseYAMLNode(n.Alias, depth+1)
	case yaml.SequenceNode:
		items := make([]toon.Value, 0, len(n.Content))

		for _, c := range n.Content {
			v, err := parseYAMLNode(c, depth+1)
			if err != nil {
				return toon.Value{}, err
			}

			items = append(items, v)
		}

		return toon.Sequence(items...), nil
	case yaml.MappingNode:
		fields, err := yamlFields(n, depth)
		if err != nil {
			return toon.Value{}, err
		}

		return toon.Mapping(fields...), nil
	case yaml.ScalarNode:
		return parseYAMLScalar(n)
	default:
		return toon.Null(), nil
	}
}

// yamlFields collects the key/value pairs of a mapping node. Merge keys
// contribute their fields first so that explicit keys override them.
func yamlFields(n *yaml.Node, depth int) ([]toon.Field, error) {
	var merged, own []toon.Field

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]

		if k.Kind == yaml.ScalarNode && k.ShortTag() == tagMerge {
			fields, err := mergeFields(v, depth)
			if err != nil {
				return nil, err
			}

			merged = append(merged, fields...)

			continue
		}

		key, err := yamlKey(k, depth)
		if err != nil {
			return nil, err
		}

		val, err := parseYAMLNode(v, depth+1)
		if err != nil {
			return nil, err
		}

		own = append(own, toon.F(key, val))
	}

	return append(merged, own...), nil
}

func mergeFields(n *yaml.Node, depth int) ([]toon.Field, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}

	switch n.Kind {
	case yaml.MappingNode:
		return yamlFields(n, depth+1)
	case yaml.SequenceNode:
		var out []toon.Field

		// Earlier mappings in a merge sequence take precedence.
		for i := len(n.Content) - 1; i >= 0; i-- {
			fields, err := mergeFields(n.Content[i], depth+1)
			if err != nil {
				return nil, err
			}

			out = append(out, fields...)
		}

		return out, nil
	default:
		return nil, errors.Wrapf(ErrSyntax, "line %d: merge value must be a mapping", n.Line)
	}
}

// yamlKey renders a mapping key as text. Scalar keys keep their source
// spelling; complex keys are encoded as inline TOON.
func yamlKey(k *yaml.Node, depth int) (string, error) {
	if k.Kind == yaml.AliasNode {
		k = k.Alias
	}

	if k.Kind == yaml.ScalarNode {
		if k.ShortTag() == tagNull {
			return "", nil
		}

		return k.Value, nil
	}

	v, err := parseYAMLNode(k, depth+1)
	if err != nil {
		return "", err
	}

	s, err := toon.EncodeValue(v, toon.DefaultOptions())
	if err != nil {
		return "", err
	}

	return s, nil
}

func parseYAMLScalar(n *yaml.Node) (toon.Value, error) {
	switch n.ShortTag() {
	case tagNull:
		return toon.Null(), nil
	case tagBool:
		var b bool
		if err := n.Decode(&b); err != nil {
			return toon.Value{}, scalarError(n, err)
		}

		return toon.Bool(b), nil
	case tagInt:
		var i int64
		if err := n.Decode(&i); err == nil {
			return toon.Int(i), nil
		}

		var u uint64
		if err := n.Decode(&u); err == nil {
			return toon.Uint(u), nil
		}

		if b, ok := new(big.Int).SetString(strings.ReplaceAll(n.Value, "_", ""), 0); ok {
			return toon.BigInt(b), nil
		}

		return toon.Value{}, scalarError(n, errors.New("not an integer"))
	case tagFloat:
		// Integer literals beyond 64 bits resolve as floats; keep them exact.
		if b, ok := bigDecimal(n.Value); ok {
			return toon.BigInt(b), nil
		}

		var f float64
		if err := n.Decode(&f); err != nil {
			return toon.Value{}, scalarError(n, err)
		}

		return toon.Float(f), nil
	case tagTimestamp:
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return toon.String(n.Value), nil
		}

		return toon.String(toon.FormatTimestamp(t)), nil
	case tagBinary:
		return toon.String(strings.Join(strings.Fields(n.Value), "")), nil
	default:
		return toon.String(n.Value), nil
	}
}

func bigDecimal(s string) (*big.Int, bool) {
	digits := strings.TrimLeft(s, "+-")
	if digits == "" || len(s)-len(digits) > 1 || strings.Trim(digits, "0123456789") != "" {
		return nil, false
	}

	return new(big.Int).SetString(s, 10)
}

func scalarError(n *yaml.Node, err error) error {
	return errors.Wrapf(ErrSyntax, "line %d: %s %q: %v", n.Line, n.ShortTag(), n.Value, err)
}
