// Package jsontree converts between Go's generic encoding/json
// representation and the shared tree model. JSON text parsing and printing
// are explicitly out of scope for the core (they are external
// collaborators per the system's purpose statement); this package is the
// thin seam the CLI wrappers use to hand a tree.Node to encoding/json and
// back, the same role the source's cJSON_Parse/cJSON_Print play for
// bson2json/json2bson in original_source/bson2json.cxx and json2bson.cxx.
package jsontree

import (
	"encoding/json"
	"fmt"

	"github.com/vibraphone/cjson-bson/tree"
)

// Decode parses JSON text into a tree.Node.
func Decode(data []byte) (*tree.Node, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("jsontree: %w", err)
	}
	return fromGo("", v), nil
}

func fromGo(key string, v interface{}) *tree.Node {
	var n *tree.Node
	switch val := v.(type) {
	case nil:
		n = tree.NewNull()
	case bool:
		n = tree.NewBool(val)
	case float64:
		n = tree.NewFloat(val)
	case string:
		n = tree.NewString(val)
	case []interface{}:
		n = tree.NewArray()
		for _, item := range val {
			_ = n.Append(fromGo("", item))
		}
	case map[string]interface{}:
		n = tree.NewObject()
		for k, item := range val {
			_ = n.Append(fromGo(k, item))
		}
	default:
		n = tree.NewNull()
	}
	n.Key = key
	return n
}

// Encode renders a tree.Node as indented JSON text.
func Encode(n *tree.Node) ([]byte, error) {
	v := toGo(n)
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("jsontree: %w", err)
	}
	return out, nil
}

func toGo(n *tree.Node) interface{} {
	switch n.Kind {
	case tree.KindNull:
		return nil
	case tree.KindBool:
		return n.BoolVal
	case tree.KindNumber:
		if n.NumVal.IsIntegral() {
			return n.NumVal.Int
		}
		return n.NumVal.Float
	case tree.KindString:
		return n.StrVal
	case tree.KindArray:
		out := make([]interface{}, len(n.Children))
		for i, c := range n.Children {
			out[i] = toGo(c)
		}
		return out
	case tree.KindObject:
		out := make(map[string]interface{}, len(n.Children))
		for _, c := range n.Children {
			out[c.Key] = toGo(c)
		}
		return out
	case tree.KindBinary:
		return n.BinVal
	case tree.KindUUID:
		return n.UUIDVal.String()
	default:
		return nil
	}
}
