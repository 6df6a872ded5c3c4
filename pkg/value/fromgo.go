package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// TagDateTime is the standard tag for an RFC 3339 date/time string.
const TagDateTime = 0

// FromGo converts generic Go data, as produced by YAML or JSON decoders,
// into a Value. Maps are emitted with keys in canonical order, so the same
// input always yields the same encoding.
func FromGo(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return Text(x), nil
	case []byte:
		return Bytes(x), nil
	case int:
		return fromInt(int64(x)), nil
	case int8:
		return fromInt(int64(x)), nil
	case int16:
		return fromInt(int64(x)), nil
	case int32:
		return fromInt(int64(x)), nil
	case int64:
		return fromInt(x), nil
	case uint:
		return Uint(x), nil
	case uint8:
		return Uint(x), nil
	case uint16:
		return Uint(x), nil
	case uint32:
		return Uint(x), nil
	case uint64:
		return Uint(x), nil
	case float32:
		return Float32(x), nil
	case float64:
		return Float64(x), nil
	case json.Number:
		return fromNumber(x)
	case time.Time:
		return Tag{Number: TagDateTime, Content: Text(x.Format(time.RFC3339Nano))}, nil
	case []any:
		arr := make(Array, 0, len(x))
		for i, item := range x {
			v, err := FromGo(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr = append(arr, v)
		}
		return arr, nil
	case map[string]any:
		m := make(Map, 0, len(x))
		for k, item := range x {
			v, err := FromGo(item)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", k, err)
			}
			m = append(m, Pair{Key: Text(k), Value: v})
		}
		return sortPairs(m)
	case map[any]any:
		m := make(Map, 0, len(x))
		for k, item := range x {
			key, err := FromGo(k)
			if err != nil {
				return nil, fmt.Errorf("key %v: %w", k, err)
			}
			v, err := FromGo(item)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", k, err)
			}
			m = append(m, Pair{Key: key, Value: v})
		}
		return sortPairs(m)
	default:
		return nil, fmt.Errorf("unsupported Go type %s", reflect.TypeOf(x))
	}
}

func fromInt(n int64) Value {
	if n < 0 {
		return Int(n)
	}
	return Uint(n)
}

func fromNumber(n json.Number) (Value, error) {
	if i, err := n.Int64(); err == nil {
		return fromInt(i), nil
	}
	if u, err := strconv.ParseUint(string(n), 10, 64); err == nil {
		return Uint(u), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", n, err)
	}
	return Float64(f), nil
}

// sortPairs orders pairs by the bytewise order of their encoded keys
// (RFC 8949 section 4.2.1).
func sortPairs(m Map) (Map, error) {
	keys := make([][]byte, len(m))
	for i, p := range m {
		k, err := Marshal(p.Key)
		if err != nil {
			return nil, fmt.Errorf("encode key %s: %w", Diag(p.Key), err)
		}
		keys[i] = k
	}
	sort.Sort(byKey{m, keys})
	return m, nil
}

type byKey struct {
	m    Map
	keys [][]byte
}

func (s byKey) Len() int           { return len(s.m) }
func (s byKey) Less(i, j int) bool { return bytes.Compare(s.keys[i], s.keys[j]) < 0 }
func (s byKey) Swap(i, j int) {
	s.m[i], s.m[j] = s.m[j], s.m[i]
	s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
}
