// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fingerprint

import (
	"bytes"
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"encoding"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"math"
	"reflect"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

// ErrSerialization is returned when a value has no canonical form.
var ErrSerialization = errors.New("serialization error")

// Algorithm names a digest used for cache keys.
type Algorithm string

const (
	SHA1    Algorithm = "sha1"
	SHA256  Algorithm = "sha256"
	BLAKE2b Algorithm = "blake2b"
)

// Algorithms lists the supported digests, default first.
var Algorithms = []Algorithm{SHA1, SHA256, BLAKE2b}

// ParseAlgorithm maps a flag value to an Algorithm. Empty selects SHA1.
func ParseAlgorithm(s string) (Algorithm, error) {
	if s == "" {
		return SHA1, nil
	}
	for _, a := range Algorithms {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown fingerprint algorithm %q", s)
}

// Generator computes cache keys.
type Generator struct {
	algorithm Algorithm
}

// Option customizes a Generator.
type Option func(*Generator)

// WithAlgorithm selects the digest. Unknown values fall back to SHA1.
func WithAlgorithm(a Algorithm) Option {
	return func(g *Generator) { g.algorithm = a }
}

// New returns a Generator. The zero configuration uses SHA1.
func New(opts ...Option) *Generator {
	g := &Generator{algorithm: SHA1}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var defaultGenerator = New()

// Of computes the SHA1 cache key of v.
func Of(v any) (string, error) {
	return defaultGenerator.Of(v)
}

// Algorithm returns the digest in use.
func (g *Generator) Algorithm() Algorithm {
	return g.algorithm
}

// Of canonicalizes v and returns the lowercase hex digest of its compact JSON
// form.
func (g *Generator) Of(v any) (string, error) {
	b, err := Canonical(v)
	if err != nil {
		return "", err
	}
	h := g.newHash()
	_, _ = h.Write(b)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (g *Generator) newHash() hash.Hash {
	switch g.algorithm {
	case SHA256:
		return sha256.New()
	case BLAKE2b:
		h, _ := blake2b.New256(nil)
		return h
	default:
		return sha1.New() //nolint:gosec
	}
}

// Canonical returns the byte string that is hashed for v: map keys sorted at
// every level, no insignificant whitespace, no HTML escaping.
func Canonical(v any) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil query", ErrSerialization)
	}
	n, err := normalize(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	// Encode terminates with a newline.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

var (
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	stringerType      = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
	rawMessageType    = reflect.TypeOf(json.RawMessage(nil))
	numberType        = reflect.TypeOf(json.Number(""))
)

// normalize turns v into a tree of nil, bool, string, json.Number, []any and
// map[string]any. encoding/json sorts map keys when encoding, so only the
// key conversion matters here.
func normalize(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	t := v.Type()
	switch {
	case t == rawMessageType:
		if v.Len() == 0 {
			return nil, nil
		}
		return normalizeJSON(v.Bytes())
	case t == numberType:
		return json.Number(v.String()), nil
	case t.Implements(textMarshalerType) && !isNil(v):
		b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		return string(b), nil
	case t.Implements(stringerType) && !isNil(v) && !isBasic(t.Kind()):
		return v.Interface().(fmt.Stringer).String(), nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return normalize(v.Elem())
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return json.Number(strconv.FormatInt(v.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return json.Number(strconv.FormatUint(v.Uint(), 10)), nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: non-finite number %v", ErrSerialization, f)
		}
		bits := 64
		if v.Kind() == reflect.Float32 {
			bits = 32
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, bits)), nil
	case reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			// Byte slices follow encoding/json and become base64 strings.
			b, _ := json.Marshal(v.Bytes())
			var s string
			_ = json.Unmarshal(b, &s)
			return s, nil
		}
		fallthrough
	case reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			n, err := normalize(v.Index(i))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case reflect.Map:
		if v.IsNil() {
			return nil, nil
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			k, err := mapKey(iter.Key())
			if err != nil {
				return nil, err
			}
			if _, dup := out[k]; dup {
				return nil, fmt.Errorf("%w: duplicate key %q after normalization", ErrSerialization, k)
			}
			n, err := normalize(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	case reflect.Struct:
		// Structs go through their JSON field names.
		b, err := json.Marshal(v.Interface())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		return normalizeJSON(b)
	default:
		return nil, fmt.Errorf("%w: unsupported type %s", ErrSerialization, t)
	}
}

func normalizeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return out, nil
}

func mapKey(k reflect.Value) (string, error) {
	if k.Kind() == reflect.Interface {
		if k.IsNil() {
			return "", fmt.Errorf("%w: nil map key", ErrSerialization)
		}
		k = k.Elem()
	}
	if k.Type().Implements(textMarshalerType) && !isNil(k) {
		b, err := k.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		return string(b), nil
	}
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", fmt.Errorf("%w: unsupported map key type %s", ErrSerialization, k.Type())
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}

func isBasic(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
