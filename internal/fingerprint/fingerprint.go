package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
)

// AnonymousIdentity is the sentinel identity used for unauthenticated callers.
// All anonymous callers issuing the same request share one fingerprint; that
// coarse grouping is intentional.
const AnonymousIdentity = "anonymous"

// Request computes a deterministic digest of (method, path, identity, query,
// body). Two logically identical requests produce the same digest regardless
// of JSON key order or query parameter order. It never fails: a missing query
// or body is treated as empty, and a body that is not valid JSON is digested
// as raw bytes.
func Request(method, path, identity string, query url.Values, body []byte) string {
	h := sha256.New()

	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})

	if identity == "" {
		identity = AnonymousIdentity
	}
	h.Write([]byte(identity))
	h.Write([]byte{0})

	// url.Values.Encode sorts by key, which canonicalizes parameter order.
	// Repeated values keep their original relative order.
	h.Write([]byte(query.Encode()))
	h.Write([]byte{0})

	h.Write(CanonicalBody(body))

	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalBody returns a canonical serialization of a request body. JSON
// bodies are re-encoded with object keys sorted (arrays keep their order);
// anything else passes through untouched. An empty body canonicalizes to an
// empty JSON object so that "no body" and "{}" coalesce.
func CanonicalBody(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber() // keep numeric representation stable across the round trip

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return trimmed
	}
	// Trailing garbage after the first JSON value means it isn't a JSON body.
	if dec.More() {
		return trimmed
	}

	canonical, err := json.Marshal(v)
	if err != nil {
		return trimmed
	}
	return canonical
}
