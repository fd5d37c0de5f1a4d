// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package research

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/staranto/rcachego/internal/fingerprint"
)

// Query is one research request. ID and LeadID tie it to a lead or session
// and are not part of its fingerprint.
type Query struct {
	ID       string          `json:"id,omitempty"`
	LeadID   string          `json:"lead_id,omitempty"`
	Type     string          `json:"type"`
	Topic    string          `json:"topic"`
	Entity   string          `json:"entity,omitempty"`
	Params   json.RawMessage `json:"params,omitempty"`
	CacheKey string          `json:"cache_key,omitempty"`
}

// Canonical returns the semantic fields of q as a map. Empty Entity and
// Params are left out so a bare {"type","topic"} object and the equivalent
// Query share a key.
func (q Query) Canonical() (map[string]any, error) {
	m := map[string]any{
		"type":  q.Type,
		"topic": q.Topic,
	}
	if q.Entity != "" {
		m["entity"] = q.Entity
	}
	if len(q.Params) > 0 && string(q.Params) != "null" {
		if !json.Valid(q.Params) {
			return nil, fmt.Errorf("%w: params are not valid JSON", fingerprint.ErrSerialization)
		}
		m["params"] = q.Params
	}
	return m, nil
}

// Fingerprint computes the SHA1 cache key of q.
func (q Query) Fingerprint() (string, error) {
	return q.FingerprintWith(nil)
}

// FingerprintWith computes the cache key of q with g, or SHA1 when g is nil.
func (q Query) FingerprintWith(g *fingerprint.Generator) (string, error) {
	m, err := q.Canonical()
	if err != nil {
		return "", err
	}
	if g == nil {
		return fingerprint.Of(m)
	}
	return g.Of(m)
}

// QueryFromJSON decodes a query document. Unknown fields are rejected so a
// typo never silently changes what is fingerprinted.
func QueryFromJSON(b []byte) (Query, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	var q Query
	if err := dec.Decode(&q); err != nil {
		return Query{}, fmt.Errorf("failed to decode query: %w", err)
	}
	if q.Type == "" || q.Topic == "" {
		return Query{}, errors.New("query requires type and topic")
	}
	return q, nil
}
