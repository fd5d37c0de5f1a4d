// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package research

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/staranto/rcachego/internal/fingerprint"
)

//go:embed schema/plan.json
var planSchema []byte

// Plan is the list of queries produced for one lead.
type Plan struct {
	LeadID  string  `json:"lead_id,omitempty"`
	Queries []Query `json:"queries"`
}

// ParsePlan validates a plan document, assigns ids to queries that lack one,
// propagates the plan lead id and stamps every query with its cache key
// computed by g (SHA1 when g is nil). A cache_key supplied in the document
// that disagrees with the computed one is replaced.
func ParsePlan(data []byte, g *fingerprint.Generator) (Plan, error) {
	if !json.Valid(data) {
		return Plan{}, fmt.Errorf("plan is not valid JSON")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(planSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return Plan{}, fmt.Errorf("plan validation failed: %w", err)
	}
	if !result.Valid() {
		var errs []string
		for _, e := range result.Errors() {
			errs = append(errs, e.String())
		}
		return Plan{}, fmt.Errorf("plan validation errors: %s", strings.Join(errs, "; "))
	}

	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return Plan{}, fmt.Errorf("failed to decode plan: %w", err)
	}

	for i := range p.Queries {
		q := &p.Queries[i]
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if q.LeadID == "" {
			q.LeadID = p.LeadID
		}

		key, err := q.FingerprintWith(g)
		if err != nil {
			return Plan{}, fmt.Errorf("query %d: %w", i, err)
		}
		if q.CacheKey != "" && q.CacheKey != key {
			log.WithFields(log.Fields{
				"query":    q.ID,
				"supplied": q.CacheKey,
				"computed": key,
			}).Warn("plan cache_key does not match query content")
		}
		q.CacheKey = key
	}

	log.Debugf("parsed plan lead=%s queries=%d", p.LeadID, len(p.Queries))
	return p, nil
}
