// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"

	diff "github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Diff writes an annotated ASCII diff of two JSON payloads to w and reports
// whether they differ. Payloads are compared under a common "result" root so
// arrays and scalars diff the same way objects do.
func Diff(w io.Writer, left, right json.RawMessage, color bool) (bool, error) {
	l, err := wrap(left)
	if err != nil {
		return false, fmt.Errorf("left payload: %w", err)
	}
	r, err := wrap(right)
	if err != nil {
		return false, fmt.Errorf("right payload: %w", err)
	}

	d, err := diff.New().Compare(l, r)
	if err != nil {
		return false, fmt.Errorf("failed to compare payloads: %w", err)
	}
	if !d.Modified() {
		return false, nil
	}

	var leftObj map[string]interface{}
	if err := json.Unmarshal(l, &leftObj); err != nil {
		return true, err
	}

	f := formatter.NewAsciiFormatter(leftObj, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       color,
	})
	s, err := f.Format(d)
	if err != nil {
		return true, fmt.Errorf("failed to format diff: %w", err)
	}
	_, err = io.WriteString(w, s)
	return true, err
}

func wrap(payload json.RawMessage) ([]byte, error) {
	if !json.Valid(payload) {
		return nil, fmt.Errorf("invalid JSON")
	}
	return json.Marshal(map[string]json.RawMessage{"result": payload})
}
