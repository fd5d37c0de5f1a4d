// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package attrs

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
)

// Now is the reference time for the h transform.
var Now = time.Now

var lengthRe = regexp.MustCompile(`-?\d+`)

// Attr is one output column. Key is a gjson path into the entry JSON object,
// so result payload fields are reachable as result.<field>.
type Attr struct {
	// The gjson path to extract from the entry.
	Key string
	// Should this Attr be included in output or is it just
	// intended for filtering and sorting?
	Include bool
	// The key to use in the output. Also the column title for text output.
	OutputKey string
	// Transformation spec to apply to the output value.
	TransformSpec string
}

// Extract returns the value at the attr's path in the raw entry JSON.
func (a *Attr) Extract(raw string) interface{} {
	return gjson.Get(raw, a.Key).Value()
}

// Transform applies the attr's TransformSpec to a string value:
//
//	t  render a UTC timestamp in RCACHE_TZ (or TZ)
//	h  render a timestamp as a relative age, "3 days ago"
//	l  lowercase, u uppercase (the last one wins)
//	N  truncate to N chars, -N elide the middle
func (a *Attr) Transform(value interface{}) interface{} {
	// Only string values are transformed.
	result, ok := value.(string)
	if !ok {
		return value
	}

	if strings.ContainsAny(a.TransformSpec, "hH") {
		if ts, err := parseTime(result); err == nil {
			result = humanize.RelTime(ts, Now(), "ago", "from now")
		} else {
			log.Debugf("not a timestamp: %s", result)
		}
	} else if strings.ContainsAny(a.TransformSpec, "tT") {
		result = toLocal(result)
	}

	// The later case transformation wins so an attr's own spec overrides a
	// global one prepended to it. IOW --attrs '*::U,topic::l' is lower case.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")

	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	// Same for length: the last number wins.
	if match := lengthRe.FindAllString(a.TransformSpec, -1); len(match) != 0 {
		l, _ := strconv.Atoi(match[len(match)-1])
		abs := l
		if abs < 0 {
			abs = -abs
		}
		if len(result) > abs {
			if l < 0 {
				lr := max(abs/2-1, 1)
				result = result[:lr] + ".." + result[len(result)-lr:]
			} else {
				result = result[:l]
			}
		}
	}

	return result
}

func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC)
}

// toLocal converts a UTC timestamp only when a zone was asked for explicitly.
func toLocal(s string) string {
	tz := os.Getenv("RCACHE_TZ")
	if tz == "" {
		tz = os.Getenv("TZ")
	}
	if tz == "" {
		return s
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.WithError(err).Debugf("unknown timezone %s", tz)
		return s
	}
	ts, err := parseTime(s)
	if err != nil {
		log.Debugf("failed to parse time: %s", s)
		return s
	}
	return ts.In(loc).Format("2006-01-02T15:04:05MST")
}

type AttrList []Attr

// String returns the list in --attrs flag form.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses each comma separated spec of the --attrs flag and adds it to the
// list. A spec is key[:output[:transform]]. A leading ! keeps the attr for
// filtering and sorting but hides it from output. * carries a global
// transform.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		jsonIdx = iota
		outputIdx
		transformIdx
	)

specloop:
	for _, spec := range strings.Split(value, ",") {
		attr := Attr{Include: true}

		fields := strings.Split(spec, ":")

		attr.Key = strings.TrimSpace(fields[jsonIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		// Entries are flat objects, so a leading . is only accepted for
		// familiarity.
		attr.Key = strings.TrimPrefix(attr.Key, ".")
		if attr.Key == "" {
			return fmt.Errorf("empty attribute in %q", spec)
		}

		if attr.Key == "*" {
			attr.Include = false
		}

		// With a single field the output key is the last path segment.
		if len(fields) == 1 || strings.TrimSpace(fields[outputIdx]) == "" {
			segments := strings.Split(attr.Key, ".")
			attr.OutputKey = segments[len(segments)-1]
		} else {
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		}

		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}

		// An attr already in the list (a command default or a repeat) is
		// updated in place.
		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec prepends the * attr's transform spec to every attr.
func (a *AttrList) SetGlobalTransformSpec() {
	spec := ""
	for i := range *a {
		if (*a)[i].Key == "*" {
			spec = (*a)[i].TransformSpec
			break
		}
	}
	if spec == "" {
		return
	}

	for i := range *a {
		(*a)[i].TransformSpec = spec + "," + (*a)[i].TransformSpec
	}
}

// Included returns the attrs shown in output, in order.
func (a AttrList) Included() []Attr {
	var out []Attr
	for _, attr := range a {
		if attr.Include {
			out = append(out, attr)
		}
	}
	return out
}

func (a *AttrList) Type() string {
	return "list"
}
