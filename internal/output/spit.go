// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"golang.org/x/term"
	"gopkg.in/yaml.v2"

	"github.com/staranto/rcachego/internal/attrs"
	"github.com/staranto/rcachego/internal/config"
	"github.com/staranto/rcachego/internal/filters"
)

// Formats accepted by --output.
var Formats = []string{"text", "json", "yaml", "raw"}

// Options control how a dataset is rendered.
type Options struct {
	Format string
	Filter string
	Sort   string
	Color  bool
	Titles bool
	// Local renders every timestamp attr in the configured timezone.
	Local bool
}

// SliceDiceSpit filters, transforms, sorts and renders raw, a JSON array of
// entries, according to al and opts.
func SliceDiceSpit(raw []byte, al attrs.AttrList, opts Options, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	// If raw, just dump it and go home.
	if opts.Format == "raw" {
		_, err := w.Write(raw)
		return err
	}

	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("output: invalid JSON document")
	}
	dataset := gjson.ParseBytes(raw)
	if dataset.IsObject() {
		dataset = gjson.Parse("[" + dataset.Raw + "]")
	}

	// Filter first so the remaining phases work on fewer rows.
	rows := filters.FilterDataset(dataset, al, opts.Filter)

	if opts.Local {
		al = append(attrs.AttrList(nil), al...)
		for i := range al {
			if !strings.ContainsAny(al[i].TransformSpec, "hH") {
				al[i].TransformSpec += "t"
			}
		}
	}

	// Sort on untransformed values so ages and truncated keys still order
	// correctly.
	SortDataset(rows, opts.Sort)

	for _, row := range rows {
		for _, attr := range al {
			if attr.TransformSpec != "" {
				row[attr.OutputKey] = attr.Transform(row[attr.OutputKey])
			}
		}
		for _, attr := range al {
			if !attr.Include {
				delete(row, attr.OutputKey)
			}
		}
	}

	switch opts.Format {
	case "json":
		return WriteJSON(w, rows)
	case "yaml":
		out, err := yaml.Marshal(rows)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		return TableWriter(rows, al, opts, w)
	}
}

// WriteJSON writes v as a single line of JSON. A nil slice is written as [].
func WriteJSON(w io.Writer, v any) error {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice && rv.IsNil() {
		v = []any{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal json: %w", err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// TableWriter renders rows as a borderless table with optional titles and
// alternating row colors.
func TableWriter(rows []map[string]interface{}, al attrs.AttrList, opts Options, w io.Writer) error {
	if len(rows) == 0 {
		return nil
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color && ColorEnabled(w) {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	pad, _ := config.GetInt("padding", 0)

	cols := al.Included()
	var cells [][]string
	for _, row := range rows {
		line := make([]string, 0, len(cols))
		for _, attr := range cols {
			line = append(line, InterfaceToString(row[attr.OutputKey], "-"))
		}
		cells = append(cells, line)
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}
			if col > 0 {
				style = style.PaddingLeft(pad)
			}
			return style
		}).
		Rows(cells...)

	if opts.Titles {
		headers := make([]string, 0, len(cols))
		for _, attr := range cols {
			headers = append(headers, attr.OutputKey)
		}
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}

	_, err := fmt.Fprintln(w, t)
	return err
}

// ColorEnabled reports whether w is a terminal that should receive color.
// NO_COLOR turns color off everywhere.
func ColorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(key+".title", "#f6be00")
	even, _ = config.GetString(key+".even", "#ffffff")
	odd, _ = config.GetString(key+".odd", "#00c8f0")
	return
}

// InterfaceToString converts a decoded JSON value to a cell string. A custom
// empty value may be provided.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		if value == "" {
			return emptyValue[0]
		}
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			log.WithError(err).Debugf("unprintable value %T", value)
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}

// DumpSchema writes the attribute names available to --attrs for typ, one
// per line, from its json tags.
func DumpSchema(w io.Writer, typ reflect.Type) {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	fmt.Fprintln(w, "Schema for", typ.Name(), "--")
	for i := 0; i < typ.NumField(); i++ {
		tag, ok := typ.Field(i).Tag.Lookup("json")
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		fmt.Fprintln(w, name)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, `Fields of the stored payload are addressed as result.<path> using gjson
path syntax, e.g. --attrs result.population or --attrs result.items.#.`)
}
