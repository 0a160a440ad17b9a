package config

import (
	"fmt"
	"strconv"
	"strings"
)

// section groups the options sharing a dotted prefix; "" is the top level.
type section struct {
	name string
	opts []ConfigOption
}

func splitSections(opts []ConfigOption) []section {
	var out []section
	index := map[string]int{}
	for _, o := range opts {
		name, key := "", o.Key
		if i := strings.IndexByte(o.Key, '.'); i >= 0 {
			name, key = o.Key[:i], o.Key[i+1:]
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, section{name: name})
		}
		out[i].opts = append(out[i].opts, ConfigOption{Key: key, Default: o.Default, Comment: o.Comment})
	}
	// top level keys must precede any [table]
	for i, s := range out {
		if s.name == "" && i > 0 {
			copy(out[1:i+1], out[:i])
			out[0] = s
			break
		}
	}
	return out
}

// RenderDefaultTOML renders a TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	lines := []string{"# ncheditor configuration (TOML)"}
	for _, s := range splitSections(GetConfigOptions()) {
		if s.name != "" {
			lines = append(lines, "["+s.name+"]")
		}
		for _, o := range s.opts {
			lines = appendOption(lines, o)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// UpdateTOML adds missing defaults to an existing TOML document and
// comments out keys that are no longer part of the schema. Missing keys go
// into their table, which is created at the end when absent.
func UpdateTOML(existing string) (string, bool) {
	known := make(map[string]bool)
	for _, o := range GetConfigOptions() {
		known[o.Key] = true
	}

	seen := make(map[string]bool)
	header := map[string]int{"": -1}
	firstTable := -1
	current := ""
	lines := strings.Split(existing, "\n")
	out := make([]string, 0, len(lines))
	changed := false
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		switch {
		case trim == "" || strings.HasPrefix(trim, "#"):
		case strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]"):
			current = strings.TrimSpace(trim[1 : len(trim)-1])
			header[current] = len(out)
			if firstTable == -1 {
				firstTable = len(out)
			}
		default:
			key, ok := parseTOMLKey(trim)
			if !ok {
				break
			}
			if current != "" {
				key = current + "." + key
			}
			if !known[key] {
				indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
				out = append(out, indent+"# OUTDATED: option removed from config schema", indent+"# "+trim)
				changed = true
				continue
			}
			seen[key] = true
		}
		out = append(out, line)
	}

	// insert[i] holds lines to place after out[i]; -1 is the file start.
	insert := map[int][]string{}
	var tail []string
	for _, s := range splitSections(GetConfigOptions()) {
		var add []string
		for _, o := range s.opts {
			full := o.Key
			if s.name != "" {
				full = s.name + "." + o.Key
			}
			if !seen[full] {
				add = appendOption(add, o)
			}
		}
		if len(add) == 0 {
			continue
		}
		changed = true
		if s.name == "" && firstTable >= 0 {
			insert[firstTable-1] = append(insert[firstTable-1], add...)
			continue
		}
		if at, ok := header[s.name]; ok && (s.name != "" || firstTable < 0) {
			if s.name == "" {
				at = len(out) - 1
			}
			insert[at] = append(insert[at], add...)
			continue
		}
		tail = append(tail, "["+s.name+"]")
		tail = append(tail, add...)
	}
	if !changed {
		return existing, false
	}

	merged := make([]string, 0, len(out)+len(tail)+8)
	merged = append(merged, insert[-1]...)
	for i, line := range out {
		merged = append(merged, line)
		merged = append(merged, insert[i]...)
	}
	if len(tail) > 0 {
		merged = append(merged, "", "# Added by config update")
		merged = append(merged, tail...)
	}
	return strings.Join(merged, "\n"), true
}

func parseTOMLKey(line string) (string, bool) {
	idx := strings.Index(line, "=")
	if idx == -1 {
		return "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" || strings.HasPrefix(key, "\"") || strings.HasPrefix(key, "'") {
		return "", false
	}
	return key, true
}

func appendOption(lines []string, o ConfigOption) []string {
	if o.Comment != "" {
		lines = append(lines, "# "+o.Comment)
	}
	return append(lines, o.Key+" = "+formatValue(o.Default), "")
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case float64:
		// TOML floats need a fractional part or exponent.
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	default:
		return fmt.Sprint(x)
	}
}
