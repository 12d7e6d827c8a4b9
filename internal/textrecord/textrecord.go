// Package textrecord pulls labelled fields out of loosely formatted generated text.
//
// A field is an all-caps label followed by a colon; its value runs to the end of
// the line. Lookups never fail: a label that is not present yields "".
package textrecord

import (
	"regexp"
	"strings"
	"sync"
)

var (
	blankLine = regexp.MustCompile(`\n[ \t\r]*\n`)
	patterns  sync.Map // label -> *regexp.Regexp
)

// Parse returns one entry per label. Values are trimmed of whitespace and
// markdown emphasis.
func Parse(block string, labels ...string) map[string]string {
	fields := make(map[string]string, len(labels))
	for _, label := range labels {
		fields[label] = Field(block, label)
	}
	return fields
}

// Field returns the value of the first occurrence of label in block.
func Field(block, label string) string {
	m := fieldPattern(label).FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return clean(m[1])
}

// SplitBlocks splits text on blank lines and drops empty segments.
func SplitBlocks(text string) []string {
	var out []string
	for _, part := range blankLine.Split(text, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SplitRecords starts a new record at every occurrence of label. Text before the
// first occurrence is discarded.
func SplitRecords(text, label string) []string {
	locs := labelPattern(label).FindAllStringIndex(text, -1)
	out := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if rec := strings.TrimSpace(text[loc[0]:end]); rec != "" {
			out = append(out, rec)
		}
	}
	return out
}

// listMarker matches a bullet, heading or quote prefix, or an ordinal like "1." or "2)".
var listMarker = regexp.MustCompile(`^\s*(?:[-*#>]+|\d+[.)])?\s*`)

// FirstLine returns the first non-empty line of block with list and emphasis
// markers removed.
func FirstLine(block string) string {
	for _, line := range strings.Split(block, "\n") {
		if v := clean(listMarker.ReplaceAllString(line, "")); v != "" {
			return v
		}
	}
	return ""
}

func clean(v string) string {
	return strings.Trim(v, " \t\r*_")
}

func fieldPattern(label string) *regexp.Regexp {
	key := "f:" + label
	if re, ok := patterns.Load(key); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(label) + `:[ \t]*([^\n]*)`)
	patterns.Store(key, re)
	return re
}

func labelPattern(label string) *regexp.Regexp {
	key := "l:" + label
	if re, ok := patterns.Load(key); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(label) + `:`)
	patterns.Store(key, re)
	return re
}
