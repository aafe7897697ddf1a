package document

import (
	"regexp"
	"strings"
	"sync"
)

// VirtualFormat is the format of an image that declares none.
const VirtualFormat = "VIRT"

var formatPattern = regexp.MustCompile(`VX_DF_IMAGE_(.+?)\]`)

// attrPatterns caches the per-attribute expressions used by [AttributeValues].
var attrPatterns sync.Map // string -> *regexp.Regexp

// HasToken reports whether payload contains tok anywhere.
func HasToken(payload, tok string) bool {
	return strings.Contains(payload, tok)
}

// ParamValue returns the value of the first "[key value]" token in payload.
// The value is the text between the key and the next closing bracket,
// trimmed of surrounding space.
func ParamValue(payload, key string) (string, bool) {
	marker := "[" + key
	_, rest, ok := strings.Cut(payload, marker)
	if !ok {
		return "", false
	}
	value, _, _ := strings.Cut(rest, "]")
	return strings.TrimSpace(value), true
}

// ParamValues returns the values of every "[key value]" token in payload,
// in order of appearance.
func ParamValues(payload, key string) []string {
	marker := "[" + key
	var out []string
	for {
		_, rest, ok := strings.Cut(payload, marker)
		if !ok {
			return out
		}
		value, _, _ := strings.Cut(rest, "]")
		out = append(out, strings.TrimSpace(value))
		payload = rest
	}
}

// ImageFormat extracts the pixel format from a "[vx_df_image_e
// VX_DF_IMAGE_<F>]" token. Images without one are [VirtualFormat].
func ImageFormat(payload string) string {
	if m := formatPattern.FindStringSubmatch(payload); m != nil {
		return m[1]
	}
	return VirtualFormat
}

// AttributeValues returns every value declared for attribute name with a
// "[name value]" token. A value holds no brackets, so several tokens may
// share a line.
func AttributeValues(payload, name string) []string {
	var re *regexp.Regexp
	if v, ok := attrPatterns.Load(name); ok {
		re = v.(*regexp.Regexp)
	} else {
		re = regexp.MustCompile(`\[` + regexp.QuoteMeta(name) + ` ([^\[\]\n]+)\]`)
		attrPatterns.Store(name, re)
	}

	matches := re.FindAllStringSubmatch(payload, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
