package store

import (
	"net/url"
	"strings"
)

// escapeKey escapes each '/'-separated segment of key for use in a URL path,
// so names holding '#', '?' or '%' address the object they came from.
func escapeKey(key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// unescapeKey reverses escapeKey. ok is false for malformed escapes.
func unescapeKey(escaped string) (string, bool) {
	key, err := url.PathUnescape(escaped)
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}
