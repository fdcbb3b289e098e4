package message

import (
	"fmt"
	"net/url"
	"strings"
)

// componentReplacer restores the characters that url.QueryEscape
// escapes but that are allowed unescaped in a uri component
var componentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent percent-encodes s so that it can be used
// as a single path segment or query value
func EncodeURIComponent(s string) string {
	return componentReplacer.Replace(url.QueryEscape(s))
}

func argString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
