package dialect

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// quoteList quotes every name and joins them with a comma.
func quoteList(names []string, quote func(string) string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return strings.Join(quoted, ",")
}

func writeLength(b *strings.Builder, n int) {
	if n > 0 {
		b.WriteString("(" + strconv.Itoa(n) + ")")
	}
}

func writeFlag(b *strings.Builder, set bool, word string) {
	if set {
		b.WriteString(" " + word)
	}
}

var expressionDefault = regexp.MustCompile(`(?i)^(current_timestamp|now|localtime|localtimestamp|current_date|current_time)(\(\d*\))?$`)

// isExpression reports whether a default value is an expression to be
// rendered as is rather than a literal.
func isExpression(v string) bool {
	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		return true
	}
	return expressionDefault.MatchString(v)
}

var leadingVersion = regexp.MustCompile(`^\d+(\.\d+){0,2}`)

// versionAtLeast compares a server version string such as
// "8.0.33-0ubuntu0.22.04.2" with a minimum. An unknown version is treated as
// recent.
func versionAtLeast(version, minimum string) bool {
	if version == "" {
		return true
	}
	v := "v" + leadingVersion.FindString(version)
	if !semver.IsValid(v) {
		return true
	}
	return semver.Compare(v, "v"+minimum) >= 0
}
