// Package subst substitutes $-placeholders in simulator driver scripts.
//
// Placeholders are written $name or ${name}, where name starts with a letter
// or underscore and continues with letters, digits and underscores. $$ is an
// escaped dollar sign. Placeholders with no value, and dollar signs that do
// not start a valid placeholder, are left as is.
//
package subst

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Merge merges maps into a single map. Later maps take precedence.
//
func Merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func isNameStart(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isName(c byte) bool {
	return isNameStart(c) || '0' <= c && c <= '9'
}

// Substitute replaces the placeholders in tmpl with values from maps.
//
func Substitute(tmpl string, maps ...map[string]string) string {
	vs := Merge(maps...)
	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); {
		j := strings.IndexByte(tmpl[i:], '$')
		if j < 0 {
			b.WriteString(tmpl[i:])
			break
		}
		b.WriteString(tmpl[i : i+j])
		i += j
		rest := tmpl[i+1:]
		switch {
		case strings.HasPrefix(rest, "$"):
			b.WriteByte('$')
			i += 2
		case strings.HasPrefix(rest, "{"):
			end := strings.IndexByte(rest, '}')
			name := ""
			if end > 0 {
				name = rest[1:end]
			}
			if v, ok := vs[name]; ok && validName(name) {
				b.WriteString(v)
				i += end + 2
			} else {
				b.WriteByte('$')
				i++
			}
		case len(rest) > 0 && isNameStart(rest[0]):
			n := 1
			for n < len(rest) && isName(rest[n]) {
				n++
			}
			if v, ok := vs[rest[:n]]; ok {
				b.WriteString(v)
			} else {
				b.WriteString(tmpl[i : i+1+n])
			}
			i += 1 + n
		default:
			b.WriteByte('$')
			i++
		}
	}
	return b.String()
}

func validName(s string) bool {
	if s == "" || !isNameStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isName(s[i]) {
			return false
		}
	}
	return true
}

// SubstituteFile reads the template file in, substitutes its placeholders and
// writes the result to out.
//
func SubstituteFile(in, out string, maps ...map[string]string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return errors.Wrap(err, "read template")
	}
	if err = os.WriteFile(out, []byte(Substitute(string(data), maps...)), 0644); err != nil {
		return errors.Wrap(err, "write script")
	}
	return nil
}
