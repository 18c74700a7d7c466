package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// expandTemplate renders the placeholder templates accepted by $MAP_RULE and
// $RANGE. The placeholders "{}" and "{0}" both expand to text, which is the canonical
// address for mapping rules and the decimal counter for ranges. "{0[n]}" expands to
// the n'th big-endian byte of the address in decimal and is therefore only legal when
// octets is non-nil. Doubled braces produce literal braces. Anything else between
// braces is an error, as is an unbalanced brace.
func expandTemplate(template, text string, octets []byte) (string, error) {
	var b strings.Builder
	for ix := 0; ix < len(template); ix++ {
		c := template[ix]
		switch c {
		case '{':
			if ix+1 < len(template) && template[ix+1] == '{' {
				b.WriteByte('{')
				ix++
				continue
			}
			end := strings.IndexByte(template[ix:], '}')
			if end < 0 {
				return "", fmt.Errorf("unclosed '{' in template '%s'", template)
			}
			spec := template[ix+1 : ix+end]
			ix += end
			if err := expandSpec(&b, spec, template, text, octets); err != nil {
				return "", err
			}
		case '}':
			if ix+1 < len(template) && template[ix+1] == '}' {
				b.WriteByte('}')
				ix++
				continue
			}
			return "", fmt.Errorf("unmatched '}' in template '%s'", template)
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

func expandSpec(b *strings.Builder, spec, template, text string, octets []byte) error {
	switch {
	case len(spec) == 0 || spec == "0":
		b.WriteString(text)

	case strings.HasPrefix(spec, "0[") && strings.HasSuffix(spec, "]"):
		if octets == nil {
			return fmt.Errorf("'{%s}' indexes an address but '%s' is applied to a counter",
				spec, template)
		}
		n, err := strconv.Atoi(spec[2 : len(spec)-1])
		if err != nil {
			return fmt.Errorf("'{%s}' is not a valid byte index in template '%s'",
				spec, template)
		}
		if n < 0 || n >= len(octets) {
			return fmt.Errorf("'{%s}' is out of range for a %d byte address",
				spec, len(octets))
		}
		b.WriteString(strconv.Itoa(int(octets[n])))

	default:
		return fmt.Errorf("unsupported placeholder '{%s}' in template '%s'", spec, template)
	}

	return nil
}
