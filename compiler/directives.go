package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zctools/zc/addr"
	"github.com/zctools/zc/log"
)

// directives keys the handlers by directive name, sigil excluded. Matching is case
// sensitive: "$origin" is not "$ORIGIN" and takes the pass-through path instead, where
// the zone grammar may well accept it without updating any compiler state.
var directives = map[string]func(*compiler, line, []string, string) error{
	"ORIGIN":       (*compiler).directiveOrigin,
	"TTL":          (*compiler).directiveTTL,
	"MAP":          (*compiler).directiveMap,
	"MAP_RULE":     (*compiler).directiveMapRule,
	"RANGE":        (*compiler).directiveRange,
	"REVERSE_ZONE": (*compiler).directiveReverseZone,
	"INCLUDE":      (*compiler).directiveInclude,
}

// directiveOrigin updates the resolution origin and passes the line through for the
// zone parser to do the same later. The first $ORIGIN additionally fixes the zone's
// permanent origin, which names the zone and its output file.
func (t *compiler) directiveOrigin(ln line, fields []string, comment string) error {
	if len(fields) != 2 {
		return t.failf(SyntaxError, ln, "$ORIGIN needs exactly one name")
	}

	t.setOrigin(fields[1])
	t.out = append(t.out, ln.text)

	return nil
}

// directiveTTL echoes the line untouched. The zone parser applies it when it re-reads
// the output and judges its value then; there is nothing useful to do here.
func (t *compiler) directiveTTL(ln line, fields []string, comment string) error {
	t.out = append(t.out, ln.text)

	return nil
}

func (t *compiler) directiveMap(ln line, fields []string, comment string) error {
	if len(fields) != 2 {
		return t.failf(SyntaxError, ln, "$MAP needs exactly one boolean")
	}

	on, err := parseBool(fields[1])
	if err != nil {
		return t.fail(ConfigError, ln, err)
	}
	t.mapping = on

	return nil
}

func (t *compiler) directiveMapRule(ln line, fields []string, comment string) error {
	if len(fields) != 3 {
		return t.failf(SyntaxError, ln, "$MAP_RULE needs a prefix and a template")
	}

	prefix, err := addr.ParsePrefix(fields[1])
	if err != nil {
		return t.classify(ln, err)
	}
	t.rules = append(t.rules, mapRule{prefix: prefix, template: fields[2]})

	return nil
}

func (t *compiler) directiveReverseZone(ln line, fields []string, comment string) error {
	if len(fields) < 2 {
		return t.failf(SyntaxError, ln, "$REVERSE_ZONE needs at least one zone name")
	}

	t.reverses = append(t.reverses, fields[1:]...)

	return nil
}

func (t *compiler) directiveInclude(ln line, fields []string, comment string) error {
	if len(fields) != 2 {
		return t.failf(SyntaxError, ln, "$INCLUDE needs exactly one file name")
	}

	if err := t.include(fields[1]); err != nil {
		return t.fail(ConfigError, ln, err)
	}

	return nil
}

// directiveRange generates a run of name/address pairs: for each i in [0, stop-start]
// the address is start advanced i times by the multiplier and the name is the template
// applied to offset+i. The offset defaults to the last byte of the start address and
// the multiplier to 1. An optional trailing boolean routes every generated pair
// through the mapping rules, regardless of the $MAP flag, instead of emitting it
// directly; a pair whose address then matches no rule is dropped.
func (t *compiler) directiveRange(ln line, fields []string, comment string) error {
	if len(fields) < 4 || len(fields) > 7 {
		return t.failf(SyntaxError, ln,
			"$RANGE needs template, start and stop, plus optional offset, multiplier and map flag")
	}

	template := fields[1]
	start, err := addr.Parse(fields[2])
	if err != nil {
		return t.classify(ln, err)
	}
	stop, err := addr.Parse(fields[3])
	if err != nil {
		return t.classify(ln, err)
	}

	count, err := stop.Diff(start)
	if err != nil {
		return t.fail(ConfigError, ln, err)
	}
	if count == math.MaxUint64 { // count+1 pairs would never terminate
		return t.failf(ConfigError, ln, "range spans the entire address space")
	}

	offset := int64(start.Octet(start.Family().Size() - 1))
	if len(fields) >= 5 {
		offset, err = strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return t.failf(ConfigError, ln, "offset '%s' is not a number", fields[4])
		}
	}

	multiplier := int64(1)
	if len(fields) >= 6 {
		multiplier, err = strconv.ParseInt(fields[5], 10, 64)
		if err != nil {
			return t.failf(ConfigError, ln, "multiplier '%s' is not a number", fields[5])
		}
	}

	useMap := false
	if len(fields) == 7 {
		useMap, err = parseBool(fields[6])
		if err != nil {
			return t.fail(ConfigError, ln, err)
		}
	}

	cur := start
	for i := uint64(0); ; i++ {
		name, err := expandTemplate(template, strconv.FormatInt(offset+int64(i), 10), nil)
		if err != nil {
			return t.fail(ConfigError, ln, err)
		}

		if useMap {
			mapped, ok, err := t.mapAddress(cur)
			if err != nil {
				return t.classify(ln, err)
			}
			if ok {
				t.emitPair(name, mapped, comment)
			} else {
				log.Debugf("$RANGE address %s matches no mapping rule, dropped", cur)
			}
		} else {
			t.emitPair(name, cur, comment)
		}

		if i == count {
			break
		}
		if cur, err = cur.Add(multiplier); err != nil {
			return t.fail(ConfigError, ln, err)
		}
	}

	return nil
}

// parseBool accepts the booleans the notation has always accepted. strconv.ParseBool
// is both too liberal ("1", "t") and too strict (no "yes") to serve here.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "on", "true":
		return true, nil
	case "no", "off", "false":
		return false, nil
	}

	return false, fmt.Errorf("'%s' is not a recognized boolean", s)
}
