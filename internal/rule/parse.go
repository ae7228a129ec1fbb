package rule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	thresholdPattern  = regexp.MustCompile(`>\s*(\d+)%?`)
	legacyDiskPattern = regexp.MustCompile(`disk\s*>\s*(\d+)%?`)
	timeWindowPattern = regexp.MustCompile(`between\s+(\d+):(\d+)\s+and\s+(\d+):(\d+)`)
	existsPattern     = regexp.MustCompile(`^\s*exists\s+(\S.*)$`)
)

// Parse converts a decoded rule document into a Node. An object carrying an
// "if" key is unwrapped first. Problems lists predicates that were recognised
// but could not be parsed; those nodes are kept and evaluate to false.
func Parse(raw interface{}) (Node, []string) {
	if raw == nil {
		return nil, nil
	}
	if m, ok := raw.(map[string]interface{}); ok {
		if cond, found := m["if"]; found {
			raw = cond
		}
	}
	p := &parser{}
	n := p.parse(raw, "rule")
	return n, p.problems
}

type parser struct {
	problems []string
}

func (p *parser) warn(at, format string, args ...interface{}) {
	p.problems = append(p.problems, at+": "+fmt.Sprintf(format, args...))
}

func (p *parser) parse(raw interface{}, at string) Node {
	switch v := raw.(type) {
	case string:
		return parseLegacy(v)
	case map[string]interface{}:
		return p.parseObject(v, at)
	default:
		return Unknown{Raw: raw}
	}
}

func (p *parser) parseObject(m map[string]interface{}, at string) Node {
	if v, ok := m["and"]; ok {
		children, ok := p.parseList(v, at+".and")
		if !ok {
			return Unknown{Raw: m}
		}
		return And{Children: children}
	}
	if v, ok := m["or"]; ok {
		children, ok := p.parseList(v, at+".or")
		if !ok {
			return Unknown{Raw: m}
		}
		return Or{Children: children}
	}
	if v, ok := m["not"]; ok {
		return Not{Child: p.parse(v, at+".not")}
	}
	for _, kind := range leafKinds {
		if v, ok := m[string(kind)]; ok {
			leaf := parseLeaf(kind, v)
			if !leaf.Valid {
				p.warn(at+"."+string(kind), "unparseable predicate %q", leaf.Text)
			}
			return leaf
		}
	}
	return Unknown{Raw: m}
}

func (p *parser) parseList(v interface{}, at string) ([]Node, bool) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	children := make([]Node, 0, len(items))
	for i, item := range items {
		children = append(children, p.parse(item, fmt.Sprintf("%s[%d]", at, i)))
	}
	return children, true
}

func parseLeaf(kind Kind, v interface{}) Leaf {
	text, ok := v.(string)
	if !ok {
		return Leaf{Kind: kind, Text: fmt.Sprint(v)}
	}
	leaf := Leaf{Kind: kind, Text: text}

	switch kind {
	case KindDisk, KindCPU, KindMemory:
		if n, found := firstNumber(thresholdPattern, text); found {
			leaf.Threshold = n
			leaf.Valid = true
		}
	case KindFile:
		if m := existsPattern.FindStringSubmatch(text); m != nil {
			leaf.Path = strings.TrimSpace(m[1])
			leaf.Valid = true
		}
	case KindTime:
		if m := timeWindowPattern.FindStringSubmatch(text); m != nil {
			from, errFrom := strconv.Atoi(m[1])
			to, errTo := strconv.Atoi(m[3])
			if errFrom == nil && errTo == nil && validMinute(m[2]) && validMinute(m[4]) {
				leaf.FromHour = from
				leaf.ToHour = to
				leaf.Valid = true
			}
		}
	}
	return leaf
}

func parseLegacy(text string) Legacy {
	legacy := Legacy{Text: text}
	if !strings.Contains(text, "disk") {
		return legacy
	}
	if n, found := firstNumber(legacyDiskPattern, text); found {
		legacy.HasDisk = true
		legacy.Threshold = n
	}
	return legacy
}

func firstNumber(re *regexp.Regexp, text string) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// validMinute reports whether text is a minute in 0..59
func validMinute(text string) bool {
	n, err := strconv.Atoi(text)
	return err == nil && n >= 0 && n < 60
}
