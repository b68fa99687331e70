package schema

import (
	"regexp"
	"strings"
)

// Parser parses raw DQL schema text into a Model.
//
// The parser is deliberately tolerant. The schema endpoint can return
// partially-edited or truncated text while the user is typing, so block
// scanning uses a brace depth counter rather than a full grammar, and any
// fragment that does not match a recognized unit form is skipped rather
// than reported.
type Parser struct{}

// NewParser creates a new schema text parser.
func NewParser() *Parser {
	return &Parser{}
}

var typeOpenRe = regexp.MustCompile(`^type\s+([A-Za-z_][A-Za-z0-9_.]*)\s*\{?\s*$`)

// Parse parses schema text into a Model. It never returns an error:
// malformed fragments yield a partial model and empty input yields an
// empty model.
func (p *Parser) Parse(text string) *Model {
	model := &Model{
		Types:      []TypeDef{},
		Predicates: []PredicateDef{},
	}

	lines := strings.Split(stripComments(text), "\n")
	seenTypes := make(map[string]bool)

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			i++
			continue
		}

		if m := typeOpenRe.FindStringSubmatch(line); m != nil {
			name := m[1]
			body, next, closed := scanBlock(lines, i)
			i = next
			// Unterminated blocks are dropped; types closed before
			// the bad block have already been emitted.
			if !closed || seenTypes[name] {
				continue
			}
			seenTypes[name] = true
			model.Types = append(model.Types, TypeDef{
				Name:   name,
				Fields: parseFields(body),
			})
			continue
		}

		if pred, ok := parsePredicateLine(line); ok {
			model.Predicates = append(model.Predicates, pred)
		}
		i++
	}

	return model
}

// stripComments removes '#' comments from each line.
func stripComments(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "#"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}

// scanBlock collects the body lines of a type block starting at lines[start].
// It tracks brace depth only; the body is everything between the opening
// brace and the matching close. Returns the body lines, the index of the
// line after the block, and whether the block actually closed.
func scanBlock(lines []string, start int) (body []string, next int, closed bool) {
	depth := 0
	opened := false

	for i := start; i < len(lines); i++ {
		line := lines[i]
		var inner strings.Builder

		for _, r := range line {
			switch r {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
				if opened && depth == 0 {
					if s := strings.TrimSpace(inner.String()); s != "" {
						body = append(body, s)
					}
					return body, i + 1, true
				}
			default:
				if opened && depth >= 1 {
					inner.WriteRune(r)
				}
			}
		}

		if opened && depth >= 1 {
			if s := strings.TrimSpace(inner.String()); s != "" {
				body = append(body, s)
			}
		}

		// "type Name" with the brace on a following line: tolerate one
		// lookahead gap, otherwise give up on the block.
		if !opened && i > start {
			return nil, i, false
		}
	}

	return body, len(lines), false
}

// parseFields parses the body lines of a type block into FieldDefs.
// Lines with a colon carry a type expression and optional directives;
// a bare identifier is a field reference without a type.
func parseFields(body []string) []FieldDef {
	fields := []FieldDef{}
	for _, line := range body {
		line = strings.TrimSuffix(strings.TrimSpace(line), ".")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, rest, found := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if name == "" || strings.ContainsAny(name, " \t{}") {
			continue
		}

		if !found {
			fields = append(fields, FieldDef{Name: name})
			continue
		}

		typeExpr, directives := splitDirectives(rest)
		if typeExpr == "" && len(directives) == 0 {
			continue
		}
		fields = append(fields, FieldDef{
			Name:       name,
			Type:       typeExpr,
			Directives: directives,
		})
	}
	return fields
}

// parsePredicateLine parses a bare "name: type-expr @dir... ." line.
func parsePredicateLine(line string) (PredicateDef, bool) {
	line = strings.TrimSuffix(strings.TrimSpace(line), ".")
	line = strings.TrimSpace(line)

	name, rest, found := strings.Cut(line, ":")
	if !found {
		return PredicateDef{}, false
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t{}@") {
		return PredicateDef{}, false
	}

	typeExpr, directives := splitDirectives(rest)
	if typeExpr == "" {
		return PredicateDef{}, false
	}

	return PredicateDef{
		Name:       name,
		Type:       typeExpr,
		Directives: directives,
	}, true
}

// splitDirectives separates a type expression from its trailing directives.
// Directives start at '@' outside parentheses so that arguments such as
// "@index(exact, term)" stay intact.
func splitDirectives(rest string) (string, []string) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", nil
	}

	depth := 0
	starts := []int{}
	for i, r := range rest {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '@':
			if depth == 0 {
				starts = append(starts, i)
			}
		}
	}

	if len(starts) == 0 {
		return strings.TrimSpace(rest), nil
	}

	typeExpr := strings.TrimSpace(rest[:starts[0]])
	directives := make([]string, 0, len(starts))
	for i, s := range starts {
		end := len(rest)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		if d := strings.TrimSpace(rest[s:end]); d != "@" && d != "" {
			directives = append(directives, d)
		}
	}
	return typeExpr, directives
}
