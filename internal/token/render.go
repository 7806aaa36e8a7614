package token

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"unicode"
)

// Render expands every tag in text against data. Output tags (<%= %>,
// <%+ %>, and the HTML-escaping <%- %>) print an expression; plain tags
// (<% %>) carry if/else/end control flow. Rendering fails when an
// expression names data that is not bound.
func Render(text string, data map[string]any) (string, error) {
	if !HasTokens(text) {
		return text, nil
	}
	src, err := convert(text)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New("spec").Option("missingkey=error").Funcs(funcs).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parsing template tags: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("expanding template tags: %w", err)
	}
	return buf.String(), nil
}

// convert rewrites tags into text/template actions.
func convert(text string) (string, error) {
	var b strings.Builder
	last := 0
	for _, loc := range tagRegex.FindAllStringSubmatchIndex(text, -1) {
		writeLiteral(&b, text[last:loc[0]])
		last = loc[1]

		control := text[loc[2]:loc[3]]
		expr, err := translate(text[loc[4]:loc[5]])
		if err != nil {
			return "", fmt.Errorf("tag %q: %w", text[loc[0]:loc[1]], err)
		}
		if expr == "" {
			continue
		}
		switch control {
		case "-":
			b.WriteString("{{ html (" + expr + ") }}")
		default:
			b.WriteString("{{ " + expr + " }}")
		}
	}
	writeLiteral(&b, text[last:])
	return b.String(), nil
}

// writeLiteral copies text outside tags, quoting it when it would be read
// as an action.
func writeLiteral(b *strings.Builder, s string) {
	if strings.Contains(s, "{{") {
		b.WriteString("{{ " + strconv.Quote(s) + " }}")
		return
	}
	b.WriteString(s)
}

type lexKind int

const (
	lexString lexKind = iota
	lexNumber
	lexIdent
	lexLParen
	lexRParen
	lexComma
)

type lexeme struct {
	kind lexKind
	val  string
}

// translate rewrites a tag expression into template syntax: identifiers
// become data lookups, calls become parenthesized pipelines.
func translate(expr string) (string, error) {
	items, err := lex(expr)
	if err != nil {
		return "", err
	}
	var parts []string
	for i := 0; i < len(items); i++ {
		it := items[i]
		switch it.kind {
		case lexString:
			parts = append(parts, strconv.Quote(it.val))
		case lexNumber:
			parts = append(parts, it.val)
		case lexIdent:
			switch {
			case i+1 < len(items) && items[i+1].kind == lexLParen:
				parts = append(parts, "("+it.val)
				i++
			case keywords[it.val]:
				parts = append(parts, it.val)
			default:
				parts = append(parts, "."+it.val)
			}
		case lexLParen:
			parts = append(parts, "(")
		case lexRParen:
			parts = append(parts, ")")
		case lexComma:
		}
	}
	return strings.Join(parts, " "), nil
}

func lex(expr string) ([]lexeme, error) {
	var items []lexeme
	runes := []rune(expr)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			items = append(items, lexeme{lexLParen, "("})
			i++
		case r == ')':
			items = append(items, lexeme{lexRParen, ")"})
			i++
		case r == ',':
			items = append(items, lexeme{lexComma, ","})
			i++
		case r == '\'' || r == '"':
			var sb strings.Builder
			j := i + 1
			for ; j < len(runes) && runes[j] != r; j++ {
				if runes[j] == '\\' && j+1 < len(runes) {
					j++
				}
				sb.WriteRune(runes[j])
			}
			if j >= len(runes) {
				return nil, fmt.Errorf("unterminated string literal")
			}
			items = append(items, lexeme{lexString, sb.String()})
			i = j + 1
		case unicode.IsDigit(r):
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			items = append(items, lexeme{lexNumber, string(runes[i:j])})
			i = j
		case r == '_' || unicode.IsLetter(r):
			j := i
			for j < len(runes) && (runes[j] == '_' || runes[j] == '.' || unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j])) {
				j++
			}
			items = append(items, lexeme{lexIdent, strings.TrimRight(string(runes[i:j]), ".")})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q", r)
		}
	}
	return items, nil
}
