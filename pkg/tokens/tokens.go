package tokens

import (
	"strings"

	"github.com/arthur-debert/imgrename/pkg/errors"
)

// Kind distinguishes literal text from field references
type Kind int

const (
	// Literal tokens emit their text unchanged
	Literal Kind = iota
	// Reference tokens emit a field's core value
	Reference
)

// Token is one parsed fragment of a template
type Token struct {
	Kind Kind
	// Text is the literal text, or the referenced field display name
	Text   string
	Prefix string
	Suffix string
}

// Resolver looks up a field's core value by display name. Unknown names resolve to "".
type Resolver interface {
	CoreValue(displayName string) string
}

// MapResolver resolves names from a plain map
type MapResolver map[string]string

// CoreValue implements Resolver
func (m MapResolver) CoreValue(displayName string) string { return m[displayName] }

// Value resolves the token against r. Prefix and suffix are never applied
// around an empty value.
func (t Token) Value(r Resolver) string {
	if t.Kind == Literal {
		return t.Text
	}
	v := r.CoreValue(t.Text)
	if v == "" {
		return ""
	}
	return t.Prefix + v + t.Suffix
}

// String renders the token back into template syntax
func (t Token) String() string {
	if t.Kind == Literal {
		return t.Text
	}
	var b strings.Builder
	b.WriteString("${")
	if t.Prefix != "" {
		b.WriteString("'" + t.Prefix + "'")
	}
	b.WriteString(t.Text)
	if t.Suffix != "" {
		b.WriteString("'" + t.Suffix + "'")
	}
	b.WriteString("}")
	return b.String()
}

// Parse splits s into an ordered list of literal and reference tokens
func Parse(s string) ([]Token, error) {
	if s == "" {
		return nil, errors.New(errors.ErrTemplateSyntax, "template is empty")
	}

	var out []Token
	rest := s
	offset := 0
	for rest != "" {
		start := strings.Index(rest, "${")
		if start < 0 {
			out = append(out, Token{Kind: Literal, Text: rest})
			break
		}
		if start > 0 {
			out = append(out, Token{Kind: Literal, Text: rest[:start]})
		}

		tok, n, err := parseReference(rest[start:])
		if err != nil {
			return nil, err.WithDetail("template", s).WithDetail("offset", offset+start)
		}
		out = append(out, tok)
		rest = rest[start+n:]
		offset += start + n
	}
	return out, nil
}

// parseReference parses one ${...} starting at ref[0] and returns the token
// and the number of bytes consumed.
func parseReference(ref string) (Token, int, *errors.RenameError) {
	i := 2 // past "${"
	tok := Token{Kind: Reference}

	if i < len(ref) && ref[i] == '\'' {
		end := strings.IndexByte(ref[i+1:], '\'')
		if end < 0 {
			return tok, 0, errors.Newf(errors.ErrTemplateSyntax, "unterminated quote in %q", ref)
		}
		tok.Prefix = ref[i+1 : i+1+end]
		i += end + 2
	}

	nameStart := i
	for i < len(ref) && ref[i] != '\'' && ref[i] != '}' {
		i++
	}
	tok.Text = strings.TrimSpace(ref[nameStart:i])

	if i < len(ref) && ref[i] == '\'' {
		end := strings.IndexByte(ref[i+1:], '\'')
		if end < 0 {
			return tok, 0, errors.Newf(errors.ErrTemplateSyntax, "unterminated quote in %q", ref)
		}
		tok.Suffix = ref[i+1 : i+1+end]
		i += end + 2
	}

	if i >= len(ref) {
		return tok, 0, errors.Newf(errors.ErrTemplateSyntax, "unterminated '${' in %q", fragment(ref))
	}
	if ref[i] != '}' {
		return tok, 0, errors.Newf(errors.ErrTemplateSyntax, "expected '}' after suffix in %q", fragment(ref))
	}
	i++ // past "}"

	if tok.Text == "" {
		if tok.Prefix == "" && tok.Suffix == "" {
			return tok, 0, errors.Newf(errors.ErrTemplateSyntax, "empty token name in %q", ref[:i])
		}
		return tok, 0, errors.Newf(errors.ErrTemplateSyntax, "empty token body in %q", ref[:i])
	}
	return tok, i, nil
}

// fragment trims long unterminated tails so error messages stay readable
func fragment(s string) string {
	const max = 40
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Derive concatenates the values of all tokens in order
func Derive(r Resolver, toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Value(r))
	}
	return b.String()
}
