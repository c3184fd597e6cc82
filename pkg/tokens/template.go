package tokens

import "strings"

// Template is a parsed template together with its source text. Plug-ins parse
// their templates once at construction and evaluate them per row.
type Template struct {
	source string
	tokens []Token
}

// Compile parses source into a Template
func Compile(source string) (*Template, error) {
	toks, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return &Template{source: source, tokens: toks}, nil
}

// MustCompile is like Compile but panics on error
func MustCompile(source string) *Template {
	t, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return t
}

// Derive evaluates the template against r
func (t *Template) Derive(r Resolver) string {
	return Derive(r, t.tokens)
}

// Tokens returns a copy of the parsed tokens
func (t *Template) Tokens() []Token {
	out := make([]Token, len(t.tokens))
	copy(out, t.tokens)
	return out
}

// Names returns the referenced field names in order of first appearance
func (t *Template) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, tok := range t.tokens {
		if tok.Kind == Reference && !seen[tok.Text] {
			seen[tok.Text] = true
			names = append(names, tok.Text)
		}
	}
	return names
}

// String returns the source text
func (t *Template) String() string {
	return t.source
}

// Canonical renders the parsed tokens back to template syntax
func (t *Template) Canonical() string {
	var b strings.Builder
	for _, tok := range t.tokens {
		b.WriteString(tok.String())
	}
	return b.String()
}
