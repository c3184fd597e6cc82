// pkg/tokens/tokens_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test template parsing, syntax errors and derivation against field values

package tokens_test

import (
	"testing"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Tokens(t *testing.T) {
	toks, err := tokens.Parse("http://host/line/${Line}?age=${'A'Age'd'}")
	require.NoError(t, err)
	require.Len(t, toks, 4)

	assert.Equal(t, tokens.Token{Kind: tokens.Literal, Text: "http://host/line/"}, toks[0])
	assert.Equal(t, tokens.Token{Kind: tokens.Reference, Text: "Line"}, toks[1])
	assert.Equal(t, tokens.Token{Kind: tokens.Literal, Text: "?age="}, toks[2])
	assert.Equal(t, tokens.Token{Kind: tokens.Reference, Text: "Age", Prefix: "A", Suffix: "d"}, toks[3])
}

func TestDerive(t *testing.T) {
	values := tokens.MapResolver{
		"Line":     "GMR_57C10_AE_01",
		"Age":      "3",
		"Effector": "",
		"Gender":   "f",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"literal_only", "plain text", "plain text"},
		{"single_reference", "${Line}", "GMR_57C10_AE_01"},
		{"mixed", "line=${Line}&age=${Age}", "line=GMR_57C10_AE_01&age=3"},
		{"prefix_suffix_applied", "${Line}${'-A'Age'd'}", "GMR_57C10_AE_01-A3d"},
		{"prefix_suffix_skipped_on_empty", "${Line}${'_'Effector'_'}${Gender}", "GMR_57C10_AE_01f"},
		{"prefix_only", "${'_'Gender}", "_f"},
		{"suffix_only", "${Gender'.'}", "f."},
		{"unknown_field_is_empty", "x${Nope'y'}z", "xz"},
		{"dollar_without_brace", "cost $5 for ${Age}", "cost $5 for 3"},
		{"closing_brace_literal", "}${Age}}", "}3}"},
		{"whitespace_in_name_trimmed", "${ Age }", "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := tokens.Parse(tt.template)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tokens.Derive(values, toks))
		})
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name        string
		template    string
		errContains string
	}{
		{"empty_input", "", "template is empty"},
		{"unterminated_reference", "abc ${Line", "unterminated '${'"},
		{"unterminated_at_end", "abc ${", "unterminated '${'"},
		{"empty_name", "a${}b", "empty token name"},
		{"blank_name", "a${  }b", "empty token name"},
		{"unterminated_prefix_quote", "${'pre Line}", "unterminated quote"},
		{"unterminated_suffix_quote", "${Line'suf}", "unterminated quote"},
		{"empty_body_with_affixes", "${'a''b'}", "empty token body"},
		{"empty_body_prefix_only", "${'a'}", "empty token body"},
		{"garbage_after_suffix", "${Line's'x}", "expected '}'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Parse(tt.template)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateSyntax))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestParse_ErrorNamesFragment(t *testing.T) {
	_, err := tokens.Parse("prefix/${'x'Line")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "${'x'Line")

	details := errors.GetErrorDetails(err)
	assert.Equal(t, "prefix/${'x'Line", details["template"])
	assert.Equal(t, 7, details["offset"])
}

func TestTemplate(t *testing.T) {
	tmpl, err := tokens.Compile("${Line}/${'v'Version}/${Line}")
	require.NoError(t, err)

	assert.Equal(t, []string{"Line", "Version"}, tmpl.Names())
	assert.Equal(t, "${Line}/${'v'Version}/${Line}", tmpl.String())
	assert.Equal(t, "${Line}/${'v'Version}/${Line}", tmpl.Canonical())
	assert.Equal(t, "L1//L1", tmpl.Derive(tokens.MapResolver{"Line": "L1"}))
	assert.Equal(t, "L1/v2/L1", tmpl.Derive(tokens.MapResolver{"Line": "L1", "Version": "2"}))

	toks := tmpl.Tokens()
	toks[0].Text = "mutated"
	assert.Equal(t, []string{"Line", "Version"}, tmpl.Names(), "Tokens returns a copy")

	assert.Panics(t, func() { tokens.MustCompile("${") })
}
