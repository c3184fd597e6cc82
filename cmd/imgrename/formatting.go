package imgrename

import (
	"os"
	"strings"
	"text/template"

	"github.com/arthur-debert/imgrename/pkg/style"
	"github.com/spf13/cobra"
)

func formatBold(s string) string {
	if !style.IsTerminal(os.Stdout) {
		return s
	}
	return style.Bold(s)
}

func formatBoldUpper(s string) string {
	return formatBold(strings.ToUpper(s))
}

// initTemplateFormatting adds the functions used by MsgUsageTemplate
func initTemplateFormatting() {
	cobra.AddTemplateFuncs(template.FuncMap{
		"bold":      formatBold,
		"upper":     strings.ToUpper,
		"boldUpper": formatBoldUpper,
	})
}
