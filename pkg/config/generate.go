package config

import (
	"bytes"
	"strings"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/pelletier/go-toml/v2"
)

const generatedHeader = `# imgrename configuration
# Generated by "imgrename genconfig". Uncomment and edit the values to change.

`

// Generate renders c as TOML
func Generate(c *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}
	return buf.Bytes(), nil
}

// GenerateConfigContent renders the defaults with every value commented out
func GenerateConfigContent() (string, error) {
	data, err := Generate(Default())
	if err != nil {
		return "", err
	}
	return generatedHeader + commentOutConfigValues(string(data)), nil
}

// commentOutConfigValues comments out every assignment and array-of-tables
// header, keeping blank lines, comments and table headers
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "#"):
			result = append(result, line)
		case strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "[[") && strings.HasSuffix(trimmed, "]") && !strings.Contains(trimmed, "="):
			result = append(result, line)
		default:
			result = append(result, "# "+line)
		}
	}

	return strings.Join(result, "\n")
}
