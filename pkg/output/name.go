package output

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/fields"
)

var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// DestinationName concatenates the file name values of fs in order
func DestinationName(fs []fields.DataField) string {
	var b strings.Builder
	for _, f := range fs {
		b.WriteString(f.FileNameValue())
	}
	return b.String()
}

// InvalidNameReason describes why name cannot be used as a file name, or
// returns "" when it can.
func InvalidNameReason(name string) string {
	trim := strings.TrimSpace(name)
	if trim == "" {
		return "empty name"
	}
	if trim != name {
		return "leading or trailing whitespace"
	}
	if strings.ContainsAny(name, `<>:"/\|?*`) {
		return "invalid characters"
	}
	if name == "." || name == ".." {
		return "reserved filename"
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if reservedNames[strings.ToUpper(base)] {
		return "reserved filename"
	}
	if base == "" {
		return "name has no stem"
	}
	return ""
}

// ValidateName fails with a data error when name cannot be used as a file name
func ValidateName(name, source string) error {
	if reason := InvalidNameReason(name); reason != "" {
		return errors.Newf(errors.ErrInvalidInput, "cannot rename %s to %q: %s", source, name, reason).
			WithDetail("file", source).
			WithDetail("name", name)
	}
	return nil
}
