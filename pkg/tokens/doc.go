// Package tokens implements the small template language used in plug-in
// configuration values: literal text interspersed with ${field} references.
//
// A reference may carry a quoted prefix and suffix, ${'prefix'field'suffix'},
// which are only emitted when the field resolves to a non-empty value. This is
// how plug-ins build URLs, composite database keys and namespace identifiers
// from a row without leaving dangling separators around blank fields.
package tokens
