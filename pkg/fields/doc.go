// Package fields implements the DataField model: one editable, derived or
// plug-in supplied attribute of a row.
//
// Every variant embeds the same attribute block and affix mixin, so prefix and
// suffix wrapping and the "never wrap an empty value" rule behave identically
// across kinds. Variants differ only in where their core value comes from and
// how they verify it.
//
// Derived variants (file name, extension, relative path, target name, dates
// taken from the target) compute their value in Init and come back blank from
// NewInstance until they are initialised against a target again.
package fields
