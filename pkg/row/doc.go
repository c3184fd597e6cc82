// Package row pairs a Target with its ordered field values.
//
// A Row is built from a field template: every field is cloned with
// NewInstance and initialised against the row's target. Rows are mutated by
// user input (SetValue, CopyValuesFrom) and by plug-ins through the
// PluginDataRow view, which only exposes fields marked for task and only lets
// plug-ins write plug-in data fields.
package row
