// Package traitregistry connects a rename batch to a SQLite registry of
// lines and images.
//
// The validator rejects rows whose line is not registered. The listener
// reserves an image record for every row before it is copied, writes the
// record's rank into a plug-in data field so the rank can appear in the
// destination name, and commits or releases the record once the row
// succeeds or fails.
//
// Configuration:
//
//	[[validators]]
//	type = "trait-registry"
//	[validators.options]
//	dsn = "/data/registry.db"
//	line = "${Line}"
//
//	[[listeners]]
//	type = "trait-registry"
//	[listeners.options]
//	dsn = "/data/registry.db"
//	line = "${Line}"
//	rank_field = "Rank"
package traitregistry
