// Package plugin defines the row validator and row listener contracts and
// the factories that build them from configuration.
//
// A plug-in instance is created once from its configured options and shared
// by every session in the process. Calls always receive the calling Session
// explicitly; plug-ins that need per-session state keep it in a SessionState
// keyed by Session.ID, and shared caches must guard themselves (see
// TimedCache).
//
// Row lifecycle, per batch:
//
//	EventStart                       once, before any row
//	  Validate                       every validator, every row, before any copy
//	  EventStartRow                  listeners may rewrite the row
//	  copy
//	  EventEndRowSuccess | EventEndRowFail
//	EventEnd                         once, also after cancellation
package plugin
