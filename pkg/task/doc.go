// Package task runs the rename/copy batch: it validates every row, then
// copies each row's source to its derived destination while notifying the
// configured listeners, and reports per-row outcomes and byte progress.
//
// Batch-level failures (a START listener error, an unusable output
// directory, a validator system error) abort the batch before any file is
// copied. Row-level failures only fail that row. Rows that succeeded are
// committed: cancellation stops between rows and never rolls back.
package task
