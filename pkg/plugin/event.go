package plugin

// Event is a point in the batch lifecycle at which listeners are notified
type Event int

const (
	// EventStart precedes the first row. A listener error aborts the batch.
	EventStart Event = iota
	// EventStartRow precedes the copy of one row. A listener error fails the row.
	EventStartRow
	// EventEndRowSuccess follows a successful copy. Listener errors are logged only.
	EventEndRowSuccess
	// EventEndRowFail follows a failed or rejected row.
	EventEndRowFail
	// EventEnd follows the last row
	EventEnd
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "START"
	case EventStartRow:
		return "START_ROW"
	case EventEndRowSuccess:
		return "END_ROW_SUCCESS"
	case EventEndRowFail:
		return "END_ROW_FAIL"
	case EventEnd:
		return "END"
	}
	return "UNKNOWN"
}

// IsSessionEvent reports whether e brackets the batch rather than one row
func (e Event) IsSessionEvent() bool {
	return e == EventStart || e == EventEnd
}
