package command

// MarkerAttributes is the RecordMarker command payload. Markers cover both
// side-effect/version markers and UpsertSearchAttributes: both are
// single-shot, recorded and consumed within the same task with no further
// event to wait on.
type MarkerAttributes struct {
	Name string
	Data interface{}
}

var markerTable = transitionTable{
	State_CREATED: {
		Action_Emit: State_COMPLETED,
	},
}

// Marker is the state machine for a RecordMarker command. It has no
// intermediate COMMAND_SENT/INITIATED phase: once emitted it is done,
// because replay reconstructs its value directly from MarkerRecorded rather
// than from a server acknowledgment.
type Marker struct {
	base
}

func NewMarker(id ID, name string, data interface{}) *Marker {
	m := &Marker{base: newBase(id)}
	m.setInitialCommand(MarkerAttributes{Name: name, Data: data})
	return m
}

func (m *Marker) GetCommand() (Command, bool) { return m.getCommand() }

func (m *Marker) CommandSent() {
	if m.state == State_CREATED {
		m.apply(markerTable, Action_Emit)
	}
}

// Cancel is undefined for a marker: it is recorded unconditionally.
func (m *Marker) Cancel() bool { return false }

var _ StateMachine = (*Marker)(nil)
