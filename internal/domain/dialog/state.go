package dialog

// State is a conversation step.
type State string

const (
	StateInitial           State = "INITIAL"
	StateClassSelection    State = "CLASS_SELECTION"
	StateDaySelection      State = "DAY_SELECTION"
	StateTaskList          State = "TASK_LIST"
	StateNotificationSetup State = "NOTIFICATION_SETUP"

	StateAdminMenu            State = "ADMIN_MENU"
	StateAdminClassSelection  State = "ADMIN_CLASS_SELECTION"
	StateAdminDaySelection    State = "ADMIN_DAY_SELECTION"
	StateAdminTaskName        State = "ADMIN_TASK_NAME"
	StateAdminTaskType        State = "ADMIN_TASK_TYPE"
	StateAdminTaskDescription State = "ADMIN_TASK_DESCRIPTION"
	StateAdminTaskDeadline    State = "ADMIN_TASK_DEADLINE"
)

// parents describes the forward graph: each state is entered from its parent.
var parents = map[State]State{
	StateClassSelection:    StateInitial,
	StateDaySelection:      StateClassSelection,
	StateTaskList:          StateDaySelection,
	StateNotificationSetup: StateTaskList,

	StateAdminMenu:            StateInitial,
	StateAdminClassSelection:  StateAdminMenu,
	StateAdminDaySelection:    StateAdminClassSelection,
	StateAdminTaskName:        StateAdminDaySelection,
	StateAdminTaskType:        StateAdminTaskName,
	StateAdminTaskDescription: StateAdminTaskType,
	StateAdminTaskDeadline:    StateAdminTaskDescription,
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	if s == StateInitial {
		return true
	}
	_, ok := parents[s]
	return ok
}

// IsAdmin reports whether s belongs to the admin area.
func (s State) IsAdmin() bool {
	switch s {
	case StateAdminMenu, StateAdminClassSelection, StateAdminDaySelection,
		StateAdminTaskName, StateAdminTaskType, StateAdminTaskDescription, StateAdminTaskDeadline:
		return true
	}
	return false
}

// Path returns the states leading to s from INITIAL, oldest first, excluding s.
func Path(s State) []State {
	var path []State
	for cur, ok := parents[s]; ok; cur, ok = parents[cur] {
		path = append([]State{cur}, path...)
	}
	return path
}
