package ticket

// Display is the per-variant presentation record for Status and Priority.
// Modeling this as a total function from the enum rather than duplicating
// switch arms across every rendering callsite is the "enum-dispatched
// metadata" design note from SPEC_FULL.md §4.9.
type Display struct {
	Label string
	Color string // a color name understood by github.com/fatih/color
	Emoji string
}

var statusDisplay = map[Status]Display{
	StatusTodo:    {Label: "To Do", Color: "white", Emoji: "\U0001F4CB"},
	StatusDoing:   {Label: "In Progress", Color: "yellow", Emoji: "\U0001F6A7"},
	StatusBlocked: {Label: "Blocked", Color: "red", Emoji: "\U0001F6D1"},
	StatusReview:  {Label: "In Review", Color: "magenta", Emoji: "\U0001F440"},
	StatusDone:    {Label: "Done", Color: "green", Emoji: "✅"},
}

var priorityDisplay = map[Priority]Display{
	PriorityLow:      {Label: "Low", Color: "blue", Emoji: "\U0001F535"},
	PriorityMedium:   {Label: "Medium", Color: "yellow", Emoji: "\U0001F7E1"},
	PriorityHigh:     {Label: "High", Color: "red", Emoji: "\U0001F7E0"},
	PriorityCritical: {Label: "Critical", Color: "red", Emoji: "\U0001F534"},
}

// DisplayOf returns the presentation record for a status, falling back to a
// neutral display for an invalid value rather than panicking.
func (s Status) DisplayOf() Display {
	if d, ok := statusDisplay[s]; ok {
		return d
	}
	return Display{Label: string(s), Color: "white"}
}

// DisplayOf returns the presentation record for a priority, falling back to
// a neutral display for an invalid value rather than panicking.
func (p Priority) DisplayOf() Display {
	if d, ok := priorityDisplay[p]; ok {
		return d
	}
	return Display{Label: string(p), Color: "white"}
}
