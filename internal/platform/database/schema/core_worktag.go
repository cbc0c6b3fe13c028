package schema

// CoreWorkTagTable represents the 'core.worktag' table
type CoreWorkTagTable struct {
	Table  string
	Name   string
	WorkID string
	TagKey string
	Label  string
}

// CoreWorkTag is the schema definition for core.worktag
var CoreWorkTag = CoreWorkTagTable{
	Table:  "core.worktag",
	Name:   "worktag",
	WorkID: "workid",
	TagKey: "tagkey",
	Label:  "label",
}
