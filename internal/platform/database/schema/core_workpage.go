package schema

// CoreWorkPageTable represents the 'core.workpage' table
type CoreWorkPageTable struct {
	Table     string
	Name      string
	WorkID    string
	PageIndex string
	Content   string
	WordCount string
	CreatedAt string
	UpdatedAt string
}

// CoreWorkPage is the schema definition for core.workpage.
// (workid, pageindex) is the primary key.
var CoreWorkPage = CoreWorkPageTable{
	Table:     "core.workpage",
	Name:      "workpage",
	WorkID:    "workid",
	PageIndex: "pageindex",
	Content:   "content",
	WordCount: "wordcount",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t CoreWorkPageTable) Columns() []string {
	return []string{t.WorkID, t.PageIndex, t.Content, t.WordCount, t.CreatedAt, t.UpdatedAt}
}
