package schema

// CoreWorkTable represents the 'core.work' table
type CoreWorkTable struct {
	Table          string
	Name           string
	ID             string
	OwnerID        string
	Title          string
	LayoutMode     string
	PageCount      string
	TotalWordCount string
	MigratedAt     string
	InlinePages    string
	LegacyPages    string
	CreatedAt      string
	UpdatedAt      string
}

// CoreWork is the schema definition for core.work.
// Name is the unqualified table name used by the SQLite backend.
var CoreWork = CoreWorkTable{
	Table:          "core.work",
	Name:           "work",
	ID:             "id",
	OwnerID:        "ownerid",
	Title:          "title",
	LayoutMode:     "layoutmode",
	PageCount:      "pagecount",
	TotalWordCount: "totalwordcount",
	MigratedAt:     "migratedat",
	InlinePages:    "inlinepages",
	LegacyPages:    "legacypages",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}

// MetadataColumns lists every column except the inline page blobs.
func (t CoreWorkTable) MetadataColumns() []string {
	return []string{
		t.ID, t.OwnerID, t.Title, t.LayoutMode, t.PageCount, t.TotalWordCount,
		t.MigratedAt, t.CreatedAt, t.UpdatedAt,
	}
}
