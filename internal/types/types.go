package types

// File is a single named source file of a generated website.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// FileInfo is the listing entry for a file, without its content.
type FileInfo struct {
	Name string `json:"name"`
	Type string `json:"type"` // e.g., "HTML", "CSS", "JavaScript"
}
