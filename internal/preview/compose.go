// Package preview assembles the generated files into one HTML document for
// sandboxed rendering.
package preview

import (
	"strings"

	"codecanvas/internal/types"
)

const (
	IndexFile  = "index.html"
	StyleFile  = "style.css"
	ScriptFile = "script.js"

	// MissingIndex is shown when the project has files but no index.html.
	MissingIndex = `<div style="color: #cbd5e1; font-family: sans-serif; padding: 2rem;">index.html not found.</div>`

	// SandboxPolicy is the iframe sandbox applied to the preview document.
	SandboxPolicy = "allow-scripts allow-same-origin"
)

func find(files []types.File, name string) (types.File, bool) {
	for _, f := range files {
		if f.Name == name {
			return f, true
		}
	}
	return types.File{}, false
}

// Compose inlines style.css before the first </head> and script.js before the
// first </body> of index.html. Missing close tags make the style block
// prepend and the script block append. Only the first occurrence of each tag
// is used; the HTML is never parsed.
func Compose(files []types.File) string {
	if len(files) == 0 {
		return ""
	}
	html, ok := find(files, IndexFile)
	if !ok {
		return MissingIndex
	}

	doc := html.Content
	if css, ok := find(files, StyleFile); ok {
		styleTag := "<style>" + css.Content + "</style>"
		if strings.Contains(doc, "</head>") {
			doc = strings.Replace(doc, "</head>", styleTag+"</head>", 1)
		} else {
			doc = styleTag + doc
		}
	}
	if js, ok := find(files, ScriptFile); ok {
		scriptTag := "<script>" + js.Content + "</script>"
		if strings.Contains(doc, "</body>") {
			doc = strings.Replace(doc, "</body>", scriptTag+"</body>", 1)
		} else {
			doc += scriptTag
		}
	}
	return doc
}
