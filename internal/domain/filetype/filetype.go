// Package filetype maps filenames to content categories and chunking strategies.
package filetype

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kailas-cloud/coderag/internal/domain"
)

// Category is a closed set of content families.
type Category string

// Categories.
const (
	CategoryCode     Category = "code"
	CategoryConfig   Category = "config"
	CategoryDocs     Category = "docs"
	CategoryDatabase Category = "database"
	CategoryWeb      Category = "web"
	CategoryData     Category = "data"
	CategoryScripts  Category = "scripts"
	CategoryDevOps   Category = "devops"
	CategoryUnknown  Category = "unknown"
)

// Strategy names the chunking strategy a file type is routed to.
type Strategy string

// Chunking strategies.
const (
	StrategyCode    Strategy = "code"
	StrategyConfig  Strategy = "config"
	StrategyDocs    Strategy = "docs"
	StrategySQL     Strategy = "sql"
	StrategyWeb     Strategy = "web"
	StrategyCSV     Strategy = "csv"
	StrategyGeneric Strategy = "generic"
)

var categories = map[Category][]string{
	CategoryCode: {".py", ".js", ".ts", ".jsx", ".tsx", ".java", ".cpp", ".c", ".h",
		".go", ".rs", ".rb", ".php", ".swift", ".kt", ".scala"},
	CategoryConfig:   {".json", ".yaml", ".yml", ".toml", ".ini", ".env.example", ".conf", ".xml", ".properties"},
	CategoryDocs:     {".md", ".txt", ".rst", ".pdf", ".docx"},
	CategoryDatabase: {".sql", ".db"},
	CategoryWeb:      {".html", ".css", ".scss", ".sass"},
	CategoryData:     {".csv", ".xlsx"},
	CategoryScripts:  {".sh", ".bat", ".ps1"},
	CategoryDevOps:   {"Dockerfile", ".dockerignore", ".gitlab-ci.yml"},
}

// multi-dot suffixes win over the final extension.
var compoundSuffixes = []string{".env.example", ".gitlab-ci.yml"}

var extensionless = map[string]bool{"dockerfile": true, "makefile": true, "readme": true}

var byExt = func() map[string]Category {
	m := make(map[string]Category)
	for cat, exts := range categories {
		for _, e := range exts {
			m[strings.ToLower(e)] = cat
		}
	}
	return m
}()

var languages = map[string]string{
	".py": "python", ".js": "javascript", ".jsx": "javascript",
	".ts": "typescript", ".tsx": "typescript", ".java": "java",
	".cpp": "cpp", ".c": "c", ".h": "c", ".go": "go", ".rs": "rust",
	".rb": "ruby", ".php": "php", ".swift": "swift", ".kt": "kotlin",
	".scala": "scala", ".html": "html", ".css": "css", ".scss": "scss",
	".sass": "sass", ".sql": "sql", ".json": "json", ".yaml": "yaml",
	".yml": "yaml", ".toml": "toml", ".xml": "xml", ".md": "markdown",
	".txt": "text", ".sh": "bash", ".bat": "batch", ".ps1": "powershell",
}

// Info is the classification of one filename.
type Info struct {
	// Ext is the normalized extension with its leading dot.
	Ext      string
	Category Category
}

// Classify resolves a filename to its extension and category.
// Unknown extensions return an error wrapping domain.ErrUnsupportedFileType.
func Classify(filename string) (Info, error) {
	base := filepath.Base(filename)
	lower := strings.ToLower(base)

	if lower == "dockerfile" {
		return Info{Ext: ".txt", Category: CategoryDevOps}, nil
	}
	for _, suffix := range compoundSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return Info{Ext: suffix, Category: byExt[suffix]}, nil
		}
	}

	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" || ext == lower {
		// extensionless names and dot-files are read as plain text
		if extensionless[lower] || strings.HasPrefix(base, ".") {
			if cat, ok := byExt[lower]; ok {
				return Info{Ext: lower, Category: cat}, nil
			}
			return Info{Ext: ".txt", Category: CategoryDocs}, nil
		}
		return Info{Category: CategoryUnknown}, fmt.Errorf("%w: %s has no extension", domain.ErrUnsupportedFileType, base)
	}

	cat, ok := byExt[ext]
	if !ok {
		return Info{Ext: ext, Category: CategoryUnknown}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, ext)
	}
	return Info{Ext: ext, Category: cat}, nil
}

// Supported reports whether Classify accepts filename.
func Supported(filename string) bool {
	_, err := Classify(filename)
	return err == nil
}

// StrategyFor selects the chunking strategy for a normalized extension.
func StrategyFor(ext string) Strategy {
	ext = strings.ToLower(ext)
	switch {
	case ext == ".csv":
		return StrategyCSV
	case ext == ".sql":
		return StrategySQL
	case ext == ".md" || ext == ".txt" || ext == ".rst":
		return StrategyDocs
	}
	switch byExt[ext] {
	case CategoryCode:
		return StrategyCode
	case CategoryConfig:
		if ext == ".conf" || ext == ".env.example" {
			return StrategyGeneric
		}
		return StrategyConfig
	case CategoryWeb:
		return StrategyWeb
	default:
		return StrategyGeneric
	}
}

// Language returns the language name used for parser and pattern lookup.
func Language(ext string) string {
	if l, ok := languages[strings.ToLower(ext)]; ok {
		return l
	}
	return "text"
}

// CategoryOf returns the category of a normalized extension.
func CategoryOf(ext string) Category {
	if c, ok := byExt[strings.ToLower(ext)]; ok {
		return c
	}
	return CategoryUnknown
}

// SupportedExtensions returns every accepted extension, sorted.
func SupportedExtensions() []string {
	out := make([]string, 0, len(byExt))
	for _, exts := range categories {
		out = append(out, exts...)
	}
	slices.Sort(out)
	return out
}
