package prompt

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/search/result"
)

// NoContext is rendered when retrieval found nothing.
const NoContext = "No relevant code context found in your project."

var rule = strings.Repeat("=", 50)

// FormatContext renders retrieved chunks in rank order, each under a header
// with its file, line range, class, function and similarity.
func FormatContext(results []result.Result) string {
	if len(results) == 0 {
		return NoContext
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("%s\n%s\n%s\n%s\n", rule, header(r), rule, r.Content()))
	}
	return strings.Join(parts, "\n")
}

func header(r result.Result) string {
	meta := r.Metadata()

	filename := meta.String(chunk.KeyFilename)
	if filename == "" {
		filename = "Unknown file"
	}
	fields := []string{"File: " + filename}

	if start, end, ok := r.Chunk().Lines(); ok {
		fields = append(fields, fmt.Sprintf("Lines: %d-%d", start, end))
	}
	if class := meta.String(chunk.KeyClassName); class != "" {
		fields = append(fields, "Class: "+class)
	}
	if fn := meta.String(chunk.KeyFunctionName); fn != "" {
		fields = append(fields, "Function: "+fn)
	}
	fields = append(fields, fmt.Sprintf("Similarity: %.3f", r.Similarity()))

	return strings.Join(fields, " | ")
}

type signal struct {
	name string
	hit  func(text, lower string) bool
}

func anyLower(subs ...string) func(string, string) bool {
	return func(_, lower string) bool { return containsAny(lower, subs) }
}

func anyExact(subs ...string) func(string, string) bool {
	return func(text, _ string) bool { return containsAny(text, subs) }
}

func either(a, b func(string, string) bool) func(string, string) bool {
	return func(text, lower string) bool { return a(text, lower) || b(text, lower) }
}

var analysisGroups = []struct {
	label   string
	signals []signal
}{
	{"Frameworks Detected", []signal{
		{"FastAPI", anyLower("fastapi")},
		{"Streamlit", anyLower("streamlit")},
		{"Django", anyLower("django")},
		{"Flask", anyLower("flask")},
		{"React", anyLower("react", "jsx")},
		{"Vue.js", anyLower("vue")},
		{"Express.js", func(_, lower string) bool {
			return strings.Contains(lower, "express") && strings.Contains(lower, "javascript")
		}},
		{"Gin", anyExact("gin-gonic")},
		{"chi", anyExact("go-chi/chi")},
	}},
	{"Languages", []signal{
		{"Python", anyExact("def ", "import ", "class ")},
		{"JavaScript/TypeScript", anyExact("function ", "const ", "=>")},
		{"Java", anyExact("public class", "private ")},
		{"C/C++", anyExact("#include", "int main")},
		{"Go", anyExact("func ", "package main")},
	}},
	{"Patterns", []signal{
		{"REST API", anyLower("router", "endpoint")},
		{"Service Layer Pattern", func(_, lower string) bool {
			return strings.Contains(lower, "service") && strings.Contains(lower, "class")
		}},
		{"Repository Pattern", anyLower("repository", "dao")},
		{"Middleware Pattern", anyLower("middleware")},
		{"Async/Await Pattern", anyExact("async def", "await ")},
	}},
	{"Databases", []signal{
		{"PostgreSQL", anyLower("postgresql", "psycopg2")},
		{"MySQL", anyLower("mysql")},
		{"MongoDB", anyLower("mongodb", "pymongo")},
		{"SQLite", anyLower("sqlite")},
		{"Redis", anyLower("redis")},
		{"ChromaDB", anyLower("chromadb")},
	}},
	{"Testing", []signal{
		{"pytest", either(anyLower("pytest"), anyExact("def test_"))},
		{"unittest", either(anyLower("unittest"), anyExact("TestCase"))},
		{"Jest", either(anyLower("jest"), anyExact("describe("))},
		{"go test", anyExact("*testing.T")},
	}},
	{"Configuration", []signal{
		{"Pydantic Settings", either(anyLower("pydantic"), anyExact("BaseSettings"))},
		{"Environment Variables", either(anyExact("os.getenv", "os.Getenv"), anyLower("environment"))},
		{"Configuration Files", anyLower("config.json", "settings.py", "config.yaml")},
	}},
}

// AnalyzeContext lists the frameworks, languages, patterns, databases, test
// tools and configuration styles visible in context.
func AnalyzeContext(context string) string {
	lower := strings.ToLower(context)

	var lines []string
	for _, g := range analysisGroups {
		var found []string
		for _, s := range g.signals {
			if s.hit(context, lower) {
				found = append(found, s.name)
			}
		}
		if len(found) > 0 {
			lines = append(lines, fmt.Sprintf("**%s**: %s", g.label, strings.Join(found, ", ")))
		}
	}

	if len(lines) == 0 {
		return "**Context**: General code analysis"
	}
	return strings.Join(lines, "\n")
}
