package filetype

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/coderag/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		ext      string
		cat      Category
	}{
		{"python", "app/main.py", ".py", CategoryCode},
		{"upper case ext", "Main.JAVA", ".java", CategoryCode},
		{"yaml", "config/local.yaml", ".yaml", CategoryConfig},
		{"env example", "deploy/.env.example", ".env.example", CategoryConfig},
		{"gitlab ci", ".gitlab-ci.yml", ".gitlab-ci.yml", CategoryDevOps},
		{"markdown", "README.md", ".md", CategoryDocs},
		{"sql", "schema.sql", ".sql", CategoryDatabase},
		{"html", "index.html", ".html", CategoryWeb},
		{"csv", "data/sales.csv", ".csv", CategoryData},
		{"xlsx", "report.xlsx", ".xlsx", CategoryData},
		{"shell", "run.sh", ".sh", CategoryScripts},
		{"dockerfile", "Dockerfile", ".txt", CategoryDevOps},
		{"dockerfile any case", "deploy/DOCKERFILE", ".txt", CategoryDevOps},
		{"dockerignore", ".dockerignore", ".dockerignore", CategoryDevOps},
		{"makefile", "Makefile", ".txt", CategoryDocs},
		{"readme", "README", ".txt", CategoryDocs},
		{"dotfile", ".gitignore", ".txt", CategoryDocs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Classify(tt.filename)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if info.Ext != tt.ext {
				t.Errorf("expected ext %q, got %q", tt.ext, info.Ext)
			}
			if info.Category != tt.cat {
				t.Errorf("expected category %q, got %q", tt.cat, info.Category)
			}
		})
	}
}

func TestClassify_Unsupported(t *testing.T) {
	for _, name := range []string{"binary.exe", "LICENSE", "photo.png"} {
		_, err := Classify(name)
		if !errors.Is(err, domain.ErrUnsupportedFileType) {
			t.Errorf("%s: expected ErrUnsupportedFileType, got %v", name, err)
		}
		if Supported(name) {
			t.Errorf("%s: expected unsupported", name)
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	for _, ext := range SupportedExtensions() {
		name := "file" + ext
		if ext == "Dockerfile" {
			name = ext
		}
		first, err := Classify(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		second, _ := Classify(name)
		if first != second {
			t.Errorf("%s: classification changed %v -> %v", name, first, second)
		}
		if StrategyFor(first.Ext) != StrategyFor(second.Ext) {
			t.Errorf("%s: strategy changed", name)
		}
	}
}

func TestStrategyFor(t *testing.T) {
	tests := map[string]Strategy{
		".go":   StrategyCode,
		".tsx":  StrategyCode,
		".json": StrategyConfig,
		".toml": StrategyConfig,
		".md":   StrategyDocs,
		".rst":  StrategyDocs,
		".sql":  StrategySQL,
		".css":  StrategyWeb,
		".csv":  StrategyCSV,
		".sh":   StrategyGeneric,
		".pdf":  StrategyGeneric,
		".conf": StrategyGeneric,
	}
	for ext, want := range tests {
		if got := StrategyFor(ext); got != want {
			t.Errorf("%s: expected %q, got %q", ext, want, got)
		}
	}
}

func TestLanguage(t *testing.T) {
	if Language(".py") != "python" {
		t.Errorf("expected python, got %q", Language(".py"))
	}
	if Language(".TSX") != "typescript" {
		t.Errorf("expected typescript, got %q", Language(".TSX"))
	}
	if Language(".unknown") != "text" {
		t.Errorf("expected text, got %q", Language(".unknown"))
	}
}
