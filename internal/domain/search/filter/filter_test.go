package filter

import (
	"strings"
	"testing"
)

func TestNewMatch_Validation(t *testing.T) {
	if _, err := NewMatch("", "x"); err == nil {
		t.Error("expected error for empty key")
	}
	_, err := NewMatch("file_type", "")
	if err == nil || !strings.Contains(err.Error(), "file_type") {
		t.Errorf("expected error naming key, got %v", err)
	}
}

func TestEquals_SortedKeys(t *testing.T) {
	e, err := Equals(map[string]string{"filename": "a.py", "chunk_type": "ast_function"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	must := e.Must()
	if len(must) != 2 {
		t.Fatalf("expected 2 conditions, got %d", len(must))
	}
	if must[0].Key() != "chunk_type" || must[1].Key() != "filename" {
		t.Errorf("expected sorted keys, got %s, %s", must[0].Key(), must[1].Key())
	}
	if must[1].Match() != "a.py" {
		t.Errorf("expected a.py, got %q", must[1].Match())
	}
}

func TestExpression_IsEmpty(t *testing.T) {
	var zero Expression
	if !zero.IsEmpty() {
		t.Error("zero expression should be empty")
	}
	e, _ := Equals(nil)
	if !e.IsEmpty() {
		t.Error("Equals(nil) should be empty")
	}
}

func TestNewExpression_TooMany(t *testing.T) {
	conds := make([]Condition, MaxConditionsPerGroup+1)
	if _, err := NewExpression(conds, nil); err == nil {
		t.Error("expected error for too many must conditions")
	}
	if _, err := NewExpression(nil, conds); err == nil {
		t.Error("expected error for too many must_not conditions")
	}
}
