package chunking

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/coderag/internal/domain/chunk"
)

// SQL statement classifications.
const (
	StatementCreateTable = "CREATE_TABLE"
	StatementCreateIndex = "CREATE_INDEX"
	StatementInsert      = "INSERT"
	StatementSelect      = "SELECT"
	StatementUnknown     = "UNKNOWN"
)

var (
	statementSepRe = regexp.MustCompile(`;\s*\n`)
	statementKinds = []struct {
		re   *regexp.Regexp
		kind string
	}{
		{regexp.MustCompile(`(?i)^CREATE\s+TABLE`), StatementCreateTable},
		{regexp.MustCompile(`(?i)^CREATE\s+INDEX`), StatementCreateIndex},
		{regexp.MustCompile(`(?i)^INSERT`), StatementInsert},
		{regexp.MustCompile(`(?i)^SELECT`), StatementSelect},
	}
)

// SQL splits on statement terminators followed by a newline. statement_index
// is the 1-based ordinal among non-empty statements.
func SQL(text string, meta chunk.Metadata) []chunk.Chunk {
	var out []chunk.Chunk
	for _, stmt := range statementSepRe.Split(text, -1) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		out = append(out, chunk.New(stmt, chunk.TypeSQLStatement, meta, chunk.Metadata{
			chunk.KeyStatementType:  ClassifyStatement(stmt),
			chunk.KeyStatementIndex: len(out) + 1,
		}))
	}
	return out
}

// ClassifyStatement tags a statement by its leading keyword, ignoring
// leading line comments.
func ClassifyStatement(stmt string) string {
	body := stripLeadingComments(stmt)
	for _, k := range statementKinds {
		if k.re.MatchString(body) {
			return k.kind
		}
	}
	return StatementUnknown
}

func stripLeadingComments(stmt string) string {
	s := strings.TrimSpace(stmt)
	for strings.HasPrefix(s, "--") {
		nl := strings.IndexByte(s, '\n')
		if nl < 0 {
			return ""
		}
		s = strings.TrimSpace(s[nl+1:])
	}
	return s
}
