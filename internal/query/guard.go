package query

import (
	"errors"
	"strings"

	"github.com/blastrain/vitess-sqlparser/sqlparser"
)

var ErrStatementRejected = errors.New("statement rejected: only read-only SELECT/WITH queries are allowed")

type Guard interface {
	Check(sql string) error
}

// ReadOnlyGuard admits single SELECT statements. Statements the parser cannot
// handle (CTEs, dialect extensions) fall back to a leading keyword check plus
// a scan for data-modifying keywords anywhere in the text.
type ReadOnlyGuard struct{}

func (ReadOnlyGuard) Check(sql string) error {
	statement := stripTrailingSemicolons(sql)
	if statement == "" {
		return ErrStatementRejected
	}

	parsed, err := sqlparser.Parse(statement)
	if err == nil {
		switch parsed.(type) {
		case sqlparser.SelectStatement:
			return nil
		default:
			return ErrStatementRejected
		}
	}

	if strings.Contains(statement, ";") {
		return ErrStatementRejected
	}
	switch firstKeyword(statement) {
	case "select", "with":
	default:
		return ErrStatementRejected
	}
	for _, word := range strings.FieldsFunc(strings.ToLower(statement), isWordSeparator) {
		if _, ok := mutatingKeywords[word]; ok {
			return ErrStatementRejected
		}
	}
	return nil
}

var mutatingKeywords = map[string]struct{}{
	"insert": {}, "update": {}, "delete": {}, "merge": {}, "upsert": {},
	"create": {}, "alter": {}, "drop": {}, "truncate": {},
	"grant": {}, "revoke": {}, "attach": {}, "detach": {}, "pragma": {},
	"vacuum": {}, "copy": {}, "install": {},
}

func isWordSeparator(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_')
}

func firstKeyword(statement string) string {
	trimmed := strings.TrimLeft(statement, " \t\r\n(")
	end := strings.IndexFunc(trimmed, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
	if end < 0 {
		end = len(trimmed)
	}
	return strings.ToLower(trimmed[:end])
}

func stripTrailingSemicolons(sql string) string {
	trimmed := strings.TrimSpace(sql)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}
