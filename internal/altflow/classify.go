// Package altflow implements the Alternative Flow (C8): the pre-query
// entity check, error classification with rephrase/simplify recovery,
// and alternative-question synthesis. The error-signature inspection
// is grounded on the teacher's VerifySQLTool.quickCheck/checkParentheses
// pattern of scanning a SQL error string for a known failure shape,
// generalized from "reject before executing" to "classify after
// executing". The terminal-failure framing is grounded on
// PrettyReActHandler's step classification (react_handler.go), adapted
// from "collect ReAct steps for display" to "classify one failure for
// recovery".
package altflow

import (
	"errors"
	"regexp"
	"strings"

	"github.com/nlquery/corecube/internal/response"
	"github.com/nlquery/corecube/internal/sandbox"
)

// tableNotFoundPattern and columnNotFoundPattern extract the offending
// identifier from dialect error messages, mirroring dialect.TableNotFound's
// own message shape ("table %q not found").
var (
	tableNotFoundPattern  = regexp.MustCompile(`table "?([A-Za-z0-9_]+)"? not found`)
	columnNotFoundPattern = regexp.MustCompile(`(?i)column "?([A-Za-z0-9_]+)"? (not found|does not exist)`)
)

// Classify maps a failure's error into one of the error kinds in the
// error handling design table.
func Classify(err error) response.ErrorKind {
	if err == nil {
		return response.ErrGeneric
	}
	var validationErr *sandbox.ValidationError
	if errors.As(err, &validationErr) {
		return response.ErrValidation
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "exceeded"):
		return response.ErrTimeout
	case tableNotFoundPattern.MatchString(err.Error()):
		return response.ErrTableNotFound
	case columnNotFoundPattern.MatchString(err.Error()):
		return response.ErrColumnNotFound
	case strings.Contains(msg, "syntax error") || strings.Contains(msg, "parse error"):
		return response.ErrSQLSyntax
	case strings.Contains(msg, "type mismatch") || strings.Contains(msg, "cannot convert"):
		return response.ErrTypeMismatch
	case strings.Contains(msg, "llm") || strings.Contains(msg, "provider"):
		return response.ErrLLMUnavailable
	default:
		return response.ErrGeneric
	}
}

// ExtractMissingTable pulls the offending table name out of a
// TableNotFound-shaped error message, for building the "Text listing
// available tables" response.
func ExtractMissingTable(err error) string {
	if err == nil {
		return ""
	}
	m := tableNotFoundPattern.FindStringSubmatch(err.Error())
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
