package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunQualityChecksNullHeavy(t *testing.T) {
	d := Build("pedidos", "", []string{"id", "observacao"}, []map[string]any{
		{"id": "1", "observacao": nil},
		{"id": "2", "observacao": nil},
		{"id": "3", "observacao": "ok"},
	})
	found := false
	for _, issue := range d.QualityIssues {
		if issue.Column == "observacao" && issue.Kind == "null_heavy" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRunQualityChecksWhitespace(t *testing.T) {
	rows := make([]map[string]any, 0, 40)
	for i := 0; i < 40; i++ {
		rows = append(rows, map[string]any{"id": "1", "nome": " Ana "})
	}
	d := Build("clientes", "", []string{"id", "nome"}, rows)
	found := false
	for _, issue := range d.QualityIssues {
		if issue.Column == "nome" && issue.Kind == "whitespace" {
			found = true
			assert.Equal(t, "TRIM(nome)", issue.SQLFix)
		}
	}
	assert.True(t, found)
}

func TestRunQualityChecksEmptyString(t *testing.T) {
	d := Build("clientes", "", []string{"id", "email"}, []map[string]any{
		{"id": "1", "email": ""},
		{"id": "2", "email": "b@example.com"},
	})
	found := false
	for _, issue := range d.QualityIssues {
		if issue.Column == "email" && issue.Kind == "empty_string" {
			found = true
		}
	}
	assert.True(t, found)
}
