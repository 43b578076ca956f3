package nl2sql

import "strings"

// BuildPrompt renders the fixed completion prompt. The question and schema
// are inserted verbatim.
func BuildPrompt(question, schema string) string {
	var b strings.Builder
	b.Grow(len(question) + len(schema) + 256)
	b.WriteString("### Task\n")
	b.WriteString("Generate a SQL query to answer [QUESTION]")
	b.WriteString(question)
	b.WriteString("[/QUESTION]\n\n")
	b.WriteString("### Database Schema\n")
	b.WriteString("This query will run on a database whose schema is represented in this string:\n")
	b.WriteString(schema)
	b.WriteString("\n")
	b.WriteString("Return only the sql query without explanation to run it directly.\n")
	return b.String()
}
