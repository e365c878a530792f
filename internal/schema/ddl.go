package schema

import (
	"fmt"
	"strings"
)

// CreateTableSQL renders the CREATE TABLE statement for a destination table,
// including the standard Supabase columns and the per-user row level security
// policy. The statement is advisory only: the PostgREST surface has no DDL
// capability, so this is logged for the operator to run in the dashboard.
func CreateTableSQL(table string, columns []Column) string {
	lines := []string{
		"id uuid primary key default gen_random_uuid()",
	}

	for _, col := range columns {
		lines = append(lines, fmt.Sprintf("%s %s", col.Name, col.Type))
	}

	lines = append(lines,
		"user_id uuid not null",
		"created_at timestamp with time zone not null default now()",
		"updated_at timestamp with time zone not null default now()",
	)

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", table)
	for i, line := range lines {
		separator := ","
		if i == len(lines)-1 {
			separator = ""
		}
		fmt.Fprintf(&b, "    %s%s\n", line, separator)
	}
	b.WriteString(");\n\n")

	fmt.Fprintf(&b, "ALTER TABLE %s ENABLE ROW LEVEL SECURITY;\n\n", table)
	fmt.Fprintf(&b, "CREATE POLICY \"Users can view own data\" ON %s\n    FOR ALL USING (auth.uid() = user_id);\n", table)

	return b.String()
}
