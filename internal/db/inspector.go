// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/sapcc/go-bits/logg"
	"github.com/sapcc/go-bits/sqlext"
)

// defaultColumns is the baseline schema of the authoritative store. It is
// used when introspection fails, e.g. because the store does not grant access
// to information_schema.
var defaultColumns = map[string][]string{
	"Client":     {"ID", "Distance"},
	"Pizza":      {"Nom", "Taille", "Composition", "TPsProd", "Prix"},
	"Production": {"Poste", "Capacite", "Disponibilite", "Taille", "Restriction"},
}

var introspectColumnsQuery = sqlext.SimplifyWhitespace(`
	SELECT table_name, column_name
	  FROM information_schema.columns
	 WHERE table_schema = 'public' AND table_name = ANY($1)
	 ORDER BY table_name, ordinal_position
`)

// IntrospectColumns discovers which columns are addressable on the given
// tables. The result is the allow-list for dynamically built refill queries;
// predicates on columns outside this list are rejected before any SQL is
// generated.
func IntrospectColumns(dbConn *sql.DB, tableNames ...string) map[string][]string {
	result := make(map[string][]string, len(tableNames))
	err := sqlext.ForeachRow(dbConn, introspectColumnsQuery, []any{pq.Array(tableNames)}, func(rows *sql.Rows) error {
		var tableName, columnName string
		err := rows.Scan(&tableName, &columnName)
		if err != nil {
			return err
		}
		result[tableName] = append(result[tableName], columnName)
		return nil
	})
	if err != nil {
		logg.Error("schema introspection failed, falling back to the baseline schema: %s", err.Error())
		return defaultColumns
	}

	// a table that exists in the baseline but not in the store would make
	// every refill on it fail with an SQL error; surface this early instead
	for _, tableName := range tableNames {
		if len(result[tableName]) == 0 {
			logg.Error("table %q not found during schema introspection, assuming baseline columns", tableName)
			result[tableName] = defaultColumns[tableName]
		}
	}
	return result
}
