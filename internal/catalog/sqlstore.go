// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	gorp "github.com/go-gorp/gorp/v3"
	"github.com/lib/pq"

	"github.com/meline-schndr/networking-project/internal/db"
)

// SQLStore implements Store on the authoritative Postgres store.
type SQLStore struct {
	DB *gorp.DbMap
	// AllowedColumns is the introspected allow-list per table, in SELECT
	// order. See db.IntrospectColumns.
	AllowedColumns map[string][]string
}

// NewSQLStore builds a SQLStore, running schema introspection on the given
// connection.
func NewSQLStore(dbConn *sql.DB) *SQLStore {
	return &SQLStore{
		DB:             db.InitORM(dbConn),
		AllowedColumns: db.IntrospectColumns(dbConn, "Client", "Pizza", "Production"),
	}
}

// AllClients implements the Store interface.
func (s *SQLStore) AllClients() ([]db.ClientRow, error) {
	var rows []db.ClientRow
	_, err := s.DB.Select(&rows, `SELECT "ID", "Distance" FROM "Client"`)
	return rows, err
}

// AllPizzas implements the Store interface.
func (s *SQLStore) AllPizzas() ([]db.PizzaRow, error) {
	var rows []db.PizzaRow
	_, err := s.DB.Select(&rows, `SELECT "Nom", "Taille", "Composition", "TPsProd", "Prix" FROM "Pizza"`)
	return rows, err
}

// AllStations implements the Store interface.
func (s *SQLStore) AllStations() ([]db.StationRow, error) {
	var rows []db.StationRow
	_, err := s.DB.Select(&rows, `SELECT "Poste", "Capacite", "Disponibilite", "Taille", "Restriction" FROM "Production"`)
	return rows, err
}

// FindOne implements the Store interface. The query is assembled from the
// introspected column allow-list only; caller-supplied strings never reach
// the SQL text except through bind parameters.
func (s *SQLStore) FindOne(tableName string, filters ...Filter) (Entity, error) {
	columns, ok := s.AllowedColumns[tableName]
	if !ok || len(filters) == 0 {
		return nil, nil
	}
	for _, f := range filters {
		if !slices.Contains(columns, f.Column) {
			return nil, nil
		}
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	whereParts := make([]string, len(filters))
	args := make([]any, len(filters))
	for i, f := range filters {
		whereParts[i] = fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(f.Column), i+1)
		args[i] = f.Value
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s",
		strings.Join(quoted, ", "), pq.QuoteIdentifier(tableName), strings.Join(whereParts, " AND "))

	var (
		entity Entity
		err    error
	)
	switch tableName {
	case "Client":
		var row db.ClientRow
		err = s.DB.SelectOne(&row, query, args...)
		entity = ClientEntity{row}
	case "Pizza":
		var row db.PizzaRow
		err = s.DB.SelectOne(&row, query, args...)
		entity = PizzaEntity{row}
	case "Production":
		var row db.StationRow
		err = s.DB.SelectOne(&row, query, args...)
		entity = StationEntity{row}
	default:
		return nil, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}
