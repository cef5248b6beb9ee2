// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"database/sql"
	"os"

	"github.com/dlmiddlecote/sqlstats"
	gorp "github.com/go-gorp/gorp/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sapcc/go-bits/easypg"
	"github.com/sapcc/go-bits/osext"
)

// Configuration returns the easypg.Configuration object that func Init() needs
// to initialize the DB connection.
func Configuration() easypg.Configuration {
	return easypg.Configuration{
		Migrations: sqlMigrations,
	}
}

// Init initializes the connection to the authoritative catalog store.
func Init() (*sql.DB, error) {
	dbURL, err := easypg.URLFrom(easypg.URLParts{
		HostName:          osext.GetenvOrDefault("PIZZERIA_DB_HOSTNAME", "localhost"),
		Port:              osext.GetenvOrDefault("PIZZERIA_DB_PORT", "5432"),
		UserName:          osext.GetenvOrDefault("PIZZERIA_DB_USERNAME", "postgres"),
		Password:          os.Getenv("PIZZERIA_DB_PASSWORD"),
		ConnectionOptions: os.Getenv("PIZZERIA_DB_CONNECTION_OPTIONS"),
		DatabaseName:      osext.GetenvOrDefault("PIZZERIA_DB_NAME", "pizzeria"),
	})
	if err != nil {
		return nil, err
	}
	dbConn, err := easypg.Connect(dbURL, Configuration())
	if err != nil {
		return nil, err
	}
	prometheus.MustRegister(sqlstats.NewStatsCollector("pizzeria", dbConn))
	return dbConn, nil
}

// InitORM wraps a database connection into a gorp.DbMap instance.
func InitORM(dbConn *sql.DB) *gorp.DbMap {
	// the engine only ever needs one connection for bulk loads plus the
	// occasional single-row refill, so do not starve other users of the store
	dbConn.SetMaxOpenConns(4)

	dbMap := &gorp.DbMap{Db: dbConn, Dialect: gorp.PostgresDialect{}}
	initGorp(dbMap)
	return dbMap
}
