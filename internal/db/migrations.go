// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package db

// In production, the engine points at the authoritative store whose schema is
// owned by the ordering side. These migrations recreate that schema verbatim
// for development setups and tests that run against an empty database.
var sqlMigrations = map[string]string{
	"001_initial.down.sql": `
		DROP TABLE "Production";
		DROP TABLE "Pizza";
		DROP TABLE "Client";
	`,
	"001_initial.up.sql": `
		CREATE TABLE IF NOT EXISTS "Client" (
			"ID"        BIGINT  NOT NULL PRIMARY KEY,
			"Distance"  BIGINT  NOT NULL
		);

		CREATE TABLE IF NOT EXISTS "Pizza" (
			"Nom"          TEXT     NOT NULL,
			"Taille"       TEXT     NOT NULL,
			"Composition"  TEXT     NOT NULL DEFAULT '',
			"TPsProd"      BIGINT   NOT NULL,
			"Prix"         NUMERIC  NOT NULL DEFAULT 0,
			PRIMARY KEY ("Nom", "Taille")
		);

		CREATE TABLE IF NOT EXISTS "Production" (
			"Poste"          BIGINT   NOT NULL PRIMARY KEY,
			"Capacite"       BIGINT   NOT NULL,
			"Disponibilite"  BOOLEAN  NOT NULL DEFAULT TRUE,
			"Taille"         TEXT     NOT NULL DEFAULT '',
			"Restriction"    TEXT     NOT NULL DEFAULT ''
		);
	`,
}
