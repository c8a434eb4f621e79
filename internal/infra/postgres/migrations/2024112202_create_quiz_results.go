package migrations

import _ "embed"

//go:embed 2024112202_create_quiz_results.sql
var createQuizResultsSQL string

func init() {
	Migrations.MustRegister(
		exec(createQuizResultsSQL),
		exec(`DROP TABLE IF EXISTS quiz_results`),
	)
}
