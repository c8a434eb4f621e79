package migrations

import _ "embed"

//go:embed 2024112203_create_attendances.sql
var createAttendancesSQL string

func init() {
	Migrations.MustRegister(
		exec(createAttendancesSQL),
		exec(`DROP TABLE IF EXISTS attendances`),
	)
}
