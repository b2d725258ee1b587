package postgres

type snapshotTableModel struct {
	Namespace  string `db:"namespace"`
	Collection string `db:"collection"`
	DayKey     string `db:"day_key"`
	PlayerData string `db:"player_data"`
	CapturedAt int64  `db:"captured_at"`
}
