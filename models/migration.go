package models

import (
	"bitbucket.org/wildlifefocus/reptileguard_backend/config"
)

func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&User{},
		&SightingReport{},
		&DeletedReport{},
	)
}
