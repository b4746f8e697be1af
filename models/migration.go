package models

import (
	"log"

	"bitbucket.org/mmdatafocus/retail_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Location{}, &Reason{},
		&PrimaryItem{},
		&ImportRun{}, &SecondaryRow{},
		&MatchRecord{},
		&StockMutation{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
