package model

import "gorm.io/gorm"

// All lists every table the service owns, in migration order.
var All = []interface{}{
	&User{},
	&Session{},
	&Patient{},
	&Appointment{},
	&SecurityLog{},
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All...)
}
