package models

// ModelsToAutoMigrate returns every model the migrate command creates tables
// for, in dependency order.
func ModelsToAutoMigrate() []interface{} {
	return []interface{}{
		&Document{},
		&User{},
		&Domain{},
	}
}
