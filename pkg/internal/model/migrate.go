package model

import "gorm.io/gorm"

// AutoMigrate 建表/补列，启动时与 `auditiq db migrate` 命令调用.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Dataset{},
		&Audit{},
	)
}
