package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех сущностей ядра скрутинеринга.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Team{},
		&UserProfile{},
		&InspectionType{},
		&ChecklistTemplateItem{},
		&Booking{},
		&ChecklistProgressEntry{},
		&InspectionResult{},
		&Event{},
	)
}

// EnsureIndexes создаёт индексы, которые AutoMigrate не умеет:
// частичный уникальный индекс слота, отфильтрованный по неотменённым
// бронированиям. Именно он закрывает гонку двух одновременных
// резервирований одного слота (Postgres и sqlite поддерживают оба).
func EnsureIndexes(db *gorm.DB) error {
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_bookings_active_slot
		 ON bookings (inspection_type_id, date, start_time, resource_index)
		 WHERE status <> 'cancelled'`,
	).Error
}
