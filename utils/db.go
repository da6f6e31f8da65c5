package utils

import (
	"sync"

	"gorm.io/gorm"
)

var (
	db   *gorm.DB
	once sync.Once
	mu   sync.RWMutex
)

// InitDB menyimpan koneksi database untuk dipakai oleh controller.
func InitDB(database *gorm.DB) {
	once.Do(func() {
		mu.Lock()
		db = database
		mu.Unlock()
	})
}

// GetDB mengembalikan koneksi database yang aktif.
func GetDB() *gorm.DB {
	mu.RLock()
	defer mu.RUnlock()
	return db
}
