// Package dbtest поднимает SQLite со схемой ядра для тестов.
package dbtest

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Leganyst/temple-booking/internal/model"
)

// Open открывает отдельную базу на тест. Соединение одно: shared-cache
// SQLite иначе ловит "database table is locked" на параллельных запросах.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	return open(t, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), 1)
}

// OpenFile открывает базу-файл во временном каталоге с несколькими
// соединениями, для тестов на конкурентные транзакции. Писатели
// выстраиваются в очередь через BEGIN IMMEDIATE и busy_timeout.
func OpenFile(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "booking.db")
	return open(t, path+"?_busy_timeout=5000&_txlock=immediate", 4)
}

func open(t *testing.T, dsn string, maxConns int) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(maxConns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func Temple(t *testing.T, db *gorm.DB, name string) *model.Temple {
	t.Helper()
	temple := &model.Temple{Name: name, IsActive: true}
	if err := db.Create(temple).Error; err != nil {
		t.Fatalf("create temple: %v", err)
	}
	return temple
}

func Service(t *testing.T, db *gorm.DB, templeID uuid.UUID, name string, price float64) *model.Service {
	t.Helper()
	svc := &model.Service{TempleID: templeID, Name: name, Price: price, IsAvailable: true}
	if err := db.Create(svc).Error; err != nil {
		t.Fatalf("create service: %v", err)
	}
	return svc
}

// Timing заводит часы работы; open/close в виде часов и минут.
func Timing(t *testing.T, db *gorm.DB, templeID uuid.UUID, day, openH, openM, closeH, closeM int) *model.Timing {
	t.Helper()
	timing := &model.Timing{
		TempleID:  templeID,
		DayOfWeek: day,
		OpenTime:  datatypes.NewTime(openH, openM, 0, 0),
		CloseTime: datatypes.NewTime(closeH, closeM, 0, 0),
		IsActive:  true,
	}
	if err := db.Create(timing).Error; err != nil {
		t.Fatalf("create timing: %v", err)
	}
	return timing
}

func User(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()
	u := &model.User{DisplayName: name, Email: name + "@example.com", IsActive: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// SetBookingStatus переводит бронь в статус в обход сервиса:
// confirmed и completed выставляет внешний контур.
func SetBookingStatus(t *testing.T, db *gorm.DB, id uuid.UUID, status model.BookingStatus) {
	t.Helper()
	err := db.Model(&model.Booking{}).Where("id = ?", id).Update("status", status).Error
	if err != nil {
		t.Fatalf("set booking status: %v", err)
	}
}
