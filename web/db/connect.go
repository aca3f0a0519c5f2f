package db

import (
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	var err error

	dsn := os.Getenv("DB")

	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(err)
	}
}

func Sync() {
	err := DB.AutoMigrate(
		&User{},
		&Artist{},
		&Artwork{},
		&Cart{},
		&CartItem{},
		&DeliveryOption{},
		&PaymentTransaction{},
		&Order{},
		&OrderItem{},
		&Notification{},
	)
	if err != nil {
		panic(err)
	}
}
