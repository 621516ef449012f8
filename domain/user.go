package domain

import (
	"time"

	"gorm.io/gorm"
)

// CREATE TABLE users (
//     id          BIGSERIAL PRIMARY KEY,
//     username    TEXT NOT NULL,
//     email       TEXT NOT NULL UNIQUE,
//     password    TEXT NOT NULL,
//     whatsapp    TEXT,
//     role        TEXT NOT NULL DEFAULT 'customer',
//     created_at  TIMESTAMPTZ,
//     updated_at  TIMESTAMPTZ,
//     deleted_at  TIMESTAMPTZ
// );

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"column:username;size:100;not null"`
	Email     string `gorm:"column:email;size:255;uniqueIndex;not null"`
	Password  string `gorm:"column:password;size:255;not null"`
	Whatsapp  string `gorm:"column:whatsapp;size:32"`
	Role      Role   `gorm:"column:role;size:16;default:customer;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
