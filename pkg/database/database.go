package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/cartbridge/partnerhub/pkg/domain"
)

// Client holds the database handle
type Client struct {
	DB *gorm.DB
}

// NewClient opens a MySQL connection and runs migrations
func NewClient(dsn string) (*Client, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed opening connection to mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed getting sql.DB handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("✅ Database connected and migrations applied")

	return &Client{DB: db}, nil
}

// Migrate creates or updates the schema for all domain entities
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.Partner{},
		&domain.Deal{},
		&domain.ActivityEntry{},
		&domain.Nudge{},
		&domain.KYCDocument{},
		&domain.CommissionRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed running migrations: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks if the database is reachable
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
