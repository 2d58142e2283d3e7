package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ManuelReschke/merchantgate/app/models"
	"github.com/ManuelReschke/merchantgate/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	// DriverMemory keeps all state in process; nothing is opened or migrated.
	DriverMemory   = "memory"
)

var DB *gorm.DB

// Config holds the connection settings read from the environment.
type Config struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

func ConfigFromEnv() Config {
	driver := strings.ToLower(env.GetEnv("DB_DRIVER", DriverMySQL))
	defPort := "3306"
	if driver == DriverPostgres {
		defPort = "5432"
	}
	return Config{
		Driver:   driver,
		Host:     env.GetEnv("DB_HOST", "127.0.0.1"),
		Port:     env.GetEnv("DB_PORT", defPort),
		User:     env.GetEnv("DB_USER", ""),
		Password: env.GetEnv("DB_PASSWORD", ""),
		Name:     env.GetEnv("DB_NAME", ""),
	}
}

// DSN renders the driver specific data source name.
func (c Config) DSN() string {
	if c.Driver == DriverPostgres {
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.Host, c.User, c.Password, c.Name, c.Port)
	}
	// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// MigrateURL renders the URL golang-migrate expects for the same database.
func (c Config) MigrateURL() string {
	if c.Driver == DriverPostgres {
		return fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=disable", c.User, c.Password, c.Host, c.Port, c.Name)
	}
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true", c.User, c.Password, c.Host, c.Port, c.Name)
}

func (c Config) dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case DriverMySQL:
		return mysql.New(mysql.Config{
			DSN:                       c.DSN(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), nil
	case DriverPostgres:
		return postgres.Open(c.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", c.Driver)
	}
}

// Models lists every table owned by this service.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Merchant{},
		&models.MerchantMember{},
		&models.APIKey{},
		&models.Webhook{},
		&models.WebhookDelivery{},
	}
}

// Open connects once to the database described by cfg.
func Open(cfg Config) (*gorm.DB, error) {
	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}
	return gorm.Open(dialector, &gorm.Config{})
}

func SetupDatabase() {
	cfg := ConfigFromEnv()
	if _, err := cfg.dialector(); err != nil {
		panic(err)
	}

	var err error
	for i := 0; i < maxRetries; i++ {
		DB, err = Open(cfg)
		if err == nil {
			if env.GetEnvBool("DB_AUTO_MIGRATE", env.IsDev()) {
				if err := DB.AutoMigrate(Models()...); err != nil {
					log.Printf("AutoMigrate failed: %v", err)
				}
			}
			return
		}

		log.Printf("Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Printf("Retry in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		panic(err)
	}
}

func GetDB() *gorm.DB {
	return DB
}
