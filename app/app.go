package app

import (
	"Gin_postgres_library_management/db"
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Config Config
}

// Config 从环境变量读取
type Config struct {
	RedisAddr string
	RedisPwd  string
	WebOrigin string

	JWTSecret string
	TokenTTL  time.Duration

	// loan policy, handed to the repo at construction time
	FinePerDay        decimal.Decimal
	LoanDays          int
	MaxActiveLoans    int // 0 = unbounded
	GraceDays         int
	RequireClearFines bool

	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// Policy shapes the config for the repo layer.
func (c Config) Policy() db.Policy {
	return db.Policy{
		FinePerDay:        c.FinePerDay,
		LoanDays:          c.LoanDays,
		MaxActiveLoans:    c.MaxActiveLoans,
		GraceDays:         c.GraceDays,
		RequireClearFines: c.RequireClearFines,
	}
}

func MustNew() *App {
	cfg := loadConfig()

	// --- DB: Postgres ---
	dbConn := db.ConnectDB()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	a := &App{
		Router: r, DB: dbConn, RDB: rdb, Config: cfg,
	}
	return a
}

func (a *App) Close() { _ = a.RDB.Close() }

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}
	getInt := func(k string, def int) int {
		if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
			return n
		}
		return def
	}

	ttl := 24 * time.Hour
	if sec, err := strconv.Atoi(get("JWT_TTL_SECONDS", "86400")); err == nil && sec > 0 {
		ttl = time.Duration(sec) * time.Second
	}

	finePerDay := decimal.NewFromFloat(0.50)
	if d, err := decimal.NewFromString(get("FINE_PER_DAY", "0.50")); err == nil && !d.IsNegative() {
		finePerDay = d
	}

	return Config{
		RedisAddr: get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:  os.Getenv("REDIS_PASSWORD"),
		WebOrigin: get("WEB_ORIGIN", "http://localhost:3000"),

		JWTSecret: get("JWT_SECRET", "dev-secret-change-in-production"),
		TokenTTL:  ttl,

		FinePerDay:        finePerDay,
		LoanDays:          getInt("LOAN_DURATION_DAYS", 14),
		MaxActiveLoans:    getInt("MAX_BOOKS_PER_USER", 0),
		GraceDays:         getInt("GRACE_PERIOD_DAYS", 0),
		RequireClearFines: get("REQUIRE_CLEAR_FINES", "false") == "true",

		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
	}
}
