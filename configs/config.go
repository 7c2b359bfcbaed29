package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost          string
	DBPort          int
	DBUser          string
	DBPassword      string
	DBName          string
	DBNameTest      string
	HTTPPort        int
	JWTSecret       string
	TokenTTLMinutes int
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		// Stay quiet during tests
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	dbPort, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		dbPort = 5432
	}

	httpPort, err := strconv.Atoi(os.Getenv("HTTP_PORT"))
	if err != nil {
		httpPort = 3004
	}

	tokenTTL, err := strconv.Atoi(os.Getenv("TOKEN_TTL_MINUTES"))
	if err != nil {
		tokenTTL = 30
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "secret"
	}

	return Config{
		DBHost:          os.Getenv("DB_HOST"),
		DBPort:          dbPort,
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          os.Getenv("DB_NAME"),
		DBNameTest:      os.Getenv("DB_NAME_TEST"),
		HTTPPort:        httpPort,
		JWTSecret:       secret,
		TokenTTLMinutes: tokenTTL,
	}
}
