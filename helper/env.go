package helper

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads variables from the given .env files without overriding existing ones.
// Missing default files are ignored, explicitly named files must exist.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		return godotenv.Load()
	}
	return godotenv.Load(paths...)
}

func GetEnvString(key string, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func GetEnvInt(key string, fallback int) (int, error) {
	v := GetEnvString(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, NewError("parse "+key, err)
	}
	return n, nil
}

func GetEnvBool(key string, fallback bool) (bool, error) {
	v := GetEnvString(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, NewError("parse "+key, err)
	}
	return b, nil
}

// GetEnvDuration accepts Go durations ("15s") and plain seconds ("15").
func GetEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := GetEnvString(key, "")
	if v == "" {
		return fallback, nil
	}
	if sec, err := strconv.Atoi(v); err == nil {
		return time.Duration(sec) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, NewError("parse "+key, err)
	}
	return d, nil
}
