package logger

import (
	"os"
)

func isEmpty(data string) bool {
	return len(data) == 0
}

func isValidLevel(level string) bool {
	_, exists := levels[level]
	return exists
}

func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if isEmpty(value) {
		return defaultValue
	}
	return value
}
