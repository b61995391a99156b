package utilities

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type JsonConfigObj[T any] interface {
	ConvertToDomain() T
}

func ReadConfig[T JsonConfigObj[U], U any](file string) (U, error) {
	var empty U

	fileContent, err := os.ReadFile(file)
	if err != nil {
		return empty, err
	}

	var config T
	err = json.Unmarshal(fileContent, &config)
	if err != nil {
		return empty, err
	}

	return config.ConvertToDomain(), nil
}

func ConvertJsonArrayToDomain[T JsonConfigObj[U], U any](jsonArray []T) []U {
	domainArray := make([]U, 0, len(jsonArray))
	for _, item := range jsonArray {
		domainArray = append(domainArray, item.ConvertToDomain())
	}
	return domainArray
}

// LoadEnvFiles loads .env style files into the process environment. Variables that are
// already set win, and missing files are skipped.
func LoadEnvFiles(files ...string) error {
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// EnvOrDefault returns the trimmed value of key, or fallback when it is unset or blank.
func EnvOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
