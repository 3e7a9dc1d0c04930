package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"

	"github.com/vncsmyrnk/salesvote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/salesvote/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("a migration name is required.")
	}
	migrationName := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.StoreDriver != config.DriverPostgres {
		log.Fatalf("migrations only apply to the %s store driver, got %q", config.DriverPostgres, cfg.StoreDriver)
	}

	p := cfg.Postgres
	db, err := postgres.Open(postgres.ConnString(p.Host, p.Port, p.User, p.Password, p.DB))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	basePath := filepath.Join(".", "internal", "adapters", "repository", "postgres", "migrations")
	fileContent, err := migrationFileContent(basePath, migrationName)
	if err != nil {
		log.Fatal(err)
	}

	_, err = db.Exec(string(fileContent))
	if err != nil {
		log.Fatalf("Failed to execute SQL file: %v", err)
	}

	fmt.Println("Migration file executed successfully.")
}

func migrationFileContent(basePath string, migrationName string) ([]byte, error) {
	filePath, err := migrationFilePath(basePath, migrationName)
	if err != nil {
		return nil, err
	}

	return os.ReadFile(filepath.Join(basePath, filePath))
}

// migrationFilePath finds the file whose name ends in "<migrationName>.sql",
// for example "init.up" matches 000001_init.up.sql.
func migrationFilePath(basePath string, migrationName string) (string, error) {
	regex, err := regexp.Compile(fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(migrationName)))
	if err != nil {
		return "", fmt.Errorf("invalid pattern: %w", err)
	}

	files, err := os.ReadDir(basePath)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if regex.MatchString(f.Name()) {
			return f.Name(), nil
		}
	}

	return "", fmt.Errorf("migration file not found")
}
