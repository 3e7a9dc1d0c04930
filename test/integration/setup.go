package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vncsmyrnk/salesvote/internal/adapters/dataset"
	handler "github.com/vncsmyrnk/salesvote/internal/adapters/handler/http"
	repo "github.com/vncsmyrnk/salesvote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
	"github.com/vncsmyrnk/salesvote/internal/core/services"
)

const testDataset = "SUPPLIER,WAREHOUSE SALES,RETAIL SALES\nAcme,10,5\nAcme,5,5\nBeta,1,1\n"

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		_, err = db.Exec(string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Documents   ports.DocumentStore
	SummarySvc  ports.SummaryService
	DBContainer testcontainers.Container
}

// MockVerifier accepts the credential "valid_token" for email.
type MockVerifier struct {
	email string
}

func (v *MockVerifier) Verify(ctx context.Context, token string, clientID string) (*ports.TokenPayload, error) {
	if token == "valid_token" {
		return &ports.TokenPayload{Email: v.email}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func setupTestApp(t *testing.T) *TestApp {
	ctx := context.Background()
	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := repo.Open(dbURL)
	require.NoError(t, err)

	err = applyMigrations(db)
	require.NoError(t, err)

	datasetPath := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(datasetPath, []byte(testDataset), 0o644))

	userRepo := repo.NewUserRepository(db)
	documents := repo.NewDocumentStore(db)
	resultRepo := repo.NewResultRepository(db)

	authSvc := services.NewAuthService(userRepo, &MockVerifier{email: "test@example.com"}, "test-secret", "client-id", nil)
	ledger := services.NewVoteLedger(documents, nil, nil)
	summarySvc := services.NewSummaryService(resultRepo, nil)
	salesSvc := services.NewSalesService(dataset.NewLoader(datasetPath, nil), nil)
	require.NoError(t, salesSvc.Reload(ctx))

	router := handler.NewHandler(
		authSvc,
		handler.NewAuthHandler(authSvc, "", 0),
		handler.NewUserHandler(services.NewUserService(userRepo)),
		handler.NewVoteHandler(ledger, summarySvc),
		handler.NewSalesHandler(salesSvc),
		[]string{"*"},
	)

	server := httptest.NewServer(router)

	return &TestApp{
		DB:          db,
		Server:      server,
		Documents:   documents,
		SummarySvc:  summarySvc,
		DBContainer: dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}
