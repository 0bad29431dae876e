package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"site-panel/internal/config"
	"site-panel/internal/models"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestOpen_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("panel"),
		postgres.WithUsername("panel"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	database, err := Open(config.Database{
		Driver:   "postgres",
		Host:     host,
		Port:     port.Port(),
		User:     "panel",
		Password: "password",
		Name:     "panel",
		SSLMode:  "disable",
	}, zap.NewNop().Sugar())
	require.NoError(t, err)

	require.NoError(t, database.Create(&models.User{Email: "a@b.c", PasswordHash: "x"}).Error)

	err = database.Create(&models.User{Email: "a@b.c", PasswordHash: "y"}).Error
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}
