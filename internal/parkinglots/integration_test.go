//go:build integration

package parkinglots

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/angelmondragon/parkinglot-manager/pkg/db"
	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-manager/pkg/errors"
	"github.com/angelmondragon/parkinglot-manager/pkg/migrate"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
)

func TestPostgresRepository(t *testing.T) {
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("parking"),
		tcpostgres.WithUsername("parking"),
		tcpostgres.WithPassword("parking"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := db.Open(postgres.Open(dsn))
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, migrate.Run(ctx, sqlDB, filepath.Join("..", "..", migrate.DefaultDir), "up"))

	svc, err := NewService(ServiceParams{Repo: NewRepository(conn)})
	require.NoError(t, err)

	lot, err := svc.CreateParkingLot(ctx, LotInput{LotName: "Lot A", Location: "North", Capacity: 10})
	require.NoError(t, err)
	require.Equal(t, enums.LotStatusAvailable, lot.Status)

	_, err = svc.CreateParkingLot(ctx, LotInput{LotName: "Lot A", Location: "South", Capacity: 5})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	updated, err := svc.UpdateOccupancy(ctx, lot.ID, 7)
	require.NoError(t, err)
	require.Equal(t, 3, updated.AvailableSlots())
	require.False(t, updated.UpdatedAt.Before(lot.UpdatedAt.Truncate(time.Microsecond)))

	removed, err := svc.DeleteParkingLot(ctx, lot.ID)
	require.NoError(t, err)
	require.True(t, removed)

	missing, err := svc.UpdateOccupancy(ctx, lot.ID, 1)
	require.NoError(t, err)
	require.Nil(t, missing)
}
