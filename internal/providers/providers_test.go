package providers

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindNearbyScansProviders(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	finder := NewPostgresFinderWithQuerier(mock)

	mock.ExpectQuery("SELECT id, name, phone").
		WithArgs(19.2183, 72.9781, 10.0, "plumbing").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "phone", "email", "service_type", "lat", "lng", "push_token", "active",
		}).AddRow(
			"p1", "Thane Plumbing Works", "9812345678", "tp@example.in", "plumbing", 19.21, 72.97, "tok-1", true,
		))

	got, err := finder.FindNearby(context.Background(), 19.2183, 72.9781, 10.0, "plumbing")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Thane Plumbing Works", got[0].Name)
	assert.Equal(t, "tok-1", got[0].PushToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindNearbyEmptyResult(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	finder := NewPostgresFinderWithQuerier(mock)

	mock.ExpectQuery("SELECT id, name, phone").
		WithArgs(19.0, 72.8, 5.0, "").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "phone", "email", "service_type", "lat", "lng", "push_token", "active",
		}))

	got, err := finder.FindNearby(context.Background(), 19.0, 72.8, 5.0, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
