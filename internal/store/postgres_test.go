package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-raz/Safe-Tourism/internal/predict"
)

func sampleResult() *predict.Result {
	return &predict.Result{
		RiskLabel:  "HIGH",
		RiskScore:  0.87,
		Confidence: 0.87,
		Probabilities: map[string]float64{
			"HIGH": 0.87, "MEDIUM": 0.09, "LOW": 0.04,
		},
		AlertNeeded:  true,
		Explanations: []string{"Military zones within 1km: 1 (Security risk)"},
		Location:     predict.Location{Lat: 26.1445, Lon: 91.7362},
	}
}

func TestRecordPrediction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO predictions").
		WithArgs(pgxmock.AnyArg(), 26.1445, 91.7362, "HIGH", 0.87, true, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s := NewPostgresWithPool(mock)
	rec, err := s.RecordPrediction(context.Background(), sampleResult())
	require.NoError(t, err)

	_, err = uuid.Parse(rec.ID)
	assert.NoError(t, err)
	assert.Equal(t, "HIGH", rec.RiskLabel)
	assert.Equal(t, 26.1445, rec.Lat)
	assert.True(t, rec.AlertNeeded)
	assert.WithinDuration(t, time.Now().UTC(), rec.CreatedAt, time.Minute)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPrediction_NilResult(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewPostgresWithPool(mock).RecordPrediction(context.Background(), nil)
	require.Error(t, err)
}

func TestRecordPrediction_InsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO predictions").
		WithArgs(pgxmock.AnyArg(), 26.1445, 91.7362, "HIGH", 0.87, true, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(eris.New("connection reset"))

	_, err = NewPostgresWithPool(mock).RecordPrediction(context.Background(), sampleResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert prediction")
}

func TestGetPrediction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	result := sampleResult()
	resultJSON, err := json.Marshal(result)
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM predictions WHERE id").
		WithArgs("abc-123").
		WillReturnRows(mock.NewRows([]string{"id", "lat", "lon", "risk_label", "risk_score", "alert_needed", "result", "created_at"}).
			AddRow("abc-123", 26.1445, 91.7362, "HIGH", 0.87, true, string(resultJSON), now))

	rec, err := NewPostgresWithPool(mock).GetPrediction(context.Background(), "abc-123")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", rec.ID)
	require.NotNil(t, rec.Result)
	assert.Equal(t, result.Probabilities, rec.Result.Probabilities)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPrediction_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM predictions WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgresWithPool(mock).GetPrediction(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestListRecent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	resultJSON, err := json.Marshal(sampleResult())
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM predictions ORDER BY created_at DESC").
		WithArgs(10).
		WillReturnRows(mock.NewRows([]string{"id", "lat", "lon", "risk_label", "risk_score", "alert_needed", "result", "created_at"}).
			AddRow("a", 26.1, 91.7, "HIGH", 0.9, true, string(resultJSON), now).
			AddRow("b", 26.2, 91.8, "LOW", 0.1, false, string(resultJSON), now.Add(-time.Hour)))

	records, err := NewPostgresWithPool(mock).ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "LOW", records[1].RiskLabel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecent_DefaultLimit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM predictions ORDER BY created_at DESC").
		WithArgs(50).
		WillReturnRows(mock.NewRows([]string{"id", "lat", "lon", "risk_label", "risk_score", "alert_needed", "result", "created_at"}))

	records, err := NewPostgresWithPool(mock).ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}
