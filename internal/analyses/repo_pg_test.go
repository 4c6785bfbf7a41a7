package analyses

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"tire-backend/internal/tires"
)

var pgColumns = []string{"id", "owner_id", "image_url", "attributes", "result", "created_at"}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	analysis := Analysis{
		ID:         "3f1c3c1e-0000-4000-8000-000000000001",
		OwnerID:    "user:u1",
		ImageURL:   "store://abc/photo.jpg",
		Attributes: tires.Attributes{TireType: tires.TypeWinter, Brand: "Lassa"},
		Result:     tires.AnalysisResult{SafetyScore: 64, Degraded: true},
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO tire_analyses").
		WithArgs(
			analysis.ID,
			analysis.OwnerID,
			analysis.ImageURL,
			sqlmock.AnyArg(), // attributes
			sqlmock.AnyArg(), // result
			64,
			true,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), analysis); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM tire_analyses WHERE id").
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows(pgColumns).AddRow(
			"a1", "user:u1", "store://k", []byte(`{"tireType":"winter","brand":"Lassa"}`),
			[]byte(`{"safetyScore":72,"problems":[]}`), created,
		))

	got, err := repo.GetByID(context.Background(), "a1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Attributes.Brand != "Lassa" || got.Result.SafetyScore != 72 || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected analysis %+v", got)
	}

	mock.ExpectQuery("FROM tire_analyses WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByOwner(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery("FROM tire_analyses").
		WithArgs("guest:g", 20, 0).
		WillReturnRows(sqlmock.NewRows(pgColumns).
			AddRow("b", "guest:g", "store://b", []byte(`{}`), []byte(`{"safetyScore":50}`), now).
			AddRow("a", "guest:g", "store://a", []byte(`{}`), []byte(`{"safetyScore":90}`), now.Add(-time.Hour)))

	got, err := repo.ListByOwner(context.Background(), "guest:g", 0, -1)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].Result.SafetyScore != 90 {
		t.Fatalf("unexpected rows %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoRejectsCorruptResult(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM tire_analyses WHERE id").
		WithArgs("bad").
		WillReturnRows(sqlmock.NewRows(pgColumns).AddRow("bad", "u", "", []byte(`{}`), []byte(`{not json`), time.Now()))

	if _, err := repo.GetByID(context.Background(), "bad"); err == nil {
		t.Fatalf("expected decode error")
	}
}
