package gymserver

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockRelationStore(t *testing.T) (*PGRelationStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 db,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	assert.NoError(t, err)

	return &PGRelationStore{db: gormDB}, mock
}

func gripRelationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "machine_id", "grip_type_id"})
}

func TestSaveGripRelationsAppendSkipsDuplicates(t *testing.T) {
	store, mock := newMockRelationStore(t)

	relations := []GripRelation{
		{MachineID: "11111111_bench_press", GripTypeID: "22222222_grip_wide"},
		{MachineID: "11111111_bench_press", GripTypeID: "33333333_grip_close"},
	}

	mock.ExpectBegin()
	// the first pair already exists and is skipped without an insert
	mock.ExpectQuery(`SELECT .* FROM "machine_grip_types"`).
		WillReturnRows(gripRelationRows().
			AddRow("existing-id", "11111111_bench_press", "22222222_grip_wide"))
	mock.ExpectQuery(`SELECT .* FROM "machine_grip_types"`).
		WillReturnRows(gripRelationRows())
	mock.ExpectExec(`INSERT INTO "machine_grip_types"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	assert.NoError(t, store.SaveGripRelations(context.Background(), relations, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveGripRelationsReplaceDropsPriorSet(t *testing.T) {
	store, mock := newMockRelationStore(t)

	relations := []GripRelation{
		{MachineID: "11111111_bench_press", GripTypeID: "22222222_grip_wide"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "machine_grip_types"`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(`SELECT .* FROM "machine_grip_types"`).
		WillReturnRows(gripRelationRows())
	mock.ExpectExec(`INSERT INTO "machine_grip_types"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	assert.NoError(t, store.SaveGripRelations(context.Background(), relations, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveGripRelationsRollsBackMidBatch(t *testing.T) {
	store, mock := newMockRelationStore(t)

	relations := []GripRelation{
		{MachineID: "11111111_bench_press", GripTypeID: "22222222_grip_wide"},
		{MachineID: "11111111_bench_press", GripTypeID: "33333333_grip_close"},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "machine_grip_types"`).
		WillReturnRows(gripRelationRows())
	mock.ExpectExec(`INSERT INTO "machine_grip_types"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT .* FROM "machine_grip_types"`).
		WillReturnRows(gripRelationRows())
	mock.ExpectExec(`INSERT INTO "machine_grip_types"`).
		WillReturnError(fmt.Errorf("duplicate key value violates unique constraint"))
	mock.ExpectRollback()

	err := store.SaveGripRelations(context.Background(), relations, true)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWeightRecordOwnership(t *testing.T) {
	store, mock := newMockRelationStore(t)

	mock.ExpectQuery(`SELECT .* FROM "weight_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).
			AddRow("record-1", "someone-else"))

	err := store.DeleteWeightRecord(context.Background(), "record-1", "user-1")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}
