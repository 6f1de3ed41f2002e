package refio

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dguimard/easy-batch/pkg/batch"
)

type widgetRow struct {
	Name  string
	Count int
}

func widgetArgs(w widgetRow) []interface{} {
	return []interface{}{w.Name, w.Count}
}

func TestMySQLWriterCommitsBatchInOneTransaction(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO widgets")
	prep.ExpectExec().WithArgs("a", 1).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("b", 2).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	w := NewMySQLWriter[widgetRow]("unused-dsn", "INSERT INTO widgets (name, count) VALUES (?, ?)", widgetArgs)
	w.db = mockDB

	b := batch.NewBatch([]batch.Record[widgetRow]{
		{Payload: widgetRow{Name: "a", Count: 1}},
		{Payload: widgetRow{Name: "b", Count: 2}},
	})
	require.NoError(t, w.WriteRecords(context.Background(), b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLWriterRollsBackWholeBatchOnError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO widgets")
	prep.ExpectExec().WithArgs("a", 1).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("b", 2).WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	w := NewMySQLWriter[widgetRow]("unused-dsn", "INSERT INTO widgets (name, count) VALUES (?, ?)", widgetArgs)
	w.db = mockDB

	b := batch.NewBatch([]batch.Record[widgetRow]{
		{Payload: widgetRow{Name: "a", Count: 1}},
		{Payload: widgetRow{Name: "b", Count: 2}},
	})
	err = w.WriteRecords(context.Background(), b)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
