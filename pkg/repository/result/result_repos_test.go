//nolint:dupl,funlen,errcheck //ok for this test code
package result

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gotest.tools/v3/assert"

	"github.com/mlutzke/raceday/pkg/model"
	"github.com/mlutzke/raceday/testsupport/basedata"
	"github.com/mlutzke/raceday/testsupport/testdb"
)

func sampleRace(recorded time.Time) *model.DbRace {
	return &model.DbRace{
		ID:        uuid.Must(uuid.NewV4()),
		TrackName: "testtrack",
		Recorded:  recorded,
		Results:   basedata.SampleResults(),
	}
}

func createSampleEntry(t *testing.T, pool *pgxpool.Pool, race *model.DbRace) {
	t.Helper()
	err := pgx.BeginFunc(
		context.Background(),
		pool,
		func(tx pgx.Tx) error {
			return Create(context.Background(), tx, race)
		})
	assert.NilError(t, err)
}

func TestCreate(t *testing.T) {
	pool := testdb.InitTestDb()
	sample := sampleRace(basedata.TestTime())
	createSampleEntry(t, pool, sample)

	// duplicate id must fail
	err := pgx.BeginFunc(
		context.Background(),
		pool,
		func(tx pgx.Tx) error {
			return Create(context.Background(), tx, sample)
		})
	assert.Assert(t, err != nil)
}

func TestLoadByID(t *testing.T) {
	pool := testdb.InitTestDb()
	sample := sampleRace(basedata.TestTime())
	createSampleEntry(t, pool, sample)

	var got *model.DbRace
	err := pgx.BeginFunc(
		context.Background(),
		pool,
		func(tx pgx.Tx) error {
			var err error
			got, err = LoadByID(context.Background(), tx, sample.ID)
			return err
		})
	assert.NilError(t, err)
	assert.Equal(t, got.TrackName, sample.TrackName)
	assert.Equal(t, len(got.Results), 3)
	assert.Equal(t, got.Results[0].CarName, "Red Comet")
	assert.Equal(t, got.Results[0].FinalPosition, 1)
}

func TestLoadLatest(t *testing.T) {
	pool := testdb.InitTestDb()
	base := basedata.TestTime()
	oldest := sampleRace(base.Add(-2 * time.Hour))
	middle := sampleRace(base.Add(-1 * time.Hour))
	newest := sampleRace(base)
	createSampleEntry(t, pool, oldest)
	createSampleEntry(t, pool, newest)
	createSampleEntry(t, pool, middle)

	var got []*model.DbRace
	err := pgx.BeginFunc(
		context.Background(),
		pool,
		func(tx pgx.Tx) error {
			var err error
			got, err = LoadLatest(context.Background(), tx, "testtrack", 2)
			return err
		})
	assert.NilError(t, err)
	assert.Equal(t, len(got), 2)
	assert.Equal(t, got[0].ID, newest.ID)
	assert.Equal(t, got[1].ID, middle.ID)

	// unknown track yields empty result
	err = pgx.BeginFunc(
		context.Background(),
		pool,
		func(tx pgx.Tx) error {
			var err error
			got, err = LoadLatest(context.Background(), tx, "unknown", 10)
			return err
		})
	assert.NilError(t, err)
	assert.Equal(t, len(got), 0)
}

func TestDeleteByID(t *testing.T) {
	pool := testdb.InitTestDb()
	sample := sampleRace(basedata.TestTime())
	createSampleEntry(t, pool, sample)

	var num int
	err := pgx.BeginFunc(
		context.Background(),
		pool,
		func(tx pgx.Tx) error {
			var err error
			num, err = DeleteByID(context.Background(), tx, sample.ID)
			return err
		})
	assert.NilError(t, err)
	assert.Equal(t, num, 1)
}
