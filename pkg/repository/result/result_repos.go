//nolint:whitespace //can't make both the linter and editor happy :(
package result

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/mlutzke/raceday/pkg/model"
	"github.com/mlutzke/raceday/pkg/repository"
)

func Create(ctx context.Context, conn repository.Querier, race *model.DbRace) error {
	_, err := conn.Exec(ctx,
		"insert into race (id, track_name, recorded, data) values ($1,$2,$3,$4)",
		race.ID, race.TrackName, race.Recorded, race.Results)
	if err != nil {
		return err
	}
	return nil
}

// deletes an entry from the database, returns number of rows deleted.
func DeleteByID(ctx context.Context, conn repository.Querier, id uuid.UUID) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from race where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func LoadByID(
	ctx context.Context,
	conn repository.Querier,
	id uuid.UUID,
) (*model.DbRace, error) {
	row := conn.QueryRow(ctx,
		fmt.Sprintf("%s where id=$1", selector), id)
	var item model.DbRace
	if err := scan(&item, row); err != nil {
		return nil, err
	}
	return &item, nil
}

// LoadLatest returns the most recent races for a track, newest first.
func LoadLatest(
	ctx context.Context,
	conn repository.Querier,
	trackName string,
	limit int,
) ([]*model.DbRace, error) {
	rows, err := conn.Query(ctx,
		fmt.Sprintf("%s where track_name=$1 order by recorded desc limit $2", selector),
		trackName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.DbRace, 0)
	for rows.Next() {
		var item model.DbRace
		if err := scan(&item, rows); err != nil {
			return nil, err
		}
		ret = append(ret, &item)
	}
	return ret, rows.Err()
}

// little helper
const selector = string(`select id,track_name,recorded,data from race`)

func scan(e *model.DbRace, row pgx.Row) error {
	return row.Scan(&e.ID, &e.TrackName, &e.Recorded, &e.Results)
}
