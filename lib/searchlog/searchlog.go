package searchlog

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

const Schema = `
create table if not exists search_log (
	id integer primary key autoincrement,
	time integer not null,
	origin text not null,
	ceiling integer not null,
	result_count integer not null,
	duration_ms integer not null
);
create index if not exists idx_search_log_time on search_log (time);
`

// Store is an append-only audit log of selection runs. A zero-value
// (nil db) store is a no-op, logging is optional.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

type Entry struct {
	Time        time.Time
	Origin      string
	Ceiling     int
	ResultCount int
	Duration    time.Duration
}

func (s Store) Append(ctx context.Context, e Entry) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(
		ctx,
		`insert into search_log (time, origin, ceiling, result_count, duration_ms)
		 values (?, ?, ?, ?, ?)`,
		e.Time.Unix(),
		e.Origin,
		e.Ceiling,
		e.ResultCount,
		e.Duration.Milliseconds(),
	)
	return err
}

func (s Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	if s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(
		ctx,
		`select time, origin, ceiling, result_count, duration_ms
		 from search_log order by time desc, id desc limit ?`,
		n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var unix int64
		var durationMs int64
		err := rows.Scan(&unix, &e.Origin, &e.Ceiling, &e.ResultCount, &durationMs)
		if err != nil {
			return nil, err
		}
		e.Time = time.Unix(unix, 0)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}
