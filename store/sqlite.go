package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"
	"github.com/qubera-team/qubera-client/core"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

const schemaSQL = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	device_id TEXT NOT NULL,
	program TEXT NOT NULL,
	shots INTEGER NOT NULL,
	disable_rewiring INTEGER NOT NULL,
	status TEXT NOT NULL,
	task_type TEXT NOT NULL,
	client_token TEXT NOT NULL,
	tags TEXT NOT NULL,
	result TEXT NOT NULL,
	created_at TEXT NOT NULL,
	ended_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
`

const upsertSQL = `
INSERT INTO tasks
	(id, device_id, program, shots, disable_rewiring, status, task_type,
	 client_token, tags, result, created_at, ended_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	device_id = excluded.device_id,
	program = excluded.program,
	shots = excluded.shots,
	disable_rewiring = excluded.disable_rewiring,
	status = excluded.status,
	task_type = excluded.task_type,
	client_token = excluded.client_token,
	tags = excluded.tags,
	result = excluded.result,
	created_at = excluded.created_at,
	ended_at = excluded.ended_at
`

const selectColumns = `id, device_id, program, shots, disable_rewiring, status,
	task_type, client_token, tags, result, created_at, ended_at`

// SqliteStore persists task handles between CLI invocations. Tasks received
// over the store channel are upserted because the first write arrives only
// after submission assigns the service-side ID.
type SqliteStore struct {
	db        *sql.DB
	storeChan <-chan core.Task
}

func (s *SqliteStore) Setup(sc core.StoreChan, c *core.Conf) error {
	if c.StorePath == "" {
		return fmt.Errorf("store path is not set")
	}
	db, err := sql.Open("sqlite3", c.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open the store at %s/reason:%s", c.StorePath, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to the store at %s/reason:%s", c.StorePath, err)
	}
	// sqlite allows a single writer, so keep one connection to avoid
	// SQLITE_BUSY under the store channel goroutine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return fmt.Errorf("failed to execute %q/reason:%s", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("failed to apply the task schema/reason:%s", err)
	}
	s.db = db
	s.storeChan = sc
	go func() {
		for {
			task := <-s.storeChan
			if task == nil { //when storeChan is closed
				return
			}
			zap.L().Debug(fmt.Sprintf("[SqliteStore] Received %s", task.TaskData().ID))
			if err := s.Update(task); err != nil {
				zap.L().Error(fmt.Sprintf("failed to update a task(%s). Reason:%s",
					task.TaskData().ID, err.Error()))
			}
		}
	}()
	return nil
}

func (s *SqliteStore) Insert(t core.Task) error {
	return s.upsert(t.TaskData())
}

func (s *SqliteStore) Get(taskID string) (core.Task, error) {
	row := s.db.QueryRow("SELECT "+selectColumns+" FROM tasks WHERE id = ?", taskID)
	td, err := scanTaskData(row)
	if err == sql.ErrNoRows {
		err = fmt.Errorf("not found %s", taskID)
		zap.L().Info("[SqliteStore]", zap.Field(zap.Error(err)))
		return nil, err
	}
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read a task(%s). Reason:%s", taskID, err.Error()))
		return nil, err
	}
	return newTask(td)
}

func (s *SqliteStore) Update(t core.Task) error {
	return s.upsert(t.TaskData())
}

func (s *SqliteStore) Delete(taskID string) error {
	res, err := s.db.Exec("DELETE FROM tasks WHERE id = ?", taskID)
	if err != nil {
		return fmt.Errorf("failed to delete a task(%s). Reason:%s", taskID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		err := fmt.Errorf("failed to find %s", taskID)
		zap.L().Info("[SqliteStore]", zap.Field(zap.Error(err)))
		return err
	}
	zap.L().Info(fmt.Sprintf("[SqliteStore] deleted %s from store", taskID))
	return nil
}

func (s *SqliteStore) Pending() ([]core.Task, error) {
	rows, err := s.db.Query("SELECT " + selectColumns +
		" FROM tasks WHERE status NOT IN ('completed', 'failed', 'cancelled')" +
		" ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tasks. Reason:%s", err)
	}
	defer rows.Close()
	pending := []core.Task{}
	for rows.Next() {
		td, err := scanTaskData(rows)
		if err != nil {
			return nil, err
		}
		task, err := newTask(td)
		if err != nil {
			return nil, err
		}
		pending = append(pending, task)
	}
	return pending, rows.Err()
}

func (s *SqliteStore) TearDown() {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to close the store. Reason:%s", err))
	}
}

func (s *SqliteStore) upsert(td *core.TaskData) error {
	tags, err := jsonIter.MarshalToString(td.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal the tags of a task(%s). Reason:%s", td.ID, err)
	}
	result, err := jsonIter.MarshalToString(td.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal the result of a task(%s). Reason:%s", td.ID, err)
	}
	var ended sql.NullString
	if !time.Time(td.Ended).IsZero() {
		ended = sql.NullString{String: td.Ended.String(), Valid: true}
	}
	_, err = s.db.Exec(upsertSQL,
		td.ID, td.DeviceID, td.Program, td.Shots, td.DisableRewiring,
		td.Status.String(), td.TaskType, td.ClientToken, tags, result,
		td.Created.String(), ended)
	if err != nil {
		return fmt.Errorf("failed to write a task(%s). Reason:%s", td.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaskData(row rowScanner) (*core.TaskData, error) {
	td := core.NewTaskData()
	var (
		status  string
		tags    string
		result  string
		created string
		ended   sql.NullString
	)
	err := row.Scan(&td.ID, &td.DeviceID, &td.Program, &td.Shots, &td.DisableRewiring,
		&status, &td.TaskType, &td.ClientToken, &tags, &result, &created, &ended)
	if err != nil {
		return nil, err
	}
	td.Status, err = core.ToStatus(status)
	if err != nil {
		return nil, err
	}
	if err := jsonIter.UnmarshalFromString(tags, &td.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the tags of a task(%s). Reason:%s", td.ID, err)
	}
	if err := jsonIter.UnmarshalFromString(result, td.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the result of a task(%s). Reason:%s", td.ID, err)
	}
	td.Created, err = parseDateTime(created)
	if err != nil {
		return nil, err
	}
	if ended.Valid {
		td.Ended, err = parseDateTime(ended.String)
		if err != nil {
			return nil, err
		}
	}
	return td, nil
}

func parseDateTime(s string) (strfmt.DateTime, error) {
	dt, err := strfmt.ParseDateTime(s)
	if err != nil {
		return strfmt.DateTime{}, fmt.Errorf("failed to parse a timestamp %q. Reason:%s", s, err)
	}
	return dt, nil
}

// newTask rebuilds a typed task around the stored data so callers can keep
// refreshing it through the registered task types.
func newTask(td *core.TaskData) (core.Task, error) {
	tc, err := core.NewTaskContext()
	if err != nil {
		return nil, err
	}
	return core.GetTaskManager().NewTaskFromTaskData(td, tc)
}
