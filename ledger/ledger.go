// Package ledger records k-fold runs in a SQLite database: the configuration
// of every run, per-fold and per-epoch metrics and the selected fold. Model
// weights are not stored.
package ledger

import "database/sql"
import "encoding/json"
import "math"
import "sort"
import "time"

import "github.com/google/uuid"
import "github.com/pkg/errors"
import _ "modernc.org/sqlite"

import "github.com/neurlang/recognizer/trainer"

var schema = []string{`CREATE TABLE IF NOT EXISTS runs(
	id TEXT PRIMARY KEY,
	started INTEGER NOT NULL,
	config TEXT NOT NULL
)`, `CREATE TABLE IF NOT EXISTS folds(
	run_id TEXT NOT NULL REFERENCES runs(id),
	fold INTEGER NOT NULL,
	model TEXT NOT NULL,
	model_id TEXT NOT NULL,
	best_epoch INTEGER NOT NULL,
	edit_distance REAL,
	epochs INTEGER NOT NULL,
	PRIMARY KEY(run_id, fold)
)`, `CREATE TABLE IF NOT EXISTS epochs(
	run_id TEXT NOT NULL,
	fold INTEGER NOT NULL,
	epoch INTEGER NOT NULL,
	metric TEXT NOT NULL,
	value REAL,
	PRIMARY KEY(run_id, fold, epoch, metric)
)`, `CREATE TABLE IF NOT EXISTS selections(
	run_id TEXT PRIMARY KEY REFERENCES runs(id),
	fold INTEGER NOT NULL,
	loss REAL NOT NULL
)`}

// Ledger is an open run database.
type Ledger struct {
	db *sql.DB
}

// Fold is one recorded fold.
type Fold struct {
	Fold         int
	Model        string
	ModelID      string
	BestEpoch    int
	EditDistance float64 // NaN when unknown
	Epochs       int
	History      trainer.History
}

// Open opens or creates the database at path.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	for _, stmt := range schema {
		if _, err = db.Exec(stmt); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "create schema in %s", path)
		}
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// BeginRun stores config as JSON and returns the new run id.
func (l *Ledger) BeginRun(config interface{}) (uuid.UUID, error) {
	buf, err := json.Marshal(config)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "encode run config")
	}
	id := uuid.New()
	_, err = l.db.Exec("INSERT INTO runs(id, started, config) VALUES(?,?,?)", id.String(), time.Now().Unix(), string(buf))
	return id, errors.Wrap(err, "insert run")
}

// Config decodes the configuration of run into v.
func (l *Ledger) Config(run uuid.UUID, v interface{}) error {
	var buf string
	if err := l.db.QueryRow("SELECT config FROM runs WHERE id = ?", run.String()).Scan(&buf); err != nil {
		return errors.Wrapf(err, "run %s", run)
	}
	return json.Unmarshal([]byte(buf), v)
}

// RecordFold stores the outcome of fold (zero based) with its epoch history.
func (l *Ledger) RecordFold(run uuid.UUID, fold int, a trainer.Artifacts) error {
	tx, err := l.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var name, modelID string
	if a.Model != nil {
		name, modelID = a.Model.Name(), a.Model.ID().String()
	}
	var edist sql.NullFloat64
	if v, ok := a.EditDistance[a.BestEpoch]; ok && v == v {
		edist = sql.NullFloat64{Float64: v, Valid: true}
	}
	_, err = tx.Exec("INSERT INTO folds(run_id, fold, model, model_id, best_epoch, edit_distance, epochs) VALUES(?,?,?,?,?,?,?)",
		run.String(), fold, name, modelID, a.BestEpoch, edist, a.History.Epochs())
	if err != nil {
		return errors.Wrapf(err, "insert fold %d", fold)
	}
	for metric, values := range a.History {
		for epoch, v := range values {
			var value sql.NullFloat64
			if v == v {
				value = sql.NullFloat64{Float64: v, Valid: true}
			}
			_, err = tx.Exec("INSERT INTO epochs(run_id, fold, epoch, metric, value) VALUES(?,?,?,?,?)",
				run.String(), fold, epoch, metric, value)
			if err != nil {
				return errors.Wrapf(err, "insert fold %d epoch %d %s", fold, epoch, metric)
			}
		}
	}
	return tx.Commit()
}

// RecordSelection stores the fold chosen for run.
func (l *Ledger) RecordSelection(run uuid.UUID, r trainer.Result) error {
	_, err := l.db.Exec("INSERT OR REPLACE INTO selections(run_id, fold, loss) VALUES(?,?,?)", run.String(), r.Fold, r.Loss)
	return errors.Wrap(err, "insert selection")
}

// Selection reports the fold chosen for run and its loss.
func (l *Ledger) Selection(run uuid.UUID) (fold int, loss float64, err error) {
	err = l.db.QueryRow("SELECT fold, loss FROM selections WHERE run_id = ?", run.String()).Scan(&fold, &loss)
	return fold, loss, errors.Wrapf(err, "selection of run %s", run)
}

// Folds lists the recorded folds of run in order.
func (l *Ledger) Folds(run uuid.UUID) ([]Fold, error) {
	rows, err := l.db.Query("SELECT fold, model, model_id, best_epoch, edit_distance, epochs FROM folds WHERE run_id = ? ORDER BY fold",
		run.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var o []Fold
	for rows.Next() {
		var f Fold
		var edist sql.NullFloat64
		if err := rows.Scan(&f.Fold, &f.Model, &f.ModelID, &f.BestEpoch, &edist, &f.Epochs); err != nil {
			return nil, err
		}
		f.EditDistance = nan
		if edist.Valid {
			f.EditDistance = edist.Float64
		}
		o = append(o, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range o {
		if o[i].History, err = l.history(run, o[i].Fold); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (l *Ledger) history(run uuid.UUID, fold int) (trainer.History, error) {
	rows, err := l.db.Query("SELECT epoch, metric, value FROM epochs WHERE run_id = ? AND fold = ?", run.String(), fold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	type entry struct {
		epoch int
		value float64
	}
	var entries = make(map[string][]entry)
	for rows.Next() {
		var e entry
		var metric string
		var value sql.NullFloat64
		if err := rows.Scan(&e.epoch, &metric, &value); err != nil {
			return nil, err
		}
		e.value = nan
		if value.Valid {
			e.value = value.Float64
		}
		entries[metric] = append(entries[metric], e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var h = make(trainer.History)
	for metric, es := range entries {
		sort.Slice(es, func(i, j int) bool { return es[i].epoch < es[j].epoch })
		for _, e := range es {
			h[metric] = append(h[metric], e.value)
		}
	}
	return h, nil
}

var nan = math.NaN()
