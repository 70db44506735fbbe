package report

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tkusuma/macrovar/internal/pipeline"
	"github.com/tkusuma/macrovar/internal/stattest"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at  TEXT NOT NULL,
	input_path  TEXT NOT NULL,
	path        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS unit_root_tests (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id    INTEGER NOT NULL,
	variable  TEXT NOT NULL,
	sample    TEXT NOT NULL,
	test      TEXT NOT NULL,
	statistic REAL NOT NULL,
	p_value   REAL NOT NULL,
	lags      INTEGER NOT NULL,
	verdict   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(id)
);

CREATE TABLE IF NOT EXISTS bounds_tests (
	run_id    INTEGER PRIMARY KEY,
	dependent TEXT NOT NULL,
	spec      TEXT NOT NULL,
	level     TEXT NOT NULL,
	f_stat    REAL NOT NULL,
	f_lower   REAL NOT NULL,
	f_upper   REAL NOT NULL,
	f_p_value REAL NOT NULL,
	t_stat    REAL NOT NULL,
	t_lower   REAL NOT NULL,
	t_upper   REAL NOT NULL,
	verdict   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(id)
);

CREATE TABLE IF NOT EXISTS diagnostics (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id    INTEGER NOT NULL,
	test      TEXT NOT NULL,
	statistic REAL NOT NULL,
	p_value   REAL NOT NULL,
	lags      INTEGER NOT NULL,
	policy    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(id)
);

CREATE TABLE IF NOT EXISTS causality (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      INTEGER NOT NULL,
	cause       TEXT NOT NULL,
	effect      TEXT NOT NULL,
	f_stat      REAL NOT NULL,
	p_value     REAL NOT NULL,
	lags        INTEGER NOT NULL,
	covariance  TEXT NOT NULL,
	decision    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(id)
);
`

// Store archives runs in SQLite so results can be compared across data
// vintages.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the archive at dbPath.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("report: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("report: pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("report: pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("report: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun writes one completed run. Returns the run id.
func (s *Store) SaveRun(inputPath string, res *pipeline.Result) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("report: begin tx: %w", err)
	}
	defer tx.Rollback()

	r, err := tx.Exec(
		`INSERT INTO runs (created_at, input_path, path) VALUES (?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), inputPath, res.Path.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("report: insert run: %w", err)
	}
	runID, err := r.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("report: run id: %w", err)
	}

	insertTest := func(variable, sample, verdict string, res *stattest.Result) error {
		if res == nil {
			return nil
		}
		_, err := tx.Exec(
			`INSERT INTO unit_root_tests (run_id, variable, sample, test, statistic, p_value, lags, verdict)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, variable, sample, res.Test, res.Stat, res.PValue, res.Lags, verdict,
		)
		return err
	}
	for _, v := range res.Verdicts {
		order := v.Order.String()
		for _, t := range []*stattest.Result{v.Level.ADF, v.Level.PP, v.Level.KPSS} {
			if err := insertTest(v.Variable, "level", order, t); err != nil {
				return 0, fmt.Errorf("report: insert unit root test: %w", err)
			}
		}
		if v.Difference != nil {
			for _, t := range []*stattest.Result{v.Difference.ADF, v.Difference.PP, v.Difference.KPSS} {
				if err := insertTest(v.Variable, "difference", order, t); err != nil {
					return 0, fmt.Errorf("report: insert unit root test: %w", err)
				}
			}
		}
	}

	if res.Bounds != nil && res.ARDL != nil {
		spec := fmt.Sprintf("ARDL(%d", res.ARDL.P)
		for _, q := range res.ARDL.Q {
			spec += fmt.Sprintf(",%d", q)
		}
		spec += ")"
		_, err := tx.Exec(
			`INSERT INTO bounds_tests (run_id, dependent, spec, level, f_stat, f_lower, f_upper, f_p_value, t_stat, t_lower, t_upper, verdict)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, res.ARDL.Dep, spec, res.Bounds.Level,
			res.Bounds.FStat, res.Bounds.FBounds.Lower, res.Bounds.FBounds.Upper, res.Bounds.FPValue,
			res.Bounds.TStat, res.Bounds.TBounds.Lower, res.Bounds.TBounds.Upper,
			res.Bounds.Verdict.String(),
		)
		if err != nil {
			return 0, fmt.Errorf("report: insert bounds test: %w", err)
		}
	}

	if d := res.Diagnostics; d != nil {
		policy := d.Policy.String()
		for _, t := range []struct {
			name string
			res  *stattest.Result
		}{
			{"portmanteau", d.SerialCorrelation},
			{"arch_lm", d.Heteroskedasticity},
			{"jarque_bera", d.Normality},
		} {
			if t.res == nil {
				continue
			}
			_, err := tx.Exec(
				`INSERT INTO diagnostics (run_id, test, statistic, p_value, lags, policy)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				runID, t.name, t.res.Stat, t.res.PValue, t.res.Lags, policy,
			)
			if err != nil {
				return 0, fmt.Errorf("report: insert diagnostic: %w", err)
			}
		}
	}

	for _, v := range res.Causality {
		_, err := tx.Exec(
			`INSERT INTO causality (run_id, cause, effect, f_stat, p_value, lags, covariance, decision)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, v.Cause, v.Effect, v.FStat, v.PValue, v.Lags, v.Cov.String(), v.Decision.String(),
		)
		if err != nil {
			return 0, fmt.Errorf("report: insert causality: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("report: commit: %w", err)
	}
	return runID, nil
}

// RunSummary is one archived run's header row.
type RunSummary struct {
	ID        int64
	CreatedAt time.Time
	InputPath string
	Path      string
}

// ListRuns returns archived runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, created_at, input_path, path FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("report: list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var created string
		if err := rows.Scan(&r.ID, &created, &r.InputPath, &r.Path); err != nil {
			return nil, fmt.Errorf("report: scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			r.CreatedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
