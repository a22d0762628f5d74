package proxy_sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/pkg/errors"
)

type (
	// Proxy holds the connection to the SQLite database with stack snapshots
	Proxy struct {
		Ctx context.Context
		DB  *sql.DB
	}

	// querier is satisfied by *sql.DB and *sql.Tx
	querier interface {
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
		QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	}

	// a journal entry for one operation on a named stack
	Operation struct {
		ID    int64
		Stack string
		Op    string
		Value string
		Size  int
	}
)

// NewProxy opens (creating when missing) the database at path.
// Transactions take the write lock on BEGIN, other writers wait up to
// five seconds for it.
func NewProxy(ctx context.Context, path string) (*Proxy, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_txlock=immediate&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "ping %s", path)
	}

	p := Proxy{Ctx: ctx, DB: db}

	err = p.createTables()
	if err != nil {
		p.Close()
		return nil, err
	}

	return &p, nil
}

func (p *Proxy) Close() {
	p.DB.Close()
}

// stacks keeps the latest snapshot of every named stack,
// operations is the journal of pushes and pops
func (p *Proxy) createTables() error {
	const (
		stacksTable = `
	CREATE TABLE IF NOT EXISTS stacks(
		name TEXT PRIMARY KEY,
		items TEXT NOT NULL
	);`

		operationsTable = `
	CREATE TABLE IF NOT EXISTS operations(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		stack TEXT NOT NULL,
		op TEXT NOT NULL,
		value TEXT NOT NULL,
		size INTEGER NOT NULL
	);`
	)

	if _, err := p.DB.ExecContext(p.Ctx, stacksTable); err != nil {
		return errors.Wrap(err, "create stacks table")
	}

	if _, err := p.DB.ExecContext(p.Ctx, operationsTable); err != nil {
		return errors.Wrap(err, "create operations table")
	}

	return nil
}

// Load returns the items of the named stack, bottom first.
// An unknown name is an empty stack.
func (p *Proxy) Load(name string) ([]string, error) {
	return p.load(p.DB, name)
}

func (p *Proxy) load(db querier, name string) ([]string, error) {
	var raw string
	var q = "SELECT items FROM stacks WHERE name = $1"
	err := db.QueryRowContext(p.Ctx, q, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load stack %q", name)
	}

	items := []string{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, errors.Wrapf(err, "decode stack %q", name)
	}
	return items, nil
}

// Save replaces the snapshot of the named stack.
func (p *Proxy) Save(name string, items []string) error {
	return p.save(p.DB, name, items)
}

func (p *Proxy) save(db querier, name string, items []string) error {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return errors.Wrapf(err, "encode stack %q", name)
	}

	var q = `
	INSERT INTO stacks (name, items) values ($1, $2)
	ON CONFLICT(name) DO UPDATE SET items = excluded.items
	`
	if _, err := db.ExecContext(p.Ctx, q, name, string(raw)); err != nil {
		return errors.Wrapf(err, "save stack %q", name)
	}
	return nil
}

// Record appends an entry to the journal and returns its id.
func (p *Proxy) Record(name, op, value string, size int) (int64, error) {
	return p.record(p.DB, name, op, value, size)
}

func (p *Proxy) record(db querier, name, op, value string, size int) (int64, error) {
	var q = "INSERT INTO operations (stack, op, value, size) values ($1, $2, $3, $4)"
	result, err := db.ExecContext(p.Ctx, q, name, op, value, size)
	if err != nil {
		return 0, errors.Wrapf(err, "record %s on %q", op, name)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	return id, nil
}

// Update changes the named stack in a single transaction: fn gets the
// current items and returns the new ones together with the operations to
// journal. Nothing is written when fn fails.
func (p *Proxy) Update(name string, fn func(items []string) ([]string, []Operation, error)) error {
	tx, err := p.DB.BeginTx(p.Ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "begin update of %q", name)
	}
	defer tx.Rollback()

	items, err := p.load(tx, name)
	if err != nil {
		return err
	}
	items, ops, err := fn(items)
	if err != nil {
		return err
	}
	if err := p.save(tx, name, items); err != nil {
		return err
	}
	for _, o := range ops {
		if _, err := p.record(tx, name, o.Op, o.Value, o.Size); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "commit update of %q", name)
	}
	return nil
}

// History returns the journal of the named stack, oldest first.
func (p *Proxy) History(name string) ([]Operation, error) {
	var ops []Operation
	var q = "SELECT id, stack, op, value, size FROM operations WHERE stack = $1 ORDER BY id"
	rows, err := p.DB.QueryContext(p.Ctx, q, name)
	if err != nil {
		return nil, errors.Wrapf(err, "history of %q", name)
	}
	defer rows.Close()

	for rows.Next() {
		o := Operation{}
		err := rows.Scan(&o.ID, &o.Stack, &o.Op, &o.Value, &o.Size)
		if err != nil {
			return nil, err
		}
		ops = append(ops, o)
	}

	return ops, rows.Err()
}

// Names lists stored stacks in alphabetical order.
func (p *Proxy) Names() ([]string, error) {
	var names []string
	rows, err := p.DB.QueryContext(p.Ctx, "SELECT name FROM stacks ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "list stacks")
	}
	defer rows.Close()

	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}

	return names, rows.Err()
}

// Delete removes the named stack and its journal.
func (p *Proxy) Delete(name string) error {
	tx, err := p.DB.BeginTx(p.Ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "begin delete of %q", name)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(p.Ctx, "DELETE FROM stacks WHERE name = $1", name); err != nil {
		return errors.Wrapf(err, "delete stack %q", name)
	}
	if _, err := tx.ExecContext(p.Ctx, "DELETE FROM operations WHERE stack = $1", name); err != nil {
		return errors.Wrapf(err, "delete history of %q", name)
	}
	return errors.Wrapf(tx.Commit(), "commit delete of %q", name)
}
