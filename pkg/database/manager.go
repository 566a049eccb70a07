package database

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MartinPJB/BLOG-CMS/pkg/logger"
)

// Executor runs statements. Implemented by *pgxpool.Pool, pgx.Tx and pgxmock.
type Executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is a connected executor that can open transactions.
type Pool interface {
	Executor
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Dialer opens a Pool. afterConnect must run on every new physical connection.
type Dialer func(ctx context.Context, cfg Config, afterConnect func(context.Context, *pgx.Conn) error) (Pool, error)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for statement tracing.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithDialer replaces the pgxpool dialer.
func WithDialer(d Dialer) Option {
	return func(m *Manager) {
		if d != nil {
			m.conn.dial = d
		}
	}
}

// WithPool uses an already connected pool. Mostly useful in tests.
func WithPool(p Pool) Option {
	return func(m *Manager) {
		m.conn.pool = p
	}
}

// connection is shared between a Manager and every transaction-bound copy of it.
type connection struct {
	cfg    Config
	dial   Dialer
	pool   Pool
	schema string
	mu     sync.Mutex
}

func (c *connection) currentSchema() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schema
}

// Manager is the single data-access gateway: it builds parameterized
// statements from ordered column/value data and runs them on a lazily
// opened connection pool.
type Manager struct {
	conn    *connection
	tx      pgx.Tx
	builder builder
	logger  *slog.Logger
}

// New returns an unconnected Manager. The pool is opened on first use.
func New(cfg Config, opts ...Option) *Manager {
	cfg = cfg.WithDefaults()
	m := &Manager{
		conn: &connection{
			cfg:    cfg,
			dial:   dialPool,
			schema: cfg.Schema,
		},
		builder: newBuilder(),
		logger:  logger.NewNope(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connection returns the shared pool, opening it on first call.
// A failed attempt leaves the Manager unconnected; there is no retry.
func (m *Manager) Connection(ctx context.Context) (Pool, error) {
	c := m.conn
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool != nil {
		return c.pool, nil
	}

	pool, err := c.dial(ctx, c.cfg, m.afterConnect)
	if err != nil {
		if errors.Is(err, ErrFailedToParseDBConfig) {
			return nil, err
		}
		return nil, errors.Mark(errors.Wrap(err, "connect"), ErrFailedToOpenDBConnection)
	}
	c.pool = pool
	m.logger.InfoContext(ctx, "database connected", slog.String("schema", c.schema))
	return pool, nil
}

// Connected reports whether the pool has been opened.
func (m *Manager) Connected() bool {
	m.conn.mu.Lock()
	defer m.conn.mu.Unlock()
	return m.conn.pool != nil
}

// Close closes the pool. The Manager may reconnect on next use.
func (m *Manager) Close() {
	c := m.conn
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}

// InTx reports whether the Manager is bound to a transaction.
func (m *Manager) InTx() bool {
	return m.tx != nil
}

func (m *Manager) afterConnect(ctx context.Context, conn *pgx.Conn) error {
	schema := m.conn.currentSchema()
	if schema == "" {
		return nil
	}
	_, err := conn.Exec(ctx, "SET search_path TO "+quoteIdent(schema))
	return err
}

func (m *Manager) executor(ctx context.Context) (Executor, error) {
	if m.tx != nil {
		return m.tx, nil
	}
	return m.Connection(ctx)
}

// ConnectToDatabase points the connection at the given schema; later statements
// resolve unqualified table names there.
func (m *Manager) ConnectToDatabase(ctx context.Context, name string) error {
	if err := checkIdentifiers(name); err != nil {
		return err
	}
	exec, err := m.executor(ctx)
	if err != nil {
		return err
	}
	if _, err := m.exec(ctx, exec, "SET search_path TO "+quoteIdent(name)); err != nil {
		return errors.Wrapf(err, "connect to database %q", name)
	}

	m.conn.mu.Lock()
	m.conn.schema = name
	pool := m.conn.pool
	m.conn.mu.Unlock()

	// Idle pooled connections still carry the old search_path.
	if r, ok := pool.(interface{ Reset() }); ok && m.tx == nil {
		r.Reset()
	}
	return nil
}

// CurrentDatabase returns the schema the connection is pointed at.
func (m *Manager) CurrentDatabase() string {
	return m.conn.currentSchema()
}

// CreateDatabase creates a schema if it does not exist.
func (m *Manager) CreateDatabase(ctx context.Context, name string) error {
	if err := checkIdentifiers(name); err != nil {
		return err
	}
	_, err := m.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoteIdent(name))
	return errors.Wrapf(err, "create database %q", name)
}

// DropDatabase drops a schema and everything in it.
func (m *Manager) DropDatabase(ctx context.Context, name string) error {
	if err := checkIdentifiers(name); err != nil {
		return err
	}
	_, err := m.Exec(ctx, "DROP SCHEMA IF EXISTS "+quoteIdent(name)+" CASCADE")
	return errors.Wrapf(err, "drop database %q", name)
}

// CreateTable creates a table if it does not exist.
// Options are appended verbatim after the column list (table constraints).
func (m *Manager) CreateTable(ctx context.Context, table string, columns []ColumnDef, options ...string) error {
	sql, err := createTableSQL(table, columns, options...)
	if err != nil {
		return err
	}
	_, err = m.Exec(ctx, sql)
	return errors.Wrapf(err, "create table %q", table)
}

// Exec runs a trusted statement and returns the number of affected rows.
func (m *Manager) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	exec, err := m.executor(ctx)
	if err != nil {
		return 0, err
	}
	return m.exec(ctx, exec, sql, args...)
}

func (m *Manager) exec(ctx context.Context, exec Executor, sql string, args ...any) (int64, error) {
	m.trace(ctx, sql, args)
	tag, err := exec.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (m *Manager) query(ctx context.Context, sql string, args []any) ([]Row, error) {
	exec, err := m.executor(ctx)
	if err != nil {
		return nil, err
	}
	m.trace(ctx, sql, args)
	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	result, err := collectRows(rows)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = []Row{}
	}
	return result, nil
}

// Read returns every row of table matching all conditions.
// No match is an empty slice, not an error.
func (m *Manager) Read(ctx context.Context, table string, columns Columns, where Conditions) ([]Row, error) {
	return m.ReadWithJoin(ctx, table, columns, where)
}

// ReadWithJoin is Read with one JOIN clause per join, in order.
func (m *Manager) ReadWithJoin(ctx context.Context, table string, columns Columns, where Conditions, joins ...Join) ([]Row, error) {
	sql, args, err := m.builder.selectSQL(table, columns, where, joins)
	if err != nil {
		return nil, err
	}
	rows, err := m.query(ctx, sql, args)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", table)
	}
	return rows, nil
}

// Create inserts one row and returns it as stored, generated id included.
func (m *Manager) Create(ctx context.Context, table string, data Values) (Row, error) {
	sql, args, err := m.builder.insertSQL(table, data)
	if err != nil {
		return Row{}, err
	}
	rows, err := m.query(ctx, sql, args)
	if err != nil {
		return Row{}, errors.Wrapf(err, "create %s", table)
	}
	if len(rows) == 0 {
		return Row{}, nil
	}
	return rows[0], nil
}

// LastInsertedID returns the last sequence value generated on this connection.
// Only meaningful inside WithTx, where every statement shares one connection.
func (m *Manager) LastInsertedID(ctx context.Context) (int64, error) {
	if m.tx == nil {
		return 0, ErrNoTransaction
	}
	const sql = "SELECT lastval()"
	m.trace(ctx, sql, nil)
	var id int64
	if err := m.tx.QueryRow(ctx, sql).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "last inserted id")
	}
	return id, nil
}

// Update sets data on every row matching where and returns the updated rows.
// A column may not appear in both data and where.
func (m *Manager) Update(ctx context.Context, table string, data Values, where Conditions) ([]Row, error) {
	sql, args, err := m.builder.updateSQL(table, data, where)
	if err != nil {
		return nil, err
	}
	rows, err := m.query(ctx, sql, args)
	if err != nil {
		return nil, errors.Wrapf(err, "update %s", table)
	}
	return rows, nil
}

// Delete removes every row matching where and returns how many were removed.
func (m *Manager) Delete(ctx context.Context, table string, where Conditions) (int64, error) {
	sql, args, err := m.builder.deleteSQL(table, where)
	if err != nil {
		return 0, err
	}
	n, err := m.Exec(ctx, sql, args...)
	if err != nil {
		return 0, errors.Wrapf(err, "delete %s", table)
	}
	return n, nil
}

func (m *Manager) trace(ctx context.Context, sql string, args []any) {
	m.logger.DebugContext(ctx, "database statement",
		slog.String("sql", sql),
		slog.Int("args", len(args)),
	)
}

func dialPool(ctx context.Context, cfg Config, afterConnect func(context.Context, *pgx.Conn) error) (Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parse config"), ErrFailedToParseDBConfig)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	poolConfig.AfterConnect = afterConnect

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	// Ping to surface authentication and permission problems now rather than on the first query.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
