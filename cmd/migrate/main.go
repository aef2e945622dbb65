// Command migrate manages the kitchen costing database schema.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/kitchenops/backend/internal/infrastructure/config"
	"github.com/kitchenops/backend/internal/infrastructure/logger"
	"github.com/kitchenops/backend/internal/infrastructure/migration"
	"github.com/kitchenops/backend/internal/infrastructure/persistence"
	"github.com/kitchenops/backend/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// invocation is what every subcommand gets to work with
type invocation struct {
	args   []string // arguments after the subcommand name
	dir    string   // -path, empty for the embedded set
	source fs.FS
	log    *zap.Logger
}

func (in invocation) arg(i int, what string) (string, error) {
	if i >= len(in.args) {
		return "", fmt.Errorf("missing %s", what)
	}
	return in.args[i], nil
}

type subcommand struct {
	name    string
	usage   string
	summary string
	offline func(in invocation) error // runs without a database
	online  func(in invocation, m *migration.Migrator) error
}

var subcommands = []subcommand{
	{name: "up", usage: "up", summary: "apply every pending migration",
		online: func(_ invocation, m *migration.Migrator) error { return m.Up() }},
	{name: "down", usage: "down", summary: "roll every migration back",
		online: func(_ invocation, m *migration.Migrator) error { return m.Down() }},
	{name: "step", usage: "step <n>", summary: "apply n migrations, negative n rolls back", online: runStep},
	{name: "goto", usage: "goto <version>", summary: "move the schema to version", online: runGoto},
	{name: "version", usage: "version", summary: "print the applied version", online: runVersion},
	{name: "force", usage: "force <version>", summary: "record version without running it (clears dirty)", online: runForce},
	{name: "create", usage: "create <name> [description]", summary: "write a new up/down file pair", offline: runCreate},
	{name: "list", usage: "list", summary: "list the available migrations", offline: runList},
}

func main() {
	dir := flag.String("path", "", "read migrations from this directory instead of the embedded set")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := lookup(flag.Arg(0))
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *level, Format: "console", Output: "stderr", TimeFormat: "15:04:05"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	in := invocation{args: flag.Args()[1:], dir: *dir, source: migrations.FS, log: log}
	if *dir != "" {
		in.source = os.DirFS(*dir)
	}

	if err := execute(cmd, in); err != nil {
		log.Fatal("Migration command failed", zap.String("command", cmd.name), zap.Error(err))
	}
}

func lookup(name string) (subcommand, bool) {
	for _, c := range subcommands {
		if c.name == name {
			return c, true
		}
	}
	return subcommand{}, false
}

func execute(cmd subcommand, in invocation) error {
	if cmd.offline != nil {
		return cmd.offline(in)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The SQL files are PostgreSQL only; mysql and sqlite get their schema
	// from the GORM models and can only move forward.
	if cfg.Database.Driver != config.DriverPostgres {
		if cmd.name != "up" {
			return fmt.Errorf("%s is only supported on postgres (driver is %s)", cmd.name, cfg.Database.Driver)
		}
		db, err := persistence.NewDatabase(&cfg.Database, nil)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := persistence.AutoMigrate(db.DB); err != nil {
			return err
		}
		in.log.Info("Schema synced from models", zap.String("driver", cfg.Database.Driver))
		return nil
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("ping %s: %w", cfg.Database.Host, err)
	}

	m, err := migration.New(sqlDB, in.source, in.log)
	if err != nil {
		return err
	}
	defer m.Close()
	return cmd.online(in, m)
}

func runStep(in invocation, m *migration.Migrator) error {
	raw, err := in.arg(0, "step count")
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n == 0 {
		return fmt.Errorf("step count must be a non-zero integer, got %q", raw)
	}
	return m.Steps(n)
}

func runGoto(in invocation, m *migration.Migrator) error {
	raw, err := in.arg(0, "target version")
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return fmt.Errorf("bad version %q: %w", raw, err)
	}
	return m.GoTo(uint(v))
}

func runVersion(in invocation, m *migration.Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if dirty {
		in.log.Warn("Schema is dirty; repair it and run force", zap.Uint("version", v))
	}
	fmt.Println(v)
	return nil
}

func runForce(in invocation, m *migration.Migrator) error {
	raw, err := in.arg(0, "version")
	if err != nil {
		return err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("bad version %q: %w", raw, err)
	}
	return m.Force(v)
}

func runCreate(in invocation) error {
	name, err := in.arg(0, "migration name")
	if err != nil {
		return err
	}
	description := strings.Join(in.args[1:], " ")
	dir := in.dir
	if dir == "" {
		dir = "migrations"
	}
	mf, err := migration.CreateMigration(dir, name, description)
	if err != nil {
		return err
	}
	fmt.Println(mf.UpPath)
	fmt.Println(mf.DownPath)
	return nil
}

func runList(in invocation) error {
	names, err := migration.ListMigrations(in.source)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errors.New("no migrations found")
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "usage: migrate [-path dir] [-log-level level] <command> [args]")
	fmt.Fprintln(out)
	for _, c := range subcommands {
		fmt.Fprintf(out, "  %-28s %s\n", c.usage, c.summary)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Connection settings come from config.toml or KITCHEN_DATABASE_* variables.")
	fmt.Fprintln(out, "On mysql and sqlite only 'up' is available.")
	fmt.Fprintln(out)
	flag.PrintDefaults()
}
