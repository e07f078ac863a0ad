// Command migrate manages the boostly schema: embedded SQL migrations, the
// development AutoMigrate path and the integrity guards the like ledger needs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"boostly/internal/config"
	"boostly/internal/database"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

type command struct {
	args string
	help string
	run  func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string, out io.Writer) error
}

var commands = map[string]command{
	"up":     {help: "apply pending SQL migrations and verify guards", run: runUp},
	"auto":   {help: "run GORM AutoMigrate (refused in production-like environments)", run: runAuto},
	"status": {help: "show schema mode, pending migrations and guard state", run: runStatus},
	"verify": {help: "exit non-zero unless every integrity guard exists", run: runVerify},
	"down":   {args: "<version>", help: "roll back one applied migration", run: runDown},
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Ignoring .env: %v", err)
	}

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := run(context.Background(), db, cfg, os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: migrate <command> [args]")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(tw, "  %s %s\t%s\n", name, c.args, c.help)
	}
	_ = tw.Flush()
}

func run(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("missing command")
	}
	name := strings.ToLower(strings.TrimSpace(args[0]))
	cmd, ok := commands[name]
	if !ok {
		usage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd.run(ctx, db, cfg, args[1:], out)
}

func runUp(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string, out io.Writer) error {
	if err := database.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("sql migrations failed: %w", err)
	}
	if err := database.VerifyGuards(ctx, db); err != nil {
		return err
	}
	fmt.Fprintln(out, "sql migrations applied, guards verified")
	return nil
}

func runAuto(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string, out io.Writer) error {
	autoCfg := *cfg
	autoCfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, &autoCfg); err != nil {
		return fmt.Errorf("auto schema apply failed: %w", err)
	}
	fmt.Fprintln(out, "automigrations applied, guards verified")
	return nil
}

func runStatus(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string, out io.Writer) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}

	fmt.Fprintf(out, "mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d\n",
		status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate,
		len(status.AppliedVersions), len(status.PendingMigrations))
	for _, m := range status.PendingMigrations {
		fmt.Fprintf(out, "pending: %s\n", m.String())
	}
	writeGuards(out, status.Guards)
	return nil
}

func runVerify(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string, out io.Writer) error {
	guards, err := database.CheckGuards(ctx, db)
	if err != nil {
		return err
	}
	writeGuards(out, guards)
	return database.VerifyGuards(ctx, db)
}

func runDown(ctx context.Context, db *gorm.DB, _ *config.Config, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errors.New("usage: migrate down <version>")
	}
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], err)
	}
	if err := database.RollbackMigration(ctx, db, version); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	fmt.Fprintf(out, "rolled back migration %d\n", version)
	return nil
}

func writeGuards(w io.Writer, guards []database.GuardStatus) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tGUARD\tRULE\tSTATE")
	for _, g := range guards {
		state := "ok"
		if !g.Present {
			state = "MISSING"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", g.Table, g.Name, g.Rule, state)
	}
	_ = tw.Flush()
}
