package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"boostly/internal/config"
	"boostly/internal/middleware"

	"gorm.io/gorm"
)

// Schema modes accepted by DB_SCHEMA_MODE. The embedded SQL migrations are
// authoritative; AutoMigrate builds the same tables from model tags and is
// only allowed outside production-like environments.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// ErrMissingGuards is returned when the connected database lacks one of the
// constraints the like ledger and account store rely on.
var ErrMissingGuards = errors.New("schema is missing integrity guards")

type guardKind int

const (
	guardUniqueIndex guardKind = iota
	guardCheck
	guardPrimaryKey
)

// Guard is a constraint enforced by the database rather than by a read-then-write
// check in application code.
type Guard struct {
	Table   string
	Name    string
	Rule    string
	kind    guardKind
	columns []string
}

// IntegrityGuards lists the constraints both schema paths must produce.
func IntegrityGuards() []Guard {
	return []Guard{
		{Table: "accounts", Name: "idx_accounts_email", Rule: "one account per email", kind: guardUniqueIndex},
		{Table: "companies", Name: "idx_companies_name", Rule: "company names are unique", kind: guardUniqueIndex},
		{Table: "companies", Name: "idx_companies_account_id", Rule: "an account owns at most one company", kind: guardUniqueIndex},
		{Table: "posts", Name: "chk_posts_boost_non_negative", Rule: "boost is never negative", kind: guardCheck},
		{Table: "post_likes", Name: "post_likes_pkey", Rule: "a company likes a post at most once",
			kind: guardPrimaryKey, columns: []string{"post_id", "company_id"}},
	}
}

// GuardStatus reports whether a guard exists in the connected database.
type GuardStatus struct {
	Guard
	Present bool
}

// SchemaStatus describes the schema plan for a configuration and the state of
// the connected database.
type SchemaStatus struct {
	Mode               string
	Environment        string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	PendingMigrations  []Migration
	Guards             []GuardStatus
}

// MissingGuards returns the guards not found in the database.
func (s *SchemaStatus) MissingGuards() []Guard {
	var missing []Guard
	for _, g := range s.Guards {
		if !g.Present {
			missing = append(missing, g.Guard)
		}
	}
	return missing
}

type schemaPlan struct {
	mode    string
	runSQL  bool
	runAuto bool
}

func isProdLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}

func planSchema(cfg *config.Config) (schemaPlan, error) {
	plan := schemaPlan{mode: strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))}
	if plan.mode == "" {
		plan.mode = SchemaModeHybrid
	}
	prodLike := isProdLikeEnv(cfg.Env)

	switch plan.mode {
	case SchemaModeSQL:
		plan.runSQL = true
	case SchemaModeAuto:
		if prodLike {
			return plan, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q", cfg.Env)
		}
		plan.runAuto = true
	case SchemaModeHybrid:
		plan.runSQL = true
		plan.runAuto = !prodLike
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.mode)
	}
	return plan, nil
}

// AutoMigrate creates or updates tables for PersistentModels.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema runs SQL migrations and/or AutoMigrate according to DB_SCHEMA_MODE,
// then fails with ErrMissingGuards if any integrity guard is absent.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := planSchema(cfg)
	if err != nil {
		return err
	}

	if plan.runSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if plan.runAuto {
		middleware.Logger.Info("Running GORM AutoMigrate", slog.String("mode", plan.mode), slog.String("env", cfg.Env))
		if err := AutoMigrate(db); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	return VerifyGuards(ctx, db)
}

// CheckGuards inspects the database for every integrity guard.
func CheckGuards(ctx context.Context, db *gorm.DB) ([]GuardStatus, error) {
	m := db.WithContext(ctx).Migrator()
	guards := IntegrityGuards()
	out := make([]GuardStatus, 0, len(guards))
	for _, g := range guards {
		present, err := guardPresent(m, g)
		if err != nil {
			return nil, fmt.Errorf("inspect %s on %s: %w", g.Name, g.Table, err)
		}
		out = append(out, GuardStatus{Guard: g, Present: present})
	}
	return out, nil
}

// VerifyGuards returns ErrMissingGuards naming every absent guard.
func VerifyGuards(ctx context.Context, db *gorm.DB) error {
	statuses, err := CheckGuards(ctx, db)
	if err != nil {
		return err
	}
	var missing []string
	for _, s := range statuses {
		if !s.Present {
			missing = append(missing, s.Table+"."+s.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingGuards, strings.Join(missing, ", "))
	}
	return nil
}

func guardPresent(m gorm.Migrator, g Guard) (bool, error) {
	if !m.HasTable(g.Table) {
		return false, nil
	}
	switch g.kind {
	case guardUniqueIndex:
		return m.HasIndex(g.Table, g.Name), nil
	case guardCheck:
		return m.HasConstraint(g.Table, g.Name), nil
	case guardPrimaryKey:
		return hasPrimaryKey(m, g.Table, g.columns)
	default:
		return false, fmt.Errorf("unknown guard kind %d", g.kind)
	}
}

// hasPrimaryKey reports whether the primary key of table is exactly columns.
func hasPrimaryKey(m gorm.Migrator, table string, columns []string) (bool, error) {
	types, err := m.ColumnTypes(table)
	if err != nil {
		return false, err
	}

	keyed := make(map[string]bool)
	for _, ct := range types {
		if isKey, ok := ct.PrimaryKey(); ok && isKey {
			keyed[ct.Name()] = true
		}
	}
	if len(keyed) != len(columns) {
		return false, nil
	}
	for _, c := range columns {
		if !keyed[c] {
			return false, nil
		}
	}
	return true, nil
}

// GetSchemaStatus reports the schema plan, applied and pending SQL versions,
// and which integrity guards the database currently has.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := planSchema(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		Mode:               plan.mode,
		Environment:        cfg.Env,
		WillRunSQL:         plan.runSQL,
		WillRunAutoMigrate: plan.runAuto,
	}
	if plan.runSQL {
		applied, err := NewMigrationStore(db).AppliedVersions(ctx)
		if err != nil {
			return nil, err
		}
		status.AppliedVersions = applied
		status.PendingMigrations = pendingMigrations(applied, GetMigrations())
	}

	status.Guards, err = CheckGuards(ctx, db)
	if err != nil {
		return nil, err
	}
	return status, nil
}
