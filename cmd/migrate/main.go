package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mapshare/internal/config"
	"mapshare/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var dir string
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply mapshare database migrations",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dir, "dir", "migrations", "directory holding *.sql migration files")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration in filename order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), func(database *sqlx.DB) error {
				return up(cmd.Context(), database, dir, cmd.OutOrStdout())
			})
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they have been applied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), func(database *sqlx.DB) error {
				return status(cmd.Context(), database, dir, cmd.OutOrStdout())
			})
		},
	})
	return root
}

func withDatabase(ctx context.Context, fn func(*sqlx.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.Load()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close()
	if _, err := database.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (filename text primary key, applied_at timestamptz default now())`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return fn(database)
}

func migrationFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func applied(ctx context.Context, database *sqlx.DB) (map[string]bool, error) {
	var names []string
	if err := database.SelectContext(ctx, &names, `SELECT filename FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("read migration state: %w", err)
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set, nil
}

func up(ctx context.Context, database *sqlx.DB, dir string, out io.Writer) error {
	files, err := migrationFiles(dir)
	if err != nil {
		return err
	}
	done, err := applied(ctx, database)
	if err != nil {
		return err
	}
	for _, file := range files {
		filename := filepath.Base(file)
		if done[filename] {
			continue
		}
		// Each file and its bookkeeping row commit together.
		err := db.WithTx(ctx, database, func(tx *sqlx.Tx) error {
			if err := applyFile(ctx, tx, file); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1)`, filename)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply %s: %w", filename, err)
		}
		fmt.Fprintf(out, "applied %s\n", filename)
	}
	return nil
}

func status(ctx context.Context, database *sqlx.DB, dir string, out io.Writer) error {
	files, err := migrationFiles(dir)
	if err != nil {
		return err
	}
	done, err := applied(ctx, database)
	if err != nil {
		return err
	}
	for _, file := range files {
		filename := filepath.Base(file)
		state := "pending"
		if done[filename] {
			state = "applied"
		}
		fmt.Fprintf(out, "%-8s %s\n", state, filename)
	}
	return nil
}

func applyFile(ctx context.Context, tx *sqlx.Tx, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	up, _, _ := strings.Cut(string(content), "-- +migrate Down")
	for _, stmt := range splitSQL(up) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func splitSQL(sqlText string) []string {
	var statements []string
	var current strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(sqlText))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		current.WriteString(line)
		current.WriteRune('\n')
		if strings.HasSuffix(strings.TrimSpace(line), ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}
	return statements
}
