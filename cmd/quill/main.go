package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/quillhq/quill"
	"github.com/quillhq/quill/db/zombiezen"
	"github.com/quillhq/quill/migrations"
)

func main() {
	configPath := flag.String("config", "quill.toml", "path to the TOML configuration file")
	dbPath := flag.String("db", "quill.db", "path to the SQLite database file")
	migrate := flag.Bool("migrate", false, "apply the embedded schema migrations and exit")
	flag.Parse()

	if *migrate {
		if err := applyMigrations(*dbPath); err != nil {
			fmt.Fprintf(os.Stderr, "migrations failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("migrations applied")
		return
	}

	pool, err := quill.NewZombiezenPool(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := pool.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close database pool: %v\n", err)
		}
	}()

	_, srv, err := quill.New(
		*configPath,
		quill.WithZombiezenPool(pool),
		quill.WithRouterHttprouter(),
		quill.WithCacheRistretto(),
		quill.WithPhusLogger(nil),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		os.Exit(1)
	}
}

func applyMigrations(dbPath string) error {
	conn, err := zombiezen.NewConn(dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	return zombiezen.ApplyMigrations(conn, migrations.Schema())
}
