package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	migrate "github.com/golang-migrate/migrate/v4"

	"github.com/noah-isme/backend-jewelry/internal/config"
	"github.com/noah-isme/backend-jewelry/internal/db"
)

// migrate applies or rolls back the embedded schema migrations.
//
//	migrate -cmd up
//	migrate -cmd down -steps 1
//	migrate -cmd version
func main() {
	var (
		cmd   = flag.String("cmd", "up", "up, down or version")
		steps = flag.Int("steps", 1, "number of migrations to roll back with -cmd down")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	m, err := db.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("migrator: %v", err)
	}
	defer func() { _, _ = m.Close() }()

	switch *cmd {
	case "up":
		err = db.RunMigrations(m)
	case "down":
		err = m.Steps(-*steps)
		if errors.Is(err, migrate.ErrNoChange) {
			err = nil
		}
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("version: none")
			return
		}
		if err == nil {
			fmt.Printf("version: %d dirty: %t\n", v, dirty)
		}
	default:
		log.Fatalf("unknown command %q", *cmd)
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", *cmd, err)
	}
	log.Printf("migrate %s: ok", *cmd)
}
