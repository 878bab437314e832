// migrate aplica las migraciones embebidas: go run ./cmd/migrate -direction up
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/clinica-portal/internal/db/migrate"
	"github.com/jhoicas/clinica-portal/pkg/config"
)

func main() {
	direction := flag.String("direction", migrate.Up, "dirección de la migración: up o down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.DB.Backend != "postgres" {
		fmt.Fprintln(os.Stderr, "migrate: STORAGE_BACKEND debe ser postgres")
		os.Exit(1)
	}

	if err := migrate.Run(cfg.DB.ConnectionString(), *direction); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("migraciones aplicadas:", *direction)
}
