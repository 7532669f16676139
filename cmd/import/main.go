// Command import carga planillas .xlsx de órdenes de compra o entregas directamente en la base.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/almacen-api/internal/application/audit"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/importer"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/almacen-api/internal/infrastructure/xlsx"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

func main() {
	file := flag.String("file", "", "planilla .xlsx a importar")
	kind := flag.String("kind", "orders", "orders | deliveries")
	mode := flag.String("mode", "", "strict | lenient (por defecto IMPORT_MODE)")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "uso: import -file planilla.xlsx [-kind orders|deliveries] [-mode strict|lenient]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	imp, err := importer.New(postgres.NewTxRunner(pool), stock.NewEngine(), audit.NewRecorder(time.Now), log.Component("importer"), time.Now, importer.Options{
		Mode:              cfg.Import.Mode,
		SentinelPrice:     cfg.Import.SentinelPrice,
		DefaultSupplier:   cfg.Import.DefaultSupplier,
		DefaultOrderStart: cfg.Import.DefaultOrderStart,
	}).WithMode(*mode)
	if err != nil {
		log.Fatal().Err(err).Msg("modo de importación")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("abrir planilla")
	}
	defer f.Close()

	var res *dto.ImportResult
	switch *kind {
	case "orders":
		rows, rerr := xlsx.ReadOrderRows(f)
		if rerr != nil {
			log.Fatal().Err(rerr).Msg("leer planilla")
		}
		res, err = imp.ImportOrders(ctx, rows)
	case "deliveries":
		rows, rerr := xlsx.ReadDeliveryRows(f)
		if rerr != nil {
			log.Fatal().Err(rerr).Msg("leer planilla")
		}
		res, err = imp.ImportDeliveries(ctx, rows)
	default:
		log.Fatal().Str("kind", *kind).Msg("tipo de importación desconocido")
	}
	if err != nil {
		log.Error().Err(err).Msg("importación interrumpida")
	}
	if res != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(res)
	}
}
