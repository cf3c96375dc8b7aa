// seed_catalog genera un script SQL de carga del catálogo de productos a partir de un CSV
// exportado desde una hoja de cálculo (columnas id;nombre;precio;stock).
//
// Uso: go run ./cmd/seed_catalog -charset windows-1252 -sep ';' catalogo.csv
// Escribe: migrations/002_seed_catalog.sql (o la ruta de -out).
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/jhoicas/papeleria-api/internal/infrastructure/catalog"
	"github.com/jhoicas/papeleria-api/pkg/logger"
)

func main() {
	var (
		charset   = flag.String("charset", catalog.CharsetUTF8, "utf-8 | iso-8859-1 | windows-1252")
		sep       = flag.String("sep", ";", "separador de columnas")
		out       = flag.String("out", "", "archivo de salida (default migrations/002_seed_catalog.sql)")
		keepStock = flag.Bool("keep-stock", true, "no sobrescribir el stock de productos existentes")
	)
	flag.Parse()
	log := logger.New(logger.Config{Env: "development", Level: "info", Service: "seed_catalog"})

	csvPath := "catalogo.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	if len(*sep) != 1 {
		log.Fatal().Str("sep", *sep).Msg("el separador debe ser un solo carácter")
	}

	f, err := os.Open(csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", csvPath).Msg("abrir CSV")
	}
	defer f.Close()

	products, err := catalog.Decode(f, *charset, rune((*sep)[0]))
	if err != nil {
		log.Fatal().Err(err).Str("file", csvPath).Msg("leer catálogo")
	}

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(findModuleRoot(), "migrations", "002_seed_catalog.sql")
	}
	w, err := os.Create(outPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", outPath).Msg("crear archivo")
	}
	defer w.Close()

	if err := catalog.WriteSQL(w, filepath.Base(csvPath), products, *keepStock); err != nil {
		log.Fatal().Err(err).Msg("escribir SQL")
	}
	log.Info().Str("file", outPath).Int("products", len(products)).Msg("catálogo generado")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
