package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/scout/internal/domain/catalog"
	"github.com/okian/scout/internal/sample"
	"github.com/okian/scout/pkg/logger"
)

func main() {
	var (
		output    = flag.String("output", "sample.xlsx", "Output file (.xlsx or .csv)")
		players   = flag.Int("players", 40, "Players per league")
		matchdays = flag.Int("matchdays", 6, "Number of matchdays")
		leagues   = flag.String("leagues", "Bundesliga,2. Bundesliga", "Comma-separated league names")
		seed      = flag.Int64("seed", 42, "Random seed")
		missing   = flag.Float64("missing", 0.03, "Share of empty metric cells")
		delimiter = flag.String("delimiter", ",", "CSV delimiter")
	)
	flag.Parse()

	ctx := context.Background()
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Named("sample")

	cat, err := catalog.Default()
	if err != nil {
		log.Fatal(ctx, "failed to build catalog", logger.Error(err))
	}
	cfg := sample.NewConfig(
		sample.WithPlayers(*players),
		sample.WithMatchdays(*matchdays),
		sample.WithLeagues(splitList(*leagues)...),
		sample.WithSeed(*seed),
		sample.WithMissingRate(*missing),
	)
	raw := sample.Generate(cfg, cat)

	switch strings.ToLower(filepath.Ext(*output)) {
	case ".csv":
		d := []rune(*delimiter)
		if len(d) != 1 {
			log.Fatal(ctx, "delimiter must be a single character", logger.String("delimiter", *delimiter))
		}
		err = sample.WriteCSV(*output, raw, d[0])
	default:
		err = sample.WriteWorkbook(*output, raw)
	}
	if err != nil {
		log.Fatal(ctx, "failed to write sample", logger.Error(err))
	}
	log.Info(ctx, "sample written",
		logger.String("output", *output),
		logger.Int("rows", len(raw.Rows)),
		logger.Int("columns", len(raw.Header)),
	)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
