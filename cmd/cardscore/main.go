package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/ivlev/cardvision/internal/classifier"
	"github.com/ivlev/cardvision/internal/config"
	"github.com/ivlev/cardvision/internal/engine"
	"github.com/ivlev/cardvision/internal/report"
	"github.com/ivlev/cardvision/internal/score"
	"github.com/ivlev/cardvision/internal/system"
)

var version = "dev"

func main() {
	os.MkdirAll("input", 0755)

	inputPtr := flag.String("input", "", "Table photo or PDF (default: newest file in input/)")
	playersPtr := flag.Int("players", 1, "Number of players at the table: 1 or 2")
	configPtr := flag.String("config", "", "Path to a YAML config file")
	templatesPtr := flag.String("templates", "", "Directory of card template PNGs (overrides config)")
	reportPtr := flag.String("report", "", "Write a report to this path (.yaml or .json); \"auto\" picks output/<name>_<time>.yaml")
	jsonPtr := flag.Bool("json", false, "Print the result as JSON instead of a table")
	workersPtr := flag.Int("workers", 0, "Worker goroutines per image (0: from config)")
	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		fatal(err)
	}
	cfg.ApplyEnv()
	if *templatesPtr != "" {
		cfg.TemplatesDir = *templatesPtr
	}
	if *workersPtr > 0 {
		cfg.Workers = *workersPtr
	}
	cfg.BuildVersion = version
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	inputPath := *inputPtr
	if inputPath == "" {
		latest, err := system.FindLatestImage("input")
		if err != nil {
			fatal(fmt.Errorf("%w. Put a table photo in input/", err))
		}
		inputPath = latest
		if !*jsonPtr {
			pterm.Info.Printfln("Selected file: %s", inputPath)
		}
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		fatal(err)
	}

	analyzer, err := engine.Load(cfg)
	if err != nil {
		fatal(err)
	}

	res, err := analyzer.AnalyzeBytes(context.Background(), data, *playersPtr)
	if err != nil {
		fatal(err)
	}

	if *jsonPtr {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fatal(err)
		}
	} else {
		printResult(inputPath, res)
	}

	if *reportPtr != "" {
		path := *reportPtr
		if path == "auto" {
			path = autoReportPath(inputPath)
		}
		if err := report.WriteReport(report.FromResult(inputPath, res), path); err != nil {
			fatal(err)
		}
		if !*jsonPtr {
			pterm.Success.Printfln("Report saved: %s", path)
		}
	}
}

func printResult(inputPath string, res *engine.Result) {
	pterm.DefaultHeader.WithFullWidth().Println("cardscore " + version)

	rows := pterm.TableData{{"Hand", "Cards", "Score"}}
	for _, id := range classifier.HandIDs(res.Players) {
		h := res.Hands[id]
		cards := strings.Join(h.Cards, ", ")
		if cards == "" {
			cards = "-"
		}
		total := fmt.Sprint(h.Score)
		if score.Evaluate(h.Cards).Bust() {
			total = pterm.LightRed(total + " (bust)")
		} else if h.Score == 21 {
			total = pterm.LightGreen(total)
		}
		rows = append(rows, []string{string(id), cards, total})
	}
	pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(rows).Render()

	for _, c := range res.Cards {
		if c.Status != engine.Resolved {
			pterm.Warning.Printfln("%s card %d skipped (%s): %v", c.Hand, c.Index+1, c.Status, c.Err)
		}
	}
	pterm.Info.Printfln("%s: %d regions, %d recognized in %s",
		filepath.Base(inputPath), res.Regions, res.Resolved(), res.Elapsed.Round(time.Millisecond))
}

func autoReportPath(inputPath string) string {
	os.MkdirAll("output", 0755)
	base := filepath.Base(inputPath)
	name := strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), " ", "_")
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join("output", fmt.Sprintf("%s_%s.yaml", name, timestamp))
}

func fatal(err error) {
	pterm.Error.Println(err)
	os.Exit(1)
}
