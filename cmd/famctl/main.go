// Command famctl runs one model through the full pipeline: load a config,
// optionally seed historical values, compute the next period, and emit a
// report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/wrenfield/famengine/pkg/fam"
	"github.com/wrenfield/famengine/pkg/famconfig"
	"github.com/wrenfield/famengine/pkg/famreport"
	"github.com/wrenfield/famengine/pkg/famseed"
	"github.com/wrenfield/famengine/pkg/famstore"
)

func logStep(step string, details string) {
	fmt.Printf("\n[STEP] %s\n", step)
	fmt.Println("---------------------------------------------------------")
	fmt.Println(details)
	fmt.Println("---------------------------------------------------------")
}

func main() {
	configPath := flag.String("config", "model.yaml", "path to a YAML or HJSON model config")
	seedPath := flag.String("seed", "", "optional path to a JSON seed file (.json)")
	htmlPath := flag.String("seed-html", "", "optional path to an HTML seed table")
	lenientSeed := flag.Bool("lenient-seed", false, "repair malformed JSON before parsing the seed file")
	htmlOut := flag.String("html", "", "optional path to also write the report as HTML")
	persist := flag.Bool("persist", false, "snapshot the computed period to Postgres (requires DATABASE_URL)")
	flag.Parse()

	runID := uuid.New().String()
	logStep("0. Initialization", fmt.Sprintf("famctl run %s starting", runID))

	if err := godotenv.Load(); err != nil {
		fmt.Printf("no .env file loaded: %v\n", err)
	}

	spec, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	e := fam.NewEngine()
	if err := famconfig.Apply(e, spec); err != nil {
		fmt.Printf("Error applying config: %v\n", err)
		os.Exit(1)
	}
	logStep("1. Model Loaded", fmt.Sprintf(
		"Config: %s\nAccounts: %d\nPeriods: %d",
		*configPath, len(e.AllAccounts()), len(e.AllPeriods())))

	if *seedPath != "" || *htmlPath != "" {
		values, err := loadSeed(*seedPath, *htmlPath, *lenientSeed)
		if err != nil {
			fmt.Printf("Error loading seed data: %v\n", err)
			os.Exit(1)
		}
		if err := e.LoadInputData(values); err != nil {
			fmt.Printf("Error seeding engine: %v\n", err)
			os.Exit(1)
		}
		logStep("2. Seed Data Loaded", fmt.Sprintf("Seeded %d values", len(values)))
	} else {
		logStep("2. Seed Data Loaded", "No seed file given, relying on config-declared input rules")
	}

	results, err := e.Compute()
	if err != nil {
		fmt.Printf("Error computing model: %v\n", err)
		os.Exit(1)
	}

	var period fam.PeriodId
	var values map[fam.AccountId]float64
	for p, v := range results {
		period, values = p, v
	}
	logStep("3. Compute Complete", fmt.Sprintf("Period: %s\nAccounts computed: %d", period, len(values)))

	report := famreport.RenderHierarchical(e, period, values)
	logStep("4. Report", report)

	if *htmlOut != "" {
		html, err := famreport.ToHTML(report)
		if err != nil {
			fmt.Printf("Error rendering HTML: %v\n", err)
		} else if err := os.WriteFile(*htmlOut, []byte(html), 0o644); err != nil {
			fmt.Printf("Error writing %s: %v\n", *htmlOut, err)
		} else {
			fmt.Printf("HTML report written to %s\n", *htmlOut)
		}
	}

	if *persist {
		persistSnapshot(e, period, values, runID)
	}
}

func loadConfig(path string) (*famconfig.ModelSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".hjson") {
		return famconfig.ParseHJSON(data)
	}
	return famconfig.ParseYAML(data)
}

func loadSeed(jsonPath, htmlPath string, lenient bool) ([]fam.Value, error) {
	if htmlPath != "" {
		data, err := os.ReadFile(htmlPath)
		if err != nil {
			return nil, err
		}
		return famseed.ParseHTMLTable(string(data))
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	if lenient {
		return famseed.ParseLenientJSON(data)
	}
	return famseed.ParseJSON(data)
}

func persistSnapshot(e *fam.Engine, period fam.PeriodId, values map[fam.AccountId]float64, runID string) {
	ctx := context.Background()
	if err := famstore.InitDB(ctx); err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		return
	}
	defer famstore.Close()

	repo := famstore.NewSnapshotRepo()
	snap := famstore.FromCompute(period, values, e.AllAccounts())
	if err := repo.Save(ctx, runID, snap); err != nil {
		fmt.Printf("Error saving snapshot: %v\n", err)
		return
	}
	fmt.Printf("Snapshot for %s persisted under run %s\n", period, runID)
}
