// mkfixture writes a small synthetic input set: raw call, edetail, events
// and VAE tables, one config file per pipeline and a run manifest.
// Usage: go run ./cmd/mkfixture --out testdata/run --hcps 50 --months 9
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/gyeh/hcpnorm/internal/config"
	"github.com/gyeh/hcpnorm/internal/table"
	"github.com/gyeh/hcpnorm/internal/tableio"
)

const product = "EBG"

var edetailCodes = []string{"M3", "M3-Quiz", "M3-MM", "M3-OPD", "NMO", "CARENET", "JSTREAM", "Medpeer"}

func main() {
	out := flag.String("out", "testdata/run", "output directory")
	hcps := flag.Int("hcps", 50, "number of HCPs")
	months := flag.Int("months", 9, "months of history ending at --end")
	end := flag.String("end", "2024-06", "last month of history (YYYY-MM)")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	last, err := time.Parse("2006-01", *end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse --end: %v\n", err)
		os.Exit(1)
	}
	first := last.AddDate(0, -(*months - 1), 0)
	g := &generator{
		rnd:   rand.New(rand.NewPCG(*seed, *seed)),
		hcps:  *hcps,
		first: first,
		days:  int(last.AddDate(0, 1, 0).Sub(first).Hours() / 24),
	}

	ctx := context.Background()
	store := tableio.NewStore(config.S3Config{})
	data := filepath.Join(*out, "data")

	tables := map[string]*table.Table{
		"call.csv":       g.calls(),
		"events.parquet": g.events(),
		"vae.csv":        g.vae(),
	}
	for name, t := range tables {
		if err := store.Write(ctx, t, filepath.Join(data, name)); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %5d rows to %s\n", t.Len(), filepath.Join(data, name))
	}

	edetail := g.edetail()
	if err := writeExcel(filepath.Join(data, "edetail.xlsx"), edetail); err != nil {
		fmt.Fprintf(os.Stderr, "write edetail: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %5d rows to %s\n", edetail.Len(), filepath.Join(data, "edetail.xlsx"))

	if err := writeConfigs(*out); err != nil {
		fmt.Fprintf(os.Stderr, "write configs: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote configs and run.yaml under %s\n", *out)
}

type generator struct {
	rnd   *rand.Rand
	hcps  int
	first time.Time
	days  int
}

func (g *generator) hcp() table.Value {
	return table.String(fmt.Sprintf("H%04d", g.rnd.IntN(g.hcps)+1))
}

func (g *generator) date() string {
	return g.first.AddDate(0, 0, g.rnd.IntN(g.days)).Format("2006-01-02")
}

func (g *generator) pick(xs []string) string { return xs[g.rnd.IntN(len(xs))] }

func (g *generator) calls() *table.Table {
	t := table.New("product_external_id_vod__c", "child_account_identifier_vod__c", "call_date_vod__c",
		"call2_vod_id", "recordtype_name", "Action")
	for i := range g.hcps * 4 {
		_ = t.Append(
			table.String(g.pick([]string{product, product, "OTHER"})),
			g.hcp(),
			table.String(g.date()),
			table.String(fmt.Sprintf("C%05d", i+1)),
			table.String(g.pick([]string{"Detail", "Remote Detail"})),
			table.String(g.pick([]string{"Visit", "Remote"})),
		)
	}
	return t
}

// edetail emits one delivery per (HCP, message) and, for some, the
// engagement actions that follow it.
func (g *generator) edetail() *table.Table {
	t := table.New("src_systm_cd", "dgtl_dtl_only_id", "action", "activity_date", "customer_id",
		"product_indication_id", "product_name")
	for i := range g.hcps * 3 {
		code := g.pick(edetailCodes)
		id := table.String(fmt.Sprintf("D%05d", i+1))
		hcp := g.hcp()
		day := table.String(g.date())
		prod := table.String(g.pick([]string{product, product, product, "OTHER"}))
		add := func(action string) {
			_ = t.Append(table.String(code), id, table.String(action), day, hcp, table.String("I1"), prod)
		}
		add("Sent")
		if code == "NMO" {
			add("Viewed")
			continue
		}
		if g.rnd.IntN(2) == 0 {
			add("Opened")
			if g.rnd.IntN(2) == 0 {
				add("Clicked")
			}
		}
	}
	return t
}

func (g *generator) events() *table.Table {
	t := table.New("channel", "conference_id", "customer_id", "product_id", "indication_id", "action", "ACTVY_STRT_DT")
	for i := range g.hcps {
		_ = t.Append(
			table.String(g.pick([]string{"Webinar", "Symposium", ""})),
			table.String(fmt.Sprintf("E%04d", i+1)),
			g.hcp(),
			table.String(g.pick([]string{"1234", "9999"})),
			table.String("I1"),
			table.String("Attended"),
			table.String(g.date()+" 09:00:00"),
		)
	}
	return t
}

func (g *generator) vae() *table.Table {
	t := table.New("customer_id", "activity_date", "sevc_id", "action", "product_id")
	for i := range g.hcps * 2 {
		_ = t.Append(
			g.hcp(),
			table.String(g.date()),
			table.String(fmt.Sprintf("S%05d", i+1)),
			table.String(g.pick([]string{"Viewed", "Completed"})),
			table.Int(int64(g.pick2(1234, 9999))),
		)
	}
	return t
}

func (g *generator) pick2(a, b int) int {
	if g.rnd.IntN(3) == 0 {
		return b
	}
	return a
}

func writeExcel(path string, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]any, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range t.Rows() {
		cells := make([]any, 0, len(header))
		for _, v := range r.Values() {
			cells = append(cells, v.String())
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func writeConfigs(dir string) error {
	data := func(name string) string { return filepath.Join(dir, "data", name) }
	outputs := filepath.Join(dir, "outputs")
	output := func(name string) string { return filepath.Join(outputs, name) }

	configs := map[string]config.PipelineConfig{
		"call": {
			Source:  config.PathConfig{Path: data("call.csv")},
			Filters: config.Filters{"product_external_id_vod__c": product, "months_to_retain": 7},
			Output:  config.OutputConfig{CSV: output("call.csv")},
		},
		"edetail": {
			Source:  config.PathConfig{Path: data("edetail.xlsx")},
			Filters: config.Filters{"product_name": product, "months_to_retain": 7},
			Output:  config.OutputConfig{CSV: output("edetail.csv")},
		},
		"events": {
			Source:  config.PathConfig{Path: data("events.parquet")},
			Filters: config.Filters{"product_id": 1234, "months_to_retain": 7},
			Output:  config.OutputConfig{CSV: output("events.csv")},
		},
		"vae": {
			Source:  config.PathConfig{Path: data("vae.csv")},
			Filters: config.Filters{"product_id": 1234, "months_to_retain": 7},
			Output:  config.OutputConfig{CSV: output("vae.csv"), Parquet: output("vae.parquet")},
		},
		"hco_promotion": {
			Sources: map[string]config.PathConfig{
				"event":   {Path: output("events.csv")},
				"edetail": {Path: output("edetail.csv")},
				"call":    {Path: output("call.csv")},
				"vae":     {Path: output("vae.csv")},
			},
			Output: config.OutputConfig{CSV: output("hcp_promotion.csv")},
		},
	}

	m := config.Manifest{OutputDir: outputs}
	for _, ref := range config.DefaultPipelines {
		name := strings.TrimSuffix(filepath.Base(ref.Config), ".json")
		path := filepath.Join(dir, "config", name+".json")
		if err := writeJSON(path, configJSON(configs[name])); err != nil {
			return err
		}
		m.Pipelines = append(m.Pipelines, config.PipelineRef{Name: ref.Name, Config: path})
	}

	b, err := yaml.Marshal(&m)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "run.yaml"), b, 0o644)
}

// configJSON renders a pipeline config in the on-disk key layout.
func configJSON(pc config.PipelineConfig) map[string]any {
	doc := map[string]any{}
	if pc.Source.Path != "" {
		doc["source"] = map[string]string{"path": pc.Source.Path}
	}
	if len(pc.Sources) > 0 {
		srcs := map[string]any{}
		for k, v := range pc.Sources {
			srcs[k] = map[string]string{"path": v.Path}
		}
		doc["sources"] = srcs
	}
	if len(pc.Filters) > 0 {
		doc["filters"] = map[string]any(pc.Filters)
	}
	out := map[string]string{"csv": pc.Output.CSV}
	if pc.Output.Parquet != "" {
		out["parquet"] = pc.Output.Parquet
	}
	doc["output"] = out
	return doc
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
