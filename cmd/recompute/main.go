package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"PriceSim/internal/domain/models"
	"PriceSim/internal/services/pricing"
	"PriceSim/internal/services/tabular"
	"PriceSim/internal/usecase"
	"PriceSim/pkg/config"
	xhttp "PriceSim/pkg/http"
	applogger "PriceSim/pkg/logger"
	"PriceSim/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

type options struct {
	settings string
	in       string
	outDir   string
	server   string
	policy   string
	workers  int
	chunk    int
	timeout  time.Duration
}

func main() {
	var o options
	flag.StringVar(&o.settings, "settings", "", "YAML file with the template (defaults to the built-in template)")
	flag.StringVar(&o.in, "in", "", "input CSV table")
	flag.StringVar(&o.outDir, "out-dir", ".", "directory the result table is written to")
	flag.StringVar(&o.server, "server", "", "recompute through a running server at this base URL instead of locally")
	flag.StringVar(&o.policy, "policy", "reject", "domain policy: reject, clamp or allow (local mode only; the server applies its own)")
	flag.IntVar(&o.workers, "workers", 4, "parallel row workers (local mode only)")
	flag.IntVar(&o.chunk, "chunk", 5000, "rows per request in -server mode; keep at or below the server's batch.max_rows")
	flag.DurationVar(&o.timeout, "timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if err := checkFlags(o, set); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stderr"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	if o.in == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	path, res, err := run(ctx, o, time.Now())
	if err != nil {
		l.Error("recompute failed", applogger.Error(err))
		os.Exit(1)
	}
	l.Info("recompute done",
		applogger.String("output", path),
		applogger.Int("rows", len(res.Results)),
		applogger.Int("failed", res.Failed),
	)
}

func run(ctx context.Context, o options, now time.Time) (string, *models.BatchResult, error) {
	tpl, err := loadTemplate(o.settings)
	if err != nil {
		return "", nil, err
	}

	f, err := os.Open(o.in)
	if err != nil {
		return "", nil, fmt.Errorf("open input: %w", err)
	}
	tbl, err := tabular.Read(f)
	f.Close()
	if err != nil {
		return "", nil, err
	}

	var res *models.BatchResult
	if o.server != "" {
		res, err = recomputeRemote(ctx, xhttp.NewClient(o.server, xhttp.WithTimeout(o.timeout)), tpl, tbl.Rows, o.chunk)
	} else {
		res, err = recomputeLocal(ctx, o, tpl, tbl.Rows)
	}
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	if err := tabular.Write(&buf, tbl, res); err != nil {
		return "", nil, err
	}
	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create output dir: %w", err)
	}
	out := filepath.Join(o.outDir, tabular.FileName(now))
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", nil, fmt.Errorf("write output: %w", err)
	}
	return out, res, nil
}

// checkFlags rejects flags that have no effect in the selected mode.
func checkFlags(o options, set map[string]bool) error {
	if o.server != "" {
		for _, name := range []string{"policy", "workers"} {
			if set[name] {
				return fmt.Errorf("-%s cannot be combined with -server: the server applies its own configuration", name)
			}
		}
	}
	if o.chunk < 1 {
		return fmt.Errorf("-chunk must be at least 1")
	}
	return nil
}

// loadTemplate overlays the template section of a settings file onto the
// built-in template.
func loadTemplate(path string) (models.Template, error) {
	s := struct {
		Template models.Template `yaml:"template"`
	}{Template: config.DefaultPreset().Template}
	if path == "" {
		return s.Template, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return models.Template{}, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return models.Template{}, fmt.Errorf("parse settings: %w", err)
	}
	return s.Template, nil
}

func recomputeLocal(ctx context.Context, o options, tpl models.Template, rows []models.BatchRow) (*models.BatchResult, error) {
	policy, err := pricing.ParseDomainPolicy(o.policy)
	if err != nil {
		return nil, err
	}
	rc := usecase.NewRecomputer(pricing.NewProjector(policy), metrics.NewWithRegisterer(prometheus.NewRegistry()), o.workers, 0)
	return rc.Recompute(ctx, tpl, rows)
}

// recomputeRemote sends the parsable rows to the server in requests of at
// most chunk rows and merges the answers back with the rows that failed to
// parse.
func recomputeRemote(ctx context.Context, client *xhttp.Client, tpl models.Template, rows []models.BatchRow, chunk int) (*models.BatchResult, error) {
	if chunk < 1 {
		chunk = len(rows)
	}
	valid := make([]models.BatchRow, 0, len(rows))
	origin := make([]int, 0, len(rows))
	for i, r := range rows {
		if r.Invalid == "" {
			valid = append(valid, r)
			origin = append(origin, i)
		}
	}

	remote := &models.BatchResult{}
	for start := 0; start < len(valid); start += chunk {
		end := start + chunk
		if end > len(valid) {
			end = len(valid)
		}
		body := struct {
			Template models.Template   `json:"template"`
			Rows     []models.BatchRow `json:"rows"`
		}{tpl, valid[start:end]}
		var out models.BatchResult
		if err := client.Do(ctx, http.MethodPost, "/api/recompute", body, &out); err != nil {
			return nil, fmt.Errorf("remote recompute rows %d-%d: %w", start, end-1, err)
		}
		if len(out.Results) != end-start {
			return nil, fmt.Errorf("remote recompute: %d results for %d rows", len(out.Results), end-start)
		}
		if remote.Summary == nil {
			remote.Summary = out.Summary
		}
		remote.Results = append(remote.Results, out.Results...)
	}

	res := &models.BatchResult{
		Rows:    rows,
		Results: make([]models.RowResult, len(rows)),
		Summary: remote.Summary,
	}
	if res.Summary == nil {
		res.Summary = usecase.BuildSummary(tpl)
	}
	for i, r := range rows {
		res.Results[i] = models.RowResult{Index: i, Err: r.Invalid}
	}
	for j, rr := range remote.Results {
		rr.Index = origin[j]
		res.Results[origin[j]] = rr
	}
	for _, rr := range res.Results {
		if !rr.OK() {
			res.Failed++
		}
	}
	return res, nil
}
