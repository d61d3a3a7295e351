package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	explorer "github.com/goliatone/go-datascope/components/explorer"
	"github.com/goliatone/go-datascope/components/explorer/commands"
	"github.com/goliatone/go-datascope/components/explorer/gorouter"
	"github.com/goliatone/go-datascope/components/explorer/httpapi"
	"github.com/goliatone/go-datascope/components/explorer/queries"
)

type cli struct {
	Serve   serveCmd   `cmd:"" help:"Serve the interactive data exploration dashboard."`
	Inspect inspectCmd `cmd:"" help:"Load a data file and print its overview and summaries."`
}

type serveCmd struct {
	Config string `type:"path" help:"Path to a YAML config file."`
	Addr   string `help:"Listen address override (e.g. :8080)."`
}

type inspectCmd struct {
	Path string `arg:"" type:"path" help:"CSV or spreadsheet file to inspect."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Single-page dashboard for exploring tabular data files."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

func (cmd *serveCmd) Run(_ context.Context) error {
	cfg := explorer.DefaultConfig()
	if cmd.Config != "" {
		loaded, err := explorer.LoadConfig(cmd.Config)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if cmd.Addr != "" {
		cfg.Server.Addr = cmd.Addr
	}

	registry := explorer.NewRegistry()
	cache := explorer.NewChartCache(cfg.Chart.TTL())
	for _, kind := range explorer.ChartKinds() {
		options := []explorer.EChartsProviderOption{
			explorer.WithChartCache(cache),
			explorer.WithPieTopN(cfg.Chart.PieSlices),
		}
		if cfg.Chart.Theme != "" {
			options = append(options, explorer.WithChartTheme(cfg.Chart.Theme))
		}
		if cfg.Chart.AssetsHost != "" {
			options = append(options, explorer.WithChartAssetsHost(cfg.Chart.AssetsHost))
		}
		if err := registry.RegisterProvider(kind, explorer.NewEChartsProvider(kind, options...)); err != nil {
			return err
		}
	}

	service := explorer.NewService(explorer.Options{
		Providers:   registry,
		VizRowLimit: cfg.Limits.VizRowLimit,
		PreviewRows: cfg.Limits.PreviewRows,
	})
	controller, err := explorer.NewController(explorer.ControllerOptions{
		Service:  service,
		BasePath: cfg.Server.BasePath,
	})
	if err != nil {
		return err
	}

	executor := &httpapi.CommandExecutor{
		UploadCommander: commands.NewUploadDatasetCommand(service, nil),
		ClearCommander:  commands.NewClearDatasetCommand(service, nil),
		ChartQuerier:    queries.NewChartQuery(service),
		ReportQuerier:   queries.NewReportQuery(service),
	}

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:         server.Router(),
		Controller:     controller,
		API:            executor,
		BasePath:       cfg.Server.BasePath,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "datascope ready: http://localhost%s%s\n", cfg.Server.Addr, cfg.Server.BasePath)
	return server.Serve(cfg.Server.Addr)
}

func (cmd *inspectCmd) Run(ctx context.Context) error {
	f, err := os.Open(cmd.Path)
	if err != nil {
		return fmt.Errorf("datascope: open %s: %w", cmd.Path, err)
	}
	defer f.Close()

	service := explorer.NewService(explorer.Options{})
	if _, err := service.Upload(ctx, cmd.Path, f); err != nil {
		return err
	}
	report, err := service.Report(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "file\t%s\n", report.Dataset.FileName)
	fmt.Fprintf(w, "rows\t%d\n", report.Overview.Rows)
	fmt.Fprintf(w, "columns\t%d\n", report.Overview.Cols)
	fmt.Fprintf(w, "missing values\t%d\n", report.Overview.Missing)
	fmt.Fprintf(w, "duplicate rows\t%d\n", report.Overview.Duplicates)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "column\ttype\tnon-null")
	for _, col := range report.Schema {
		fmt.Fprintf(w, "%s\t%s\t%d\n", col.Name, col.Type, col.NonNull)
	}

	if len(report.Numeric) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "column\tcount\tmean\tstd\tmin\t25%\t50%\t75%\tmax")
		for _, s := range report.Numeric {
			fmt.Fprintf(w, "%s\t%d\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\n",
				s.Column, s.Count, s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max)
		}
	} else {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "no numerical data available to summarize")
	}

	if len(report.Categorical) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "column\tcount\tunique\ttop\tfreq")
		for _, s := range report.Categorical {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\n", s.Column, s.Count, s.Unique, s.Top, s.Frequency)
		}
	} else {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "no non-numerical data available to summarize")
	}
	return w.Flush()
}
