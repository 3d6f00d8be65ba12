package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/david/licita-radar/internal/config"
	"github.com/david/licita-radar/internal/dashboard"
	"github.com/david/licita-radar/internal/format"
	"github.com/david/licita-radar/internal/loader"
	"github.com/david/licita-radar/internal/models"
	"github.com/david/licita-radar/internal/render"
)

var Cmd = &cobra.Command{
	Use:          "export",
	Short:        "Render the opportunities dashboard to a static page or a terminal table",
	RunE:         run,
	SilenceUsage: true,
}

var args struct {
	config  string
	baseURL string
	query   string
	sort    string
	dir     string
	out     string
	table   bool
	limit   int
	timeout time.Duration
}

func main() {
	if err := Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, argv []string) error {
	cfg, err := config.Load(args.config)
	if err != nil {
		return err
	}
	if args.baseURL != "" {
		cfg.Data.BaseURL = args.baseURL
	}

	loc, err := time.LoadLocation(cfg.Display.Timezone)
	if err != nil {
		log.Printf("Unknown timezone %q, using %s", cfg.Display.Timezone, format.Santiago)
		loc = format.Santiago
	}

	fetcher, err := loader.NewHTTPFetcher(cfg.Data.BaseURL, cfg.Data.UserAgent)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if args.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, args.timeout)
		defer cancel()
	}

	ctrl := dashboard.New(loc)
	loadErr := ctrl.Load(ctx, fetcher, cfg.Data.MetaPath, cfg.Data.OpportunitiesPath)
	view := ctrl.Apply(args.query, dashboard.ParseSort(args.sort, args.dir))

	if args.table {
		if loadErr != nil {
			pterm.Error.WithWriter(cmd.ErrOrStderr()).Printfln("No se pudieron cargar los datos: %v", loadErr)
			return loadErr
		}
		printTable(cmd.OutOrStdout(), view, args.limit)
		return nil
	}

	renderer, err := render.New(render.Options{
		Title:      cfg.Title,
		IssueHost:  cfg.Display.IssueHost,
		IssueLabel: cfg.Display.IssueLabel,
		BannerHTML: cfg.Display.BannerHTML,
	})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := renderer.Page(&buf, view); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	if err := writeOutput(cmd.OutOrStdout(), args.out, buf.Bytes()); err != nil {
		return err
	}

	// Status lines go to stderr so "--out -" leaves clean HTML on stdout.
	// The error page is still written so the published site explains itself.
	if loadErr != nil {
		pterm.Error.WithWriter(cmd.ErrOrStderr()).Printfln("Página de error escrita en %s: %v", args.out, loadErr)
		return loadErr
	}
	pterm.Success.WithWriter(cmd.ErrOrStderr()).Printfln("%d oportunidades escritas en %s", len(view.Rows), args.out)
	return nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func printTable(w io.Writer, v *dashboard.View, limit int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Score", "Rev", "Tipo", "Código", "Oportunidad", "Comprador", "Monto", "Cierre"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Oportunidad", WidthMax: 60},
		{Name: "Comprador", WidthMax: 32},
	})

	for i, o := range v.Rows {
		if limit > 0 && i >= limit {
			break
		}
		r := render.NewRow(o, render.IssueLink{}, v.Location())
		reviewed := ""
		if r.Reviewed {
			reviewed = pterm.Green("✔")
		}
		t.AppendRow(table.Row{colorScore(o.Score, r.Score), reviewed, r.Category, r.ID, r.Title, r.Buyer, r.Amount, r.CloseAt})
	}

	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d de %d", len(v.Rows), v.Summary.Total.Known)})
	t.Render()
	fmt.Fprintln(w, v.SummaryLine())
}

func colorScore(score models.Score, text string) string {
	switch s := score.Float(); {
	case s >= 8:
		return pterm.Green(text)
	case s >= 4:
		return pterm.Yellow(text)
	default:
		return text
	}
}

func init() {
	flags := Cmd.Flags()

	flags.StringVar(
		&args.config,
		"config",
		os.Getenv("DASHBOARD_CONFIG"),
		"Path to the dashboard YAML config (embedded defaults when empty)",
	)
	flags.StringVar(
		&args.baseURL,
		"base-url",
		"",
		"Override the data base URL (http(s)://, file:// or a directory)",
	)
	flags.StringVar(
		&args.query,
		"q",
		"",
		"Search text matched against code, title and buyer",
	)
	flags.StringVar(
		&args.sort,
		"sort",
		string(dashboard.DefaultSort.Key),
		"Sort column key",
	)
	flags.StringVar(
		&args.dir,
		"dir",
		dashboard.DefaultSort.Dir.String(),
		"Sort direction (asc or desc)",
	)
	flags.StringVarP(
		&args.out,
		"out",
		"o",
		"index.html",
		"Output file for the rendered page, - for stdout",
	)
	flags.BoolVar(
		&args.table,
		"table",
		false,
		"Print a terminal table instead of writing HTML",
	)
	flags.IntVar(
		&args.limit,
		"limit",
		50,
		"Maximum rows in table mode (0 for all)",
	)
	flags.DurationVar(
		&args.timeout,
		"timeout",
		0,
		"Overall time limit for fetching the data files (0 waits as long as the host takes)",
	)
}
