package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-prefs/pkg/form"
	"github.com/goliatone/go-prefs/pkg/manifest"
	"github.com/goliatone/go-prefs/pkg/settings"
	"github.com/goliatone/go-prefs/pkg/snapshot"
	"github.com/goliatone/go-prefs/pkg/surfaces/html"
	"github.com/goliatone/go-prefs/pkg/surfaces/tui"
)

type options struct {
	manifest   string
	openAPI    string
	schema     string
	snapshot   string
	mode       string
	output     string
	addr       string
	autoSave   bool
	capitalize bool
	groups     string
	variant    string
	title      string
	readonly   bool
	verbose    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.manifest, "manifest", "", "YAML or JSON settings manifest")
	flag.StringVar(&opts.openAPI, "openapi", "", "OpenAPI document declaring the settings schema")
	flag.StringVar(&opts.schema, "openapi-schema", "", "component schema name (optional when the document has one)")
	flag.StringVar(&opts.snapshot, "snapshot", "", "snapshot file to load and, in edit/serve mode, save")
	flag.StringVar(&opts.mode, "mode", "html", "html, show, edit or serve")
	flag.StringVar(&opts.output, "output", "", "output file for html mode (stdout if empty)")
	flag.StringVar(&opts.addr, "addr", ":8080", "listen address for serve mode")
	flag.BoolVar(&opts.autoSave, "autosave", false, "commit every edit immediately")
	flag.BoolVar(&opts.capitalize, "capitalize", true, "derive labels from entry names")
	flag.StringVar(&opts.groups, "groups", "", "comma separated row classes to render")
	flag.StringVar(&opts.variant, "theme-variant", "", "variant of the manifest theme")
	flag.StringVar(&opts.title, "title", "Preferences", "HTML form title")
	flag.BoolVar(&opts.readonly, "readonly", false, "render values without inputs (html, serve)")
	flag.BoolVar(&opts.verbose, "v", false, "debug logging")
	flag.Parse()

	ctx := context.Background()
	if err := run(ctx, opts); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			os.Exit(130)
		}
		log.Fatalf("prefs-cli: %v", err)
	}
}

func run(ctx context.Context, opts options) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	m, err := loadManifest(ctx, opts)
	if err != nil {
		return err
	}
	reg, err := m.Build(settings.WithLogger(logger))
	if err != nil {
		return err
	}
	reg.OnError(func(err error) {
		log.Printf("settings: %v", err)
	})

	if opts.snapshot != "" {
		if err := loadSnapshot(reg, opts.snapshot); err != nil {
			return err
		}
		if opts.mode == "edit" || opts.mode == "serve" {
			reg.OnChange(func(s snapshot.Snapshot) {
				if err := saveSnapshot(s, opts.snapshot); err != nil {
					log.Printf("save snapshot: %v", err)
				}
			})
		}
	}

	formOpts := []form.Option{form.WithLogger(logger)}
	if opts.capitalize {
		formOpts = append(formOpts, form.WithCapitalize())
	}
	if opts.groups != "" {
		formOpts = append(formOpts, form.WithGroups(strings.Split(opts.groups, ",")...))
	}

	switch opts.mode {
	case "html":
		return renderHTML(m, reg, formOpts, opts, logger)
	case "show":
		surface := tui.New(tui.WithLogger(logger))
		if err := form.New(reg, formOpts...).Render(surface, true); err != nil {
			return err
		}
		return surface.Print(ctx)
	case "edit":
		surface := tui.New(tui.WithLogger(logger), tui.WithTheme(tui.Theme{ErrorPrefix: "! "}))
		if opts.autoSave {
			formOpts = append(formOpts, form.WithAutoSave(), form.WithAutoSaveErrorHandler(surface.AutoSaveError))
		}
		return surface.Run(ctx, form.New(reg, formOpts...))
	case "serve":
		return serve(m, reg, formOpts, opts, logger)
	default:
		return fmt.Errorf("unknown mode %q", opts.mode)
	}
}

func loadManifest(ctx context.Context, opts options) (*manifest.Manifest, error) {
	switch {
	case opts.manifest != "":
		return manifest.Load(opts.manifest)
	case opts.openAPI != "":
		data, err := os.ReadFile(opts.openAPI)
		if err != nil {
			return nil, fmt.Errorf("read openapi document: %w", err)
		}
		return manifest.FromOpenAPI(ctx, data, opts.schema)
	default:
		return nil, errors.New("one of -manifest or -openapi is required")
	}
}

func loadSnapshot(reg *settings.Registry, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	s, err := snapshot.Decode(data, snapshot.FormatFromPath(path))
	if err != nil {
		log.Printf("ignoring unreadable snapshot %s: %v", path, err)
		return nil
	}
	return reg.LoadSnapshot(s)
}

func saveSnapshot(s snapshot.Snapshot, path string) error {
	data, err := s.Encode(snapshot.FormatFromPath(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func surfaceOptions(m *manifest.Manifest, opts options, logger *slog.Logger, extra ...html.Option) ([]html.Option, error) {
	out := []html.Option{html.WithTitle(opts.title), html.WithLogger(logger)}
	th, err := m.ThemeManifest()
	if err != nil {
		return nil, err
	}
	if th != nil {
		themes, err := html.Themes(th)
		if err != nil {
			return nil, err
		}
		out = append(out, html.WithTheme(themes, th.Name, opts.variant))
	}
	return append(out, extra...), nil
}

func renderHTML(m *manifest.Manifest, reg *settings.Registry, formOpts []form.Option, opts options, logger *slog.Logger) error {
	surfaceOpts, err := surfaceOptions(m, opts, logger)
	if err != nil {
		return err
	}
	surface, err := html.New(surfaceOpts...)
	if err != nil {
		return err
	}
	if err := form.New(reg, formOpts...).Render(surface, opts.readonly); err != nil {
		return err
	}
	markup, err := surface.Render()
	if err != nil {
		return err
	}
	if opts.output == "" {
		fmt.Println(markup)
		return nil
	}
	if err := os.WriteFile(opts.output, []byte(markup), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("Settings written to %s\n", opts.output)
	return nil
}

func serve(m *manifest.Manifest, reg *settings.Registry, formOpts []form.Option, opts options, logger *slog.Logger) error {
	surfaceOpts, err := surfaceOptions(m, opts, logger, html.WithAction("/settings"))
	if err != nil {
		return err
	}
	surface, err := html.New(surfaceOpts...)
	if err != nil {
		return err
	}

	var handler *html.Handler
	if opts.autoSave {
		formOpts = append(formOpts, form.WithAutoSave(), form.WithAutoSaveErrorHandler(func(err error) {
			handler.AutoSaveError(err)
		}))
	}
	var handlerOpts []html.HandlerOption
	if opts.readonly {
		handlerOpts = append(handlerOpts, html.ReadOnly())
	}
	handler = html.NewHandler(form.New(reg, formOpts...), surface, handlerOpts...)

	router := mux.NewRouter()
	handler.Register(router, "settings")
	router.Handle("/", http.RedirectHandler("/settings", http.StatusFound))

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("serving settings on %s/settings", opts.addr)
	return srv.ListenAndServe()
}
