package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/delaneyj/linkparty/internal/config"
	"github.com/delaneyj/linkparty/internal/watcher"
	"github.com/delaneyj/linkparty/manifest"
)

const (
	configKey = "config"
	scriptKey = "script"
	diffKey   = "diff"
)

func main() {
	cmd := &cli.Command{
		Name:  "linkdemo",
		Usage: "Bind a YAML model to an HTML page and watch it render",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configKey,
				Aliases: []string{"c"},
				Usage:   "Config file, defaults to ./linkdemo.yaml when present",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "render",
				Usage:  "Print the bound page",
				Action: render,
			},
			{
				Name:   "bindings",
				Usage:  "List every registered binding",
				Action: bindings,
			},
			{
				Name:  "apply",
				Usage: "Run a mutation script against the model and show what changed",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     scriptKey,
						Aliases:  []string{"s"},
						Usage:    "Script of model mutations and simulated input",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  diffKey,
						Usage: "Print a diff of the page instead of the whole page",
						Value: true,
					},
				},
				Action: apply,
			},
			{
				Name:   "watch",
				Usage:  "Re-render whenever an input changes and print the diff",
				Action: watch,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup loads the config and builds the logger it asks for.
func setup(cmd *cli.Command) (config.Config, logr.Logger, error) {
	cfg, err := config.Load(cmd.String(configKey))
	if err != nil {
		return config.Config{}, logr.Discard(), err
	}
	stdr.SetVerbosity(cfg.Log.Verbosity)
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags)).WithName("linkdemo")
	return cfg, logger, nil
}

func render(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	d, err := load(cfg, logger)
	if err != nil {
		return err
	}
	defer d.close()
	_, err = fmt.Fprintln(cmd.Root().Writer, d.render())
	return err
}

func bindings(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	d, err := load(cfg, logger)
	if err != nil {
		return err
	}
	defer d.close()

	table := tablewriter.NewWriter(cmd.Root().Writer)
	table.SetHeader([]string{"path", "kind", "target", "filters"})
	for _, b := range d.session.Bindings() {
		table.Append([]string{
			b.Path,
			b.Kind.String(),
			b.Target,
			fmt.Sprint(b.Filters),
		})
	}
	table.Render()
	return nil
}

func apply(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	script, err := manifest.LoadScript(cmd.String(scriptKey))
	if err != nil {
		return err
	}
	d, err := load(cfg, logger)
	if err != nil {
		return err
	}
	defer d.close()

	before := d.render()
	for i, st := range script.Steps {
		if err := st.Run(d.doc, d.model); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, st, err)
		}
		logger.V(1).Info("step", "index", i, "op", st.String())
	}
	after := d.render()

	out := cmd.Root().Writer
	if !cmd.Bool(diffKey) {
		_, err = fmt.Fprintln(out, after)
		return err
	}
	diff := lineDiff(before, after)
	if diff == "" {
		logger.Info("script left the page unchanged", "steps", len(script.Steps))
		return nil
	}
	_, err = fmt.Fprint(out, diff)
	return err
}

func watch(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	wcfg := watcher.DefaultConfig(cfg.Inputs()...)
	wcfg.DebounceDur = cfg.Watch.Debounce
	w, err := watcher.New(wcfg)
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		return err
	}
	defer w.Stop()

	out := cmd.Root().Writer
	last := ""
	reload := func() {
		d, err := load(cfg, logger)
		if err != nil {
			logger.Error(err, "reload failed")
			return
		}
		defer d.close()
		page := d.render()
		if last == "" {
			fmt.Fprintln(out, page)
		} else if diff := lineDiff(last, page); diff != "" {
			fmt.Fprintf(out, "%s\n%s", strings.Repeat("-", 40), diff)
		}
		last = page
	}

	reload()
	logger.Info("watching", "files", len(cfg.Inputs()), "debounce", cfg.Watch.Debounce)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			reload()
		case err := <-w.Errors():
			logger.Error(err, "watch")
		}
	}
}
