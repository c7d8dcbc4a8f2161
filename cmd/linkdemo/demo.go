package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/delaneyj/linkparty/distlink"
	"github.com/delaneyj/linkparty/dom"
	"github.com/delaneyj/linkparty/internal/config"
	"github.com/delaneyj/linkparty/manifest"
	"github.com/delaneyj/linkparty/value"
)

// demo is one bound page: the document, its model and the session linking
// them.
type demo struct {
	doc     *dom.Document
	model   *value.Object
	session *distlink.Session
	root    *distlink.ObjectLink
	sheets  []string
}

func load(cfg config.Config, log logr.Logger) (*demo, error) {
	f, err := os.Open(cfg.Page)
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer f.Close()
	doc, err := dom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing page %s: %w", cfg.Page, err)
	}
	var sheets []string
	for _, path := range cfg.Styles {
		css, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading stylesheet: %w", err)
		}
		if _, err := doc.AddStylesheet(filepath.Base(path), string(css)); err != nil {
			return nil, fmt.Errorf("parsing stylesheet %s: %w", path, err)
		}
		sheets = append(sheets, filepath.Base(path))
	}

	data, err := os.ReadFile(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	model, err := value.DecodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", cfg.Model, err)
	}

	d := &demo{
		doc:     doc,
		model:   model,
		session: distlink.NewSession(doc, distlink.WithLogger(log)),
		sheets:  sheets,
	}
	if d.root, err = d.session.Bind(model); err != nil {
		d.session.Close()
		return nil, err
	}
	if cfg.Manifest != "" {
		m, err := manifest.Load(cfg.Manifest)
		if err != nil {
			d.session.Close()
			return nil, err
		}
		if err := m.Apply(d.root); err != nil {
			d.session.Close()
			return nil, err
		}
	}
	log.V(1).Info("loaded",
		"page", cfg.Page,
		"links", d.session.Registry().Len(),
		"bindings", len(d.session.Bindings()),
		"fingerprint", fmt.Sprintf("%016x", doc.Fingerprint()),
	)
	return d, nil
}

// render returns the page followed by every external stylesheet.
func (d *demo) render() string {
	var sb strings.Builder
	sb.WriteString(d.doc.String())
	for _, name := range d.sheets {
		fmt.Fprintf(&sb, "\n/* %s */\n%s\n", name, d.doc.Sheet(name))
	}
	return sb.String()
}

func (d *demo) close() { d.session.Close() }

// lineDiff prints the lines removed from a with "-" and the lines added in b
// with "+". Unchanged lines are left out. Empty when a equals b.
func lineDiff(a, b string) string {
	if a == b {
		return ""
	}
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		var mark string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			mark = "+"
		case diffmatchpatch.DiffDelete:
			mark = "-"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(mark)
			sb.WriteString(strings.TrimSuffix(line, "\n"))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
