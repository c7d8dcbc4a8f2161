package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/delaneyj/linkparty/distlink"
	"github.com/delaneyj/linkparty/dom"
	"github.com/delaneyj/linkparty/value"
)

var profile = flag.String("profile", "default.pgo", "write a cpu profile to this file, empty disables it")

func main() {
	flag.Parse()

	if *profile != "" {
		f, err := os.Create(*profile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	log.Printf("warming up")
	benchmarkFanOut(false)
	benchmarkFanOut(true)
	benchmarkTwoWay(true)
}

var (
	ww    = []int{1, 10, 100, 1_000}
	hh    = []int{1, 10, 100}
	iters = 100
)

// page builds a body with w spans, s0 to s(w-1), and one input.
func page(w int) *dom.Document {
	sb := strings.Builder{}
	sb.WriteString("<html><body><input id=\"in\">")
	for i := 0; i < w; i++ {
		fmt.Fprintf(&sb, "<span id=\"s%d\"></span>", i)
	}
	sb.WriteString("</body></html>")
	doc, err := dom.ParseString(sb.String())
	if err != nil {
		log.Panic(err)
	}
	return doc
}

// nested returns h objects chained through "n", the innermost holding x.
func nested(h int, x any) *value.Object {
	o := value.New("x", x)
	for i := 1; i < h; i++ {
		o = value.New("n", o)
	}
	return o
}

func leaf(root *distlink.ObjectLink, h int) *distlink.PrimitiveLink {
	l := root.Object("src")
	for i := 1; i < h; i++ {
		l = l.Object("n")
	}
	return l.Primitive("x")
}

func bindSpans(p *distlink.PrimitiveLink, w int) {
	for i := 0; i < w; i++ {
		if err := p.Select(fmt.Sprintf("#s%d", i)); err != nil {
			log.Panic(err)
		}
		if _, err := p.BindText(); err != nil {
			log.Panic(err)
		}
	}
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})
	return tbl
}

func appendCalc(tbl table.Writer, name string, tach *tachymeter.Tachymeter) {
	calc := tach.Calc()
	tbl.AppendRow(table.Row{
		name,
		calc.Time.Avg,
		calc.Time.Min,
		calc.Time.P75,
		calc.Time.P99,
		calc.Time.Max,
	})
}

// benchmarkFanOut assigns a fresh object at the root, which is copied down
// h levels and rendered into w text bindings.
func benchmarkFanOut(shouldRender bool) {
	tbl := newTable("Link fan-out")

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			doc := page(w)
			s := distlink.NewSession(doc)
			model := value.New("src", nested(h, 0))
			root, err := s.Bind(model)
			if err != nil {
				log.Panic(err)
			}
			x := leaf(root, h)
			bindSpans(x, w)

			next := make([]*value.Object, iters)
			for i := range next {
				next[i] = nested(h, i+1)
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				if err := model.Set("src", next[i]); err != nil {
					log.Panic(err)
				}
				tach.AddTime(time.Since(start))
			}

			if got, want := doc.Query(fmt.Sprintf("#s%d", w-1)).Text(), fmt.Sprint(iters); got != want {
				log.Panicf("fan-out %dx%d rendered %q, want %q", w, h, got, want)
			}
			s.Close()

			appendCalc(tbl, fmt.Sprintf("propagate: %d * %d", w, h), tach)
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

// benchmarkTwoWay types into a two-way bound input and measures the round
// trip through the link to w text bindings.
func benchmarkTwoWay(shouldRender bool) {
	tbl := newTable("Two-way input")

	for _, w := range ww {
		tach := tachymeter.New(&tachymeter.Config{Size: iters})

		doc := page(w)
		s := distlink.NewSession(doc)
		root, err := s.Bind(value.New("x", ""))
		if err != nil {
			log.Panic(err)
		}
		x := root.Primitive("x")
		bindSpans(x, w)
		if err := x.Select("#in"); err != nil {
			log.Panic(err)
		}
		if _, err := x.BindTwoWay(distlink.DefaultEvent); err != nil {
			log.Panic(err)
		}
		in := doc.Query("#in")

		for i := 0; i < iters; i++ {
			typed := fmt.Sprint("v", i)
			start := time.Now()
			if err := doc.Input(in, distlink.DefaultEvent, typed); err != nil {
				log.Panic(err)
			}
			tach.AddTime(time.Since(start))
		}
		s.Close()

		appendCalc(tbl, fmt.Sprintf("input: %d", w), tach)
	}

	if shouldRender {
		tbl.Render()
	}
}
