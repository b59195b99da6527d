package reporting

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/mojomark/mojomark/internal/compare"
	"github.com/mojomark/mojomark/internal/results"
)

// markdown converts report bodies. Raw HTML is allowed because the
// builders emit styled spans.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

type card struct {
	Label string
	Value int
	Class string
}

type page struct {
	Title   string
	Heading string
	Cards   []card
	Body    template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
:root {
  --accent: #ff5a1f;
  --fg: #1f2328;
  --muted: #656d76;
  --bg: #ffffff;
  --border: #d0d7de;
  --good: #1a7f37;
  --warn: #9a6700;
  --bad: #cf222e;
}
body { margin: 0; background: var(--bg); color: var(--fg); font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif; line-height: 1.5; }
main { max-width: 1100px; margin: 0 auto; padding: 2rem; }
h1 { border-bottom: 3px solid var(--accent); padding-bottom: .5rem; }
h2 { margin-top: 2rem; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; font-variant-numeric: tabular-nums; }
th, td { border: 1px solid var(--border); padding: .4rem .75rem; }
th { background: #f6f8fa; }
tbody tr:nth-child(even) { background: #fafbfc; }
blockquote { margin: 1rem 0; padding: .5rem 1rem; border-left: 4px solid var(--warn); background: #fff8c5; }
code { background: #f6f8fa; padding: .1rem .3rem; border-radius: 4px; }
.summary { display: flex; flex-wrap: wrap; gap: 1rem; margin: 1.5rem 0; }
.summary-card { flex: 1; min-width: 140px; padding: 1rem; border: 1px solid var(--border); border-top: 4px solid var(--accent); border-radius: 8px; }
.summary-card .value { font-size: 2rem; font-weight: 600; }
.summary-card .label { color: var(--muted); }
.card-improved { border-top-color: var(--good); }
.card-stable { border-top-color: var(--muted); }
.card-warning { border-top-color: var(--warn); }
.card-regression { border-top-color: var(--bad); }
.delta-negative { color: var(--good); font-weight: 600; }
.delta-positive { color: var(--bad); font-weight: 600; }
.delta-neutral { color: var(--muted); }
.badge { display: inline-block; padding: .1rem .6rem; border-radius: 999px; font-size: .85em; font-weight: 600; }
.badge-improved { background: #dafbe1; color: var(--good); }
.badge-stable { background: #eaeef2; color: var(--muted); }
.badge-warning { background: #fff8c5; color: var(--warn); }
.badge-regression { background: #ffebe9; color: var(--bad); }
footer { margin-top: 2rem; color: var(--muted); font-size: .85em; }
</style>
</head>
<body>
<main>
<h1>{{.Heading}}</h1>
<div class="summary">
{{- range .Cards}}
<div class="summary-card {{.Class}}"><div class="value">{{.Value}}</div><div class="label">{{.Label}}</div></div>
{{- end}}
</div>
{{.Body}}
<footer>Generated by mojomark</footer>
</main>
</body>
</html>
`))

// RunHTML renders a single result set as a standalone page.
func RunHTML(set *results.ResultSet) (string, error) {
	samples := 0
	for _, s := range set.Benchmarks {
		samples += len(s.SamplesNs)
	}
	return renderPage(page{
		Title:   "mojomark — Mojo " + set.MojoVersion,
		Heading: runHeading(set),
		Cards: []card{
			{Label: "Benchmarks", Value: len(set.Benchmarks)},
			{Label: "Categories", Value: set.Categories()},
			{Label: "Samples", Value: samples},
		},
	}, runMarkdown(set, mdOptions{html: true}))
}

// ComparisonHTML renders the diffs between two result sets as a
// standalone page.
func ComparisonHTML(base, target *results.ResultSet, diffs []compare.Diff, t compare.Thresholds) (string, error) {
	summary := compare.Summarize(diffs)
	cards := make([]card, 0, len(compare.Statuses))
	for _, st := range compare.Statuses {
		cards = append(cards, card{Label: Title(st), Value: summary[st], Class: "card-" + st.String()})
	}
	return renderPage(page{
		Title:   fmt.Sprintf("mojomark — Mojo %s vs %s", base.MojoVersion, target.MojoVersion),
		Heading: comparisonHeading(base, target),
		Cards:   cards,
	}, comparisonMarkdown(base, target, diffs, t, mdOptions{html: true}))
}

func renderPage(p page, body string) (string, error) {
	var md bytes.Buffer
	if err := markdown.Convert([]byte(body), &md); err != nil {
		return "", fmt.Errorf("converting report markdown: %w", err)
	}
	p.Body = template.HTML(md.String()) //nolint:gosec // produced by goldmark from our own markdown

	var out bytes.Buffer
	if err := pageTemplate.Execute(&out, p); err != nil {
		return "", fmt.Errorf("rendering report page: %w", err)
	}
	return out.String(), nil
}
