package transcript

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/Dizey-pro/Students-results/src/qrcode"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

var recordTmpl = template.Must(template.New("record").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Academic Record {{.StudentID}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #1f2937; margin: 32px; }
h1 { font-size: 20px; margin-bottom: 4px; }
h2 { font-size: 16px; border-bottom: 1px solid #d1d5db; padding-bottom: 4px; }
table { width: 100%; border-collapse: collapse; margin-bottom: 16px; }
th, td { text-align: left; padding: 4px 8px; border-bottom: 1px solid #e5e7eb; font-size: 12px; }
.green { color: #15803d; } .blue { color: #1d4ed8; } .yellow { color: #a16207; }
.qr { float: right; width: 96px; height: 96px; }
.orange { color: #c2410c; } .red { color: #b91c1c; }
</style>
</head>
<body>
<h1>Official Academic Record</h1>
{{if .QR}}<img class="qr" src="{{.QR}}" alt="Record QR code">{{end}}
<p>{{if .StudentName}}{{.StudentName}} &middot; {{end}}{{.StudentID}}</p>
{{if not .Years}}<p>` + EmptyMessage + `</p>{{end}}
{{range .Years}}
<h2>{{.Year}}</h2>
{{range .Terms}}
<h3>{{.Term}} &middot; Average {{.AverageText}}%</h3>
<table>
<tr><th>Subject</th><th>Score</th><th>Grade</th><th>Remark</th></tr>
{{range .Rows}}<tr><td>{{.Subject}}</td><td>{{.Score}}%</td><td class="{{.Tone}}">{{.Grade}}</td><td>{{.Remark}}</td></tr>
{{end}}</table>
{{end}}
{{end}}
</body>
</html>
`))

const qrSize = 256

type recordView struct {
	Transcript
	QR template.URL
}

// Fingerprint is the text encoded in the record's QR code.
func Fingerprint(t Transcript) string {
	results := 0
	for _, y := range t.Years {
		for _, term := range y.Terms {
			results += len(term.Rows)
		}
	}
	return fmt.Sprintf("%s|%s|%d years|%d results", t.StudentID, t.StudentName, len(t.Years), results)
}

// RenderHTML renders the printable record of t. Records with results carry a
// QR code of their Fingerprint.
func RenderHTML(t Transcript) (string, error) {
	view := recordView{Transcript: t}
	if len(t.Years) > 0 {
		uri, err := qrcode.DataURI(Fingerprint(t), qrSize)
		if err != nil {
			return "", err
		}
		view.QR = template.URL(uri)
	}

	var buf bytes.Buffer
	if err := recordTmpl.Execute(&buf, view); err != nil {
		return "", errors.Wrap(err, "render transcript")
	}
	return buf.String(), nil
}

// Printer turns rendered HTML into PDF with headless Chrome.
type Printer struct {
	ChromePath string
	Timeout    time.Duration
}

func (p Printer) PDF(ctx context.Context, html string) ([]byte, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if p.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(p.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	var pdf []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "print transcript pdf")
	}
	return pdf, nil
}
