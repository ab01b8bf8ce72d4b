// Copyright 2026 Chainguard, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package output

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/rpminspect/rpminspect-sub001/pkg/results"
)

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
<style>
body { font-family: sans-serif; }
table { border-collapse: collapse; width: 100%; }
td, th { border: 1px solid #ccc; padding: 4px; text-align: left; vertical-align: top; }
.OK { color: green; } .INFO { color: teal; } .VERIFY { color: darkorange; } .BAD { color: red; }
pre { white-space: pre-wrap; margin: 0; }
</style>
</head>
<body>
<h1>{{ .Title }}</h1>
{{- range .Inspections }}
<h2 id="{{ .Name }}">{{ .Name }}</h2>
{{- if .Records }}
<table>
<tr><th>Result</th><th>Waiver Authorization</th><th>Message</th><th>Remedy</th></tr>
{{- range .Records }}
<tr>
<td class="{{ .Verdict }}">{{ .Verdict }}</td>
<td>{{ .Waiver }}</td>
<td>{{ .Message }}{{ if .Screendump }}<pre>{{ .Screendump }}</pre>{{ end }}</td>
<td>{{ .Remedy }}</td>
</tr>
{{- end }}
</table>
{{- else }}
<p>No results.</p>
{{- end }}
{{- end }}
</body>
</html>
`

var htmlReport = template.Must(template.New("report").Parse(htmlTemplate))

type htmlInspection struct {
	Name    string
	Records []results.Record
}

type htmlData struct {
	Title       string
	Inspections []htmlInspection
}

func renderHTML(w io.Writer, r *results.Report, o options) error {
	data := htmlData{Title: o.title}
	for name, recs := range r.All() {
		data.Inspections = append(data.Inspections, htmlInspection{Name: name, Records: recs})
	}

	var b strings.Builder
	if err := htmlReport.Execute(&b, data); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
