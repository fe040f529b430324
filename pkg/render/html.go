package render

import (
	"fmt"
	"html/template"
	"io"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Star Wars Data</title>
<style>.hidden { display: none; }</style>
</head>
<body>
<h1>Star Wars Data</h1>
<nav>
  <form method="post" action="/load/characters"><button type="submit">Characters</button></form>
  <form method="post" action="/load/planets"><button type="submit">Planets</button></form>
  <form method="post" action="/page/previous"><button type="submit"{{if le .Page 1}} disabled{{end}}>Previous</button></form>
  <span id="{{.PageDisplay.ID}}"{{if .PageDisplay.Hidden}} class="hidden"{{end}}>Page {{.Page}}</span>
  <form method="post" action="/page/next"><button type="submit"{{if not .NextEnabled}} disabled{{end}}>Next</button></form>
</nav>
<div id="{{.Loading.ID}}"{{if .Loading.Hidden}} class="hidden"{{end}}>Loading...</div>
<div id="{{.Error.ID}}" role="alert"{{if .Error.Hidden}} class="hidden"{{end}}>{{.ErrorMessage}}</div>
{{range .Tables}}
<table id="{{.ID}}"{{if .Hidden}} class="hidden"{{end}}>
  <caption>{{.Title}}</caption>
  <thead><tr><th>{{index .Headers 0}}</th><th>{{index .Headers 1}}</th></tr></thead>
  <tbody id="{{.ContainerID}}">
{{- range .Rows}}
    <tr><td>{{index .Cells 0}}</td><td>{{index .Cells 1}}</td></tr>
{{- end}}
  </tbody>
</table>
{{end}}
</body>
</html>
`))

type pageView struct {
	Snapshot
	NextEnabled bool
}

// HTML writes the document as a full HTML page. All record values are
// escaped by html/template.
func HTML(w io.Writer, s Snapshot) error {
	view := pageView{
		Snapshot:    s,
		NextEnabled: s.HasNext() || !anyVisible(s.Tables),
	}
	if err := pageTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func anyVisible(tables []Table) bool {
	for _, t := range tables {
		if !t.Hidden {
			return true
		}
	}
	return false
}
