package http

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const dashboardTemplate = "dashboard.html.tmpl"

var templateFuncs = template.FuncMap{
	"angle": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
}

// Templates parses the embedded page templates.
func Templates() *template.Template {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic("failed to open templates: " + err.Error())
	}
	return template.Must(template.New(dashboardTemplate).Funcs(templateFuncs).ParseFS(sub, "*.tmpl"))
}
