package resume

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// pageTemplate lays the document out on a single A4 page. The accent colour
// and font come from the selected Template.
const pageTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{with .Doc.PersonalInfo.FullName}}{{.}}{{else}}Resume{{end}}</title>
    <style>
        @page { size: A4; margin: 0; }
        body {
            margin: 0;
            font-family: '{{.Font}}', sans-serif;
            font-size: 10.5pt;
            color: #1f2937;
        }
        .a4-page {
            width: 794px; /* A4 @ 96 DPI */
            min-height: 1122px;
            padding: 48px;
            box-sizing: border-box;
        }
        h1 { margin: 0; color: {{.Accent}}; font-size: 24pt; }
        h2 {
            margin: 24px 0 8px;
            color: {{.Accent}};
            font-size: 12pt;
            text-transform: uppercase;
            border-bottom: 1px solid {{.Accent}};
        }
        .contact { margin-top: 4px; font-size: 9.5pt; }
        .contact span + span::before { content: " · "; }
        .entry { margin-bottom: 12px; }
        .entry-head { display: flex; justify-content: space-between; font-weight: 600; }
        .entry-sub { font-style: italic; }
        .skills span {
            display: inline-block;
            margin: 0 6px 6px 0;
            padding: 2px 8px;
            border: 1px solid {{.Accent}};
            border-radius: 10px;
        }
        .rich { white-space: pre-line; margin: 4px 0; }
        .rich ul, .rich ol { margin: 2px 0; padding-left: 18px; white-space: normal; }
    </style>
</head>
<body class="template-{{.TemplateID}}">
<div class="a4-page">
    {{with .Doc.PersonalInfo}}
    <h1>{{.FullName}}</h1>
    <div class="contact">
        {{- with .Email}}<span>{{.}}</span>{{end}}
        {{- with .Phone}}<span>{{.}}</span>{{end}}
        {{- with .Address}}<span>{{.}}</span>{{end}}
        {{- with .LinkedIn}}<span>{{.}}</span>{{end}}
        {{- with .Website}}<span>{{.}}</span>{{end}}
    </div>
    {{end}}

    {{with .Doc.Summary}}
    <h2>Summary</h2>
    <div class="rich">{{rich .}}</div>
    {{end}}

    {{if .Experience}}
    <h2>Experience</h2>
    {{range .Experience}}
    <div class="entry">
        <div class="entry-head"><span>{{.Title}}</span><span>{{dates .StartDate .EndDate}}</span></div>
        <div class="entry-sub">{{.Company}}{{with .Location}}, {{.}}{{end}}</div>
        {{with .Description}}<div class="rich">{{rich .}}</div>{{end}}
    </div>
    {{end}}
    {{end}}

    {{if .Education}}
    <h2>Education</h2>
    {{range .Education}}
    <div class="entry">
        <div class="entry-head"><span>{{.Degree}}{{with .Field}} in {{.}}{{end}}</span><span>{{dates .StartDate .EndDate}}</span></div>
        <div class="entry-sub">{{.Institution}}</div>
        {{with .Description}}<div class="rich">{{rich .}}</div>{{end}}
    </div>
    {{end}}
    {{end}}

    {{with .Doc.Skills}}
    <h2>Skills</h2>
    <div class="skills">{{range .}}<span>{{.}}</span>{{end}}</div>
    {{end}}
</div>
</body>
</html>
`

// richText keeps the inline formatting the editor can produce and strips
// everything else, attributes included.
var richText = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "u", "br", "ul", "ol", "li")
	return p
}()

var page = template.Must(template.New("resume").Funcs(template.FuncMap{
	"rich": func(s string) template.HTML {
		return template.HTML(richText.Sanitize(s))
	},
	"dates": func(start, end string) string {
		switch {
		case start == "" && end == "":
			return ""
		case end == "":
			return start
		case start == "":
			return end
		}
		return start + " – " + end
	},
}).Parse(pageTemplate))

type pageData struct {
	Doc        *Document
	TemplateID string
	Accent     template.CSS
	Font       template.CSS
	Experience []Experience
	Education  []Education
}

// RenderHTML renders d with the layout of tpl. Entries with no content at
// all are left out of the page.
func RenderHTML(d *Document, tpl Template) ([]byte, error) {
	data := pageData{
		Doc:        d,
		TemplateID: tpl.ID,
		Accent:     template.CSS(tpl.accent),
		Font:       template.CSS(tpl.font),
	}
	for _, e := range d.Experience {
		if e.Title != "" || e.Company != "" || e.Description != "" {
			data.Experience = append(data.Experience, e)
		}
	}
	for _, e := range d.Education {
		if e.Institution != "" || e.Degree != "" || e.Description != "" {
			data.Education = append(data.Education, e)
		}
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render resume html: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName is the suggested download name for a rendered resume.
func FileName(d *Document) string {
	name := strings.TrimSpace(d.PersonalInfo.FullName)
	if name == "" {
		return "resume.pdf"
	}
	var b strings.Builder
	for _, field := range strings.Fields(strings.ToLower(name)) {
		part := strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}
			return -1
		}, field)
		if part == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('-')
		}
		b.WriteString(part)
	}
	if b.Len() == 0 {
		return "resume.pdf"
	}
	return b.String() + "-resume.pdf"
}
