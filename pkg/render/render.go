// Package render writes html fragments for roadmap trees, topic pickers and
// node content. Fragments carry data attributes with the composite node key
// so a client can request the content of a node.
package render

import (
	"html/template"
	"io"

	"github.com/foomo/roadmapserver/roadmap"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

var templates = template.Must(template.New("render").Funcs(template.FuncMap{
	"children": SortChildren,
	"markdown": Markdown,
	"resources": func(class string, v []roadmap.Resource) resourceList {
		return resourceList{Class: class, Resources: v}
	},
}).Parse(`
{{- define "attrs"}}{{if .NodeID}} data-node-id="{{.NodeID}}" data-name-slug="{{.NameSlug}}" data-key="{{.Key}}"{{end}}{{end}}

{{- define "node" -}}
{{if .IsLeaf -}}
<li class="leaf"{{template "attrs" .}}>{{.Label}}</li>
{{- else -}}
<li class="branch"><details{{template "attrs" .}}><summary>{{.Label}}</summary><ul>
{{- range children .}}{{template "node" .}}{{end -}}
</ul></details></li>
{{- end}}
{{- end}}

{{- define "tree" -}}
<div class="roadmap-tree" data-roadmap-slug="{{.Slug}}"><details open><summary>{{.Root.Label}}</summary><ul>
{{- range children .Root}}{{template "node" .}}{{end -}}
</ul></details></div>
{{- end}}

{{- define "topics" -}}
<nav class="roadmap-topics" data-roadmap-slug="{{.Slug}}">
{{- if .Topics}}<ul>
{{- range $i, $t := .Topics}}<li><button type="button" data-node-id="{{$t.NodeID}}" data-name-slug="{{$t.NameSlug}}" data-key="{{$t.Key}}"{{if eq $i 0}} aria-pressed="true"{{end}}>{{$t.Label}}</button></li>{{end -}}
</ul>
{{- else}}<p class="empty">No topics</p>{{end -}}
</nav>
{{- end}}

{{- define "resources" -}}
<ul class="{{.Class}}">
{{- range .Resources}}<li data-type="{{.Type}}"><a href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.Title}}</a></li>{{end -}}
</ul>
{{- end}}

{{- define "content" -}}
<article class="roadmap-content" data-roadmap-slug="{{.RoadmapSlug}}" data-node-id="{{.NodeID}}">
<h2>{{.RoadmapSlug}}</h2>
<div class="description">{{markdown .Description}}</div>
{{- if .Resources}}{{template "resources" (resources "resources" .Resources)}}{{end}}
{{- if .PaidResources}}{{template "resources" (resources "paid-resources" .PaidResources)}}{{end}}
{{- if .Contribution}}<a class="contribution" href="{{.Contribution}}" target="_blank" rel="noopener noreferrer">Contribute</a>{{end}}
</article>
{{- end}}

{{- define "error" -}}
<div class="roadmap-error" role="alert">Error: {{.}}</div>
{{- end}}
`))

type (
	tree struct {
		Slug string
		Root *roadmap.TreeNode
	}
	topics struct {
		Slug   string
		Topics []roadmap.Topic
	}
	resourceList struct {
		Class     string
		Resources []roadmap.Resource
	}
)

// Tree renders the hierarchy as nested disclosure widgets
func Tree(w io.Writer, slug string, root *roadmap.TreeNode) error {
	return templates.ExecuteTemplate(w, "tree", tree{Slug: slug, Root: root})
}

// Topics renders the topic picker, the first topic is preselected
func Topics(w io.Writer, slug string, v []roadmap.Topic) error {
	return templates.ExecuteTemplate(w, "topics", topics{Slug: slug, Topics: v})
}

// Content renders the content panel of a node
func Content(w io.Writer, content *roadmap.NodeContent) error {
	return templates.ExecuteTemplate(w, "content", content)
}

// Error renders an inline error panel
func Error(w io.Writer, message string) error {
	return templates.ExecuteTemplate(w, "error", message)
}

// SortChildren returns the children of n with leaves first, each group in
// insertion order
func SortChildren(n *roadmap.TreeNode) []*roadmap.TreeNode {
	children := n.Children()
	ret := make([]*roadmap.TreeNode, 0, len(children))
	for _, child := range children {
		if child.IsLeaf() {
			ret = append(ret, child)
		}
	}
	for _, child := range children {
		if !child.IsLeaf() {
			ret = append(ret, child)
		}
	}
	return ret
}

// Markdown converts md to html. Raw html in md is dropped and links are
// restricted to safe protocols.
func Markdown(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML | html.Safelink | html.HrefTargetBlank | html.NoreferrerLinks | html.NoopenerLinks,
	})
	return template.HTML(markdown.ToHTML([]byte(md), p, r)) //nolint:gosec
}
