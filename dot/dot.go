// Package dot renders a call graph or control-flow graph as Graphviz DOT:
// a cluster/node/edge model built up by a caller and written out through a
// text/template, rasterized in-process via goccy/go-graphviz instead of
// shelling out to an external dot(1) binary.
package dot

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/goccy/go-graphviz"
	"github.com/pkg/errors"
)

const tmplCluster = `{{define "cluster" -}}
	{{printf "subgraph %q {" .}}
		{{printf "%s" .Attrs.Lines}}
		{{range .Nodes}}
		{{template "node" .}}
		{{- end}}
		{{range .Clusters}}
		{{template "cluster" .}}
		{{- end}}
	{{println "}" }}
{{- end}}`

const tmplEdge = `{{define "edge" -}}
	{{printf "%q -> %q [ %s ]" .From .To .Attrs}}
{{- end}}`

const tmplNode = `{{define "node" -}}
	{{printf "%q [ %s ]" .ID .Attrs}}
{{- end}}`

const tmplGraph = `digraph Analysis {
	label="{{.Title}}";
	labeljust="l";
	fontname="Arial";
	fontsize="14";
	rankdir="{{or .Options.rankdir "TB"}}";
	bgcolor="white";

	node [shape="box" style="filled" fillcolor="honeydew" fontname="Verdana" penwidth="1.0" margin="0.05,0.0"];

	{{- range .Clusters}}
	{{template "cluster" .}}
	{{- end}}

	{{range .Nodes}}
	{{template "node" .}}
	{{- end}}

	{{- range .Edges}}
	{{template "edge" .}}
	{{- end}}
}
`

// Attrs is a DOT attribute list, e.g. {"color": "red"} renders as
// `color="red";`.
type Attrs map[string]string

func (a Attrs) List() []string {
	l := make([]string, 0, len(a))
	for k, v := range a {
		l = append(l, fmt.Sprintf("%s=%q;", k, v))
	}
	return l
}

func (a Attrs) String() string { return strings.Join(a.List(), " ") }
func (a Attrs) Lines() string  { return strings.Join(a.List(), "\n") }

// Node is one DOT node.
type Node struct {
	ID    string
	Attrs Attrs
}

func (n *Node) String() string { return n.ID }

// Edge is one directed DOT edge.
type Edge struct {
	From, To *Node
	Attrs    Attrs
}

// Cluster groups a set of nodes (and sub-clusters) into a DOT subgraph, used
// by callgraph.ToDot to draw one cluster per strongly connected component.
type Cluster struct {
	ID       string
	Clusters map[string]*Cluster
	Nodes    []*Node
	Attrs    Attrs
}

func NewCluster(id string) *Cluster {
	return &Cluster{ID: id, Clusters: make(map[string]*Cluster), Attrs: make(Attrs)}
}

func (c *Cluster) String() string { return fmt.Sprintf("cluster_%s", c.ID) }

// Graph is a full DOT document.
type Graph struct {
	Title    string
	Clusters []*Cluster
	Nodes    []*Node
	Edges    []*Edge
	Options  map[string]string
}

// WriteDot renders g as DOT source.
func (g *Graph) WriteDot() ([]byte, error) {
	t := template.New("dot")
	t.Option("missingkey=zero")
	for _, s := range []string{tmplCluster, tmplNode, tmplEdge, tmplGraph} {
		if _, err := t.Parse(s); err != nil {
			return nil, errors.Wrap(err, "parsing dot template")
		}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, g); err != nil {
		return nil, errors.Wrap(err, "rendering dot graph")
	}
	return buf.Bytes(), nil
}

// Render rasterizes g to the given Graphviz output format (e.g. "svg",
// "png") using an in-process libgraphviz binding, writing the result to w.
func (g *Graph) Render(format string, w *bytes.Buffer) error {
	src, err := g.WriteDot()
	if err != nil {
		return err
	}
	gv := graphviz.New()
	defer gv.Close()
	parsed, err := graphviz.ParseBytes(src)
	if err != nil {
		return errors.Wrap(err, "parsing generated dot source")
	}
	defer parsed.Close()
	if err := gv.Render(parsed, graphviz.Format(format), w); err != nil {
		return errors.Wrapf(err, "rendering to format %s", format)
	}
	return nil
}
