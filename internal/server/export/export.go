// Package export renders procedure snapshots for download by devices and
// builds the flow graph shown in the builder.
package export

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts xml, json and yaml in any case. An empty string means xml.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatXML, nil
	case FormatXML, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", common.ErrValidation, s)
	}
}

// ContentType is the MIME type of documents in format f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "application/xml"
	}
}

type Procedure struct {
	XMLName xml.Name `xml:"Procedure" json:"-" yaml:"-"`
	ID      int64    `xml:"id,attr" json:"id" yaml:"id"`
	UUID    string   `xml:"uuid,attr" json:"uuid" yaml:"uuid"`
	Version int      `xml:"version,attr" json:"version" yaml:"version"`
	Title   string   `xml:"title,attr" json:"title" yaml:"title"`
	Author  string   `xml:"author,attr" json:"author" yaml:"author"`
	Pages   []Page   `xml:"Page" json:"pages" yaml:"pages"`
}

type Page struct {
	DisplayIndex int       `xml:"displayIndex,attr" json:"display_index" yaml:"display_index"`
	Elements     []Element `xml:"Element" json:"elements" yaml:"elements"`
	ShowIfs      []string  `xml:"ShowIf,omitempty" json:"show_if,omitempty" yaml:"show_if,omitempty"`
}

type Element struct {
	ID        int64    `xml:"id,attr" json:"id" yaml:"id"`
	Type      string   `xml:"type,attr" json:"type" yaml:"type"`
	ConceptID int64    `xml:"concept,attr,omitempty" json:"concept,omitempty" yaml:"concept,omitempty"`
	Required  bool     `xml:"required,attr" json:"required" yaml:"required"`
	Question  string   `xml:"question" json:"question" yaml:"question"`
	Answer    string   `xml:"answer,omitempty" json:"answer,omitempty" yaml:"answer,omitempty"`
	Choices   []string `xml:"choices>choice,omitempty" json:"choices,omitempty" yaml:"choices,omitempty"`
	Image     string   `xml:"image,omitempty" json:"image,omitempty" yaml:"image,omitempty"`
	Audio     string   `xml:"audio,omitempty" json:"audio,omitempty" yaml:"audio,omitempty"`
	Action    string   `xml:"action,omitempty" json:"action,omitempty" yaml:"action,omitempty"`
	MimeType  string   `xml:"mimeType,omitempty" json:"mime_type,omitempty" yaml:"mime_type,omitempty"`
}

// Document converts a snapshot into the export shape. Pages and elements
// keep the tree's order, so callers should pass a sorted tree.
func Document(tree *models.ProcedureTree) *Procedure {
	p := tree.Procedure
	doc := &Procedure{
		ID:      p.ID,
		UUID:    p.UUID.String(),
		Version: p.Version,
		Title:   p.Title,
		Author:  p.Author,
		Pages:   make([]Page, 0, len(tree.Pages)),
	}

	for _, node := range tree.Pages {
		page := Page{DisplayIndex: node.Page.DisplayIndex, Elements: make([]Element, 0, len(node.Elements))}
		for _, e := range node.Elements {
			el := Element{
				ID:       e.ID,
				Type:     string(e.ElementType),
				Required: e.Required,
				Question: e.Question,
				Answer:   e.Answer,
				Choices:  append([]string(nil), e.Choices...),
				Image:    e.Image,
				Audio:    e.Audio,
				Action:   e.Action,
				MimeType: e.MimeType,
			}
			if e.ConceptID != nil {
				el.ConceptID = *e.ConceptID
			}
			page.Elements = append(page.Elements, el)
		}
		for _, si := range node.ShowIfs {
			page.ShowIfs = append(page.ShowIfs, si.Conditions)
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc
}

// Render encodes tree in format f.
func Render(tree *models.ProcedureTree, f Format) ([]byte, error) {
	doc := Document(tree)

	switch f {
	case FormatXML:
		b, err := xml.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode xml: %w", err)
		}
		return append([]byte(xml.Header), b...), nil
	case FormatJSON:
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return b, nil
	case FormatYAML:
		b, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", common.ErrValidation, string(f))
	}
}
