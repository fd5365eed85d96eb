package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
)

// PageNode is a page with its elements and show-if rules.
type PageNode struct {
	Page     Page
	Elements []Element
	ShowIfs  []ShowIf
}

// ProcedureTree is an in-memory snapshot of a procedure version.
type ProcedureTree struct {
	Procedure Procedure
	Pages     []PageNode
}

// Sort orders pages and elements by display index, breaking ties by ID.
func (t *ProcedureTree) Sort() {
	sort.SliceStable(t.Pages, func(i, j int) bool {
		a, b := t.Pages[i].Page, t.Pages[j].Page
		if a.DisplayIndex != b.DisplayIndex {
			return a.DisplayIndex < b.DisplayIndex
		}
		return a.ID < b.ID
	})
	for i := range t.Pages {
		els := t.Pages[i].Elements
		sort.SliceStable(els, func(a, b int) bool {
			if els[a].DisplayIndex != els[b].DisplayIndex {
				return els[a].DisplayIndex < els[b].DisplayIndex
			}
			return els[a].ID < els[b].ID
		})
	}
}

// ValidationScope says which level of the tree failed validation.
type ValidationScope string

const (
	ScopeProcedure ValidationScope = "procedure"
	ScopePage      ValidationScope = "page"
)

// ValidationError describes a structural problem found by Validate.
// It unwraps to common.ErrValidation.
type ValidationError struct {
	Scope        ValidationScope
	ID           int64
	DisplayIndex int
	Reason       string
}

func (e *ValidationError) Error() string {
	switch e.Scope {
	case ScopePage:
		return fmt.Sprintf("page %d: %s", e.DisplayIndex, e.Reason)
	default:
		return fmt.Sprintf("procedure %d: %s", e.ID, e.Reason)
	}
}

func (e *ValidationError) Unwrap() error { return common.ErrValidation }

// Validate fails if the procedure has no pages or, checking pages in display
// order, if a page has no elements.
func (t *ProcedureTree) Validate() error {
	if len(t.Pages) == 0 {
		return &ValidationError{Scope: ScopeProcedure, ID: t.Procedure.ID, Reason: "does not have any pages"}
	}
	for _, p := range t.Pages {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p *PageNode) Validate() error {
	if len(p.Elements) == 0 {
		return &ValidationError{
			Scope:        ScopePage,
			ID:           p.Page.ID,
			DisplayIndex: p.Page.DisplayIndex,
			Reason:       "does not have any elements",
		}
	}
	return nil
}

// Clone returns an unsaved deep copy of t as the given version: every row ID
// and parent ID is zeroed, timestamps are set to now, and all values,
// including choice lists, are copied. Mutating the copy never affects t.
func (t *ProcedureTree) Clone(version int, now time.Time) *ProcedureTree {
	proc := t.Procedure
	proc.ID = 0
	proc.Version = version
	proc.CreatedAt = now
	proc.LastModified = now

	out := &ProcedureTree{Procedure: proc, Pages: make([]PageNode, 0, len(t.Pages))}
	for _, node := range t.Pages {
		out.Pages = append(out.Pages, node.clone(now))
	}
	return out
}

func (p *PageNode) clone(now time.Time) PageNode {
	page := p.Page
	page.ID = 0
	page.ProcedureID = 0
	page.CreatedAt = now
	page.LastModified = now

	node := PageNode{
		Page:     page,
		Elements: make([]Element, 0, len(p.Elements)),
		ShowIfs:  make([]ShowIf, 0, len(p.ShowIfs)),
	}

	for _, e := range p.Elements {
		c := e
		c.ID = 0
		c.PageID = 0
		c.ElementFields = e.ElementFields.Copy()
		if e.ConceptID != nil {
			id := *e.ConceptID
			c.ConceptID = &id
		}
		c.CreatedAt = now
		c.LastModified = now
		node.Elements = append(node.Elements, c)
	}

	for _, s := range p.ShowIfs {
		c := s
		c.ID = 0
		c.PageID = 0
		c.CreatedAt = now
		c.LastModified = now
		node.ShowIfs = append(node.ShowIfs, c)
	}

	return node
}
