package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/slidepress/dsl"
)

const sampleDSL = `
deck Roadmap v1 {
  meta {
    title: "Roadmap"
    keywords: [
      "planning"
      "internal"
    ]
  }

  defaults {
    header: "ACME / ${team}"
  }

  // 第一张使用默认版式
  slide {
    title: "Roadmap Overview"
    body: "Ship the resolver\nThen the renderers"
  }

  slide quadrant-large-bulleted {
    title: "Priorities"
    "Faster exports"
    "Better thumbnails"; "Fewer surprises"
  }

  slide centered bullets {
    title: "Thanks"
    layout: centered
    size: 42
    tags: ["a", "b"]
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if doc.Name != "Roadmap" {
		t.Fatalf("expected document name Roadmap, got %s", doc.Name)
	}
	if doc.Version != "v1" {
		t.Fatalf("expected version v1, got %s", doc.Version)
	}
	if len(doc.Sections) != 5 {
		t.Fatalf("expected 5 sections, got %d", len(doc.Sections))
	}
	kinds := make([]string, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		kinds = append(kinds, s.Kind())
	}
	if got := strings.Join(kinds, ","); got != "meta,defaults,slide,slide,slide" {
		t.Fatalf("unexpected section kinds %s", got)
	}

	meta := doc.Sections[0].Meta
	title := meta.Block.Statements[0].Assignment
	if title == nil || title.Key != "title" || title.Value.Text() != "Roadmap" {
		t.Fatalf("expected title assignment, got %+v", meta.Block.Statements[0])
	}
	keywords := meta.Block.Statements[1].Assignment
	if keywords == nil || keywords.Value.Array == nil {
		t.Fatalf("expected keywords array assignment")
	}
	if got := keywords.Value.Strings(); len(got) != 2 || got[1] != "internal" {
		t.Fatalf("unexpected keywords %q", got)
	}

	header := doc.Sections[1].Defaults.Block.Statements[0].Assignment
	if !strings.Contains(header.Value.Text(), "${team}") {
		t.Fatalf("interpolation placeholder should survive parsing, got %q", header.Value.Text())
	}

	first := doc.Sections[2].Slide
	if len(first.Params) != 0 {
		t.Fatalf("expected no slide params, got %+v", first.Params)
	}
	body := first.Block.Statements[1].Assignment
	if body.Key != "body" || body.Value.Text() != "Ship the resolver\nThen the renderers" {
		t.Fatalf("escape sequences should be unquoted, got %q", body.Value.Text())
	}

	second := doc.Sections[3].Slide
	if len(second.Params) != 1 || second.Params[0].Value != "quadrant-large-bulleted" {
		t.Fatalf("unexpected params %+v", second.Params)
	}
	var texts []string
	for _, st := range second.Block.Statements {
		if st.Text != nil {
			texts = append(texts, string(st.Text.Value))
		}
	}
	if len(texts) != 3 || texts[2] != "Fewer surprises" {
		t.Fatalf("expected three bare paragraphs, got %q", texts)
	}

	third := doc.Sections[4].Slide
	if len(third.Params) != 2 || third.Params[1].Value != "bullets" || third.Params[1].Type != "Ident" {
		t.Fatalf("unexpected params %+v", third.Params)
	}
	stmts := third.Block.Statements
	if stmts[1].Assignment.Value.Ident == nil || *stmts[1].Assignment.Value.Ident != "centered" {
		t.Fatalf("bare identifier value expected")
	}
	if stmts[2].Assignment.Value.Number == nil || *stmts[2].Assignment.Value.Number != "42" {
		t.Fatalf("number value expected")
	}
	if got := stmts[3].Assignment.Value.Strings(); len(got) != 2 || got[0] != "a" {
		t.Fatalf("inline array expected, got %q", got)
	}
	if third.Pos.Line == 0 {
		t.Fatalf("slide position should be recorded")
	}
}

func TestParseErrorsCarryPosition(t *testing.T) {
	_, err := dsl.ParseFile("broken.deck", strings.NewReader("deck X {\n  slide {\n    title \"missing colon\"\n  }\n}\n"))
	if err == nil {
		t.Fatalf("expected a parse error")
	}
	if !strings.Contains(err.Error(), "broken.deck:3") {
		t.Fatalf("error should point at line 3, got %v", err)
	}
}

func TestParseRejectsOtherRoots(t *testing.T) {
	if _, err := dsl.ParseString(`doc X v1 { }`); err == nil {
		t.Fatalf("expected error for non-deck root")
	}
}

func TestParseEmptyDeck(t *testing.T) {
	doc, err := dsl.ParseString("deck Empty {\n}\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Version != "" || len(doc.Sections) != 0 {
		t.Fatalf("unexpected document %+v", doc)
	}
}
