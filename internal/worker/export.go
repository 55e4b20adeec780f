package worker

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sbenjam1n/xsdform/internal/codec"
	"github.com/sbenjam1n/xsdform/internal/document"
	"github.com/sbenjam1n/xsdform/internal/editscript"
	"github.com/sbenjam1n/xsdform/internal/rules"
	"github.com/sbenjam1n/xsdform/internal/xsd"
)

// Result is one serialized document.
type Result struct {
	Root   string
	XML    string
	Rules  []rules.Record
	Report *editscript.Report
}

// Load parses the schema at schemaPath, builds a document and applies the
// edit script at editsPath when it is not empty.
func Load(schemaPath, editsPath string, log zerolog.Logger) (*document.Document, *editscript.Report, error) {
	model, err := xsd.ParseFile(schemaPath)
	if err != nil {
		return nil, nil, err
	}
	doc := document.Load(model, document.WithLogger(log))
	if editsPath == "" {
		return doc, &editscript.Report{}, nil
	}

	script, err := editscript.ParseFile(editsPath)
	if err != nil {
		return nil, nil, err
	}
	rep, err := editscript.Apply(doc, script)
	if err != nil {
		return nil, rep, fmt.Errorf("apply %s: %w", editsPath, err)
	}
	return doc, rep, nil
}

// Export loads and edits a document as Load does, then serializes it.
func Export(schemaPath, editsPath string, log zerolog.Logger) (*Result, error) {
	doc, rep, err := Load(schemaPath, editsPath, log)
	if err != nil {
		return nil, err
	}
	out, err := codec.Serialize(doc)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", schemaPath, err)
	}
	return &Result{
		Root:   doc.Root().Name,
		XML:    out,
		Rules:  doc.Rules(),
		Report: rep,
	}, nil
}
