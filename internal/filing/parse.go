package filing

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// ParseError reports a fact document that could not be parsed.
// A ParseError is fatal for the document: no partial filing is ever
// produced.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse fact file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// factElement mirrors one fact entry in a fact document: a required
// "name" attribute identifying the disclosure tag, and named child
// fields copied verbatim.
type factElement struct {
	Name   string         `xml:"name,attr"`
	Fields []fieldElement `xml:",any"`
}

type fieldElement struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type factDocument struct {
	XMLName xml.Name
	Facts   []factElement `xml:",any"`
}

// ParseFactFile converts a fact document into a Filing. Each top-level
// element of the document root becomes one Fact; present child fields
// are copied verbatim as strings and absent fields are left unset.
func ParseFactFile(path string) (*Filing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	var doc factDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	facts := make([]Fact, 0, len(doc.Facts))
	for i, elem := range doc.Facts {
		if elem.Name == "" {
			return nil, &ParseError{
				Path: path,
				Err:  fmt.Errorf("fact %d: missing required name attribute", i),
			}
		}
		fact := Fact{Name: elem.Name}
		for _, field := range elem.Fields {
			switch field.XMLName.Local {
			case "label":
				fact.Label = field.Value
			case "contextRef":
				fact.ContextRef = field.Value
			case "unitRef":
				fact.UnitRef = field.Value
			case "dec":
				fact.Decimals = field.Value
			case "prec":
				fact.Precision = field.Value
			case "lang":
				fact.Lang = field.Value
			case "value":
				fact.Value = field.Value
			case "entityScheme":
				fact.EntityScheme = field.Value
			case "entityIdentifier":
				fact.EntityIdentifier = field.Value
			case "period":
				fact.Period = field.Value
			case "dimensions":
				fact.Dimensions = field.Value
			}
		}
		facts = append(facts, fact)
	}

	return NewFiling(facts), nil
}

// IsInstanceDocument reports whether the document root's tag contains
// the marker substring "instance". Used as a cheap pre-filter before
// attempting a full import. Any parse failure yields false rather than
// an error.
func IsInstanceDocument(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if err != nil {
			return false
		}
		if start, ok := tok.(xml.StartElement); ok {
			return strings.Contains(start.Name.Local, "instance")
		}
	}
}
