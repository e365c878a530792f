package tally

import (
	"fmt"
	"strings"

	"github.com/aclindsa/xml"
	"github.com/rs/zerolog/log"
)

// excerptLen is the number of characters of the offending response that a
// ParseError carries for diagnostics.
const excerptLen = 500

// ParseError is returned when a response cannot be parsed even after
// cleaning. Excerpt holds the beginning of the raw response text.
type ParseError struct {
	Err     error
	Excerpt string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing Tally response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Node is a generic element of a parsed Tally response.
type Node struct {
	XMLName xml.Name
	Content string `xml:",chardata"`
	Nodes   []Node `xml:",any"`
}

// Parse cleans a raw Tally response and decodes it into a Node tree. On
// failure it returns a *ParseError carrying an excerpt of the raw text.
func Parse(text string) (*Node, error) {
	cleaned := Clean(text)

	decoder := xml.NewDecoder(strings.NewReader(cleaned))
	decoder.Strict = false

	var root Node
	if err := decoder.Decode(&root); err != nil {
		excerpt := text
		if len(excerpt) > excerptLen {
			excerpt = excerpt[:excerptLen]
		}

		log.Error().Err(err).Str("excerpt", excerpt).Msg("XML parse error")
		return nil, &ParseError{Err: err, Excerpt: excerpt}
	}

	return &root, nil
}

// FindAll returns the node itself and all descendants whose tag matches,
// regardless of nesting depth. Tally responses are inconsistent about
// structure, collections are sometimes flat and sometimes nested inside
// other elements.
func (n *Node) FindAll(tag string) []*Node {
	var found []*Node

	if n.XMLName.Local == tag {
		found = append(found, n)
	}

	for i := range n.Nodes {
		found = append(found, n.Nodes[i].FindAll(tag)...)
	}

	return found
}

// Text returns the trimmed text of the first direct child with the given tag.
// The second return value reports whether such a child exists.
func (n *Node) Text(tag string) (string, bool) {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == tag {
			return strings.TrimSpace(n.Nodes[i].Content), true
		}
	}

	return "", false
}
