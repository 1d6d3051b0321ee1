package tulna

import (
	"fmt"
	"regexp"
	"strings"
)

// QueryLanguage enumerates the query dialects the library understands.
type QueryLanguage int

const (
	// SPARQL is a standard SPARQL 1.1 query.
	SPARQL QueryLanguage = iota
	// RSPQL is a streaming query with REGISTER / window clauses.
	RSPQL
	// JanusQL extends RSP-QL with historical windows.
	JanusQL
)

func (l QueryLanguage) String() string {
	switch l {
	case RSPQL:
		return "RSP-QL"
	case JanusQL:
		return "JanusQL"
	}
	return "SPARQL"
}

// WindowType enumerates the window flavors of the streaming dialects.
type WindowType int

const (
	LiveWindow WindowType = iota
	HistoricalSlidingWindow
	HistoricalFixedWindow
)

// WindowDefinition describes one stream window clause. Offset, Start and End
// are -1 when the clause does not carry them.
type WindowDefinition struct {
	WindowName string
	StreamName string
	Width      int64
	Slide      int64
	Offset     int64
	Start      int64
	End        int64
	Type       WindowType
}

// Query is the language-agnostic view of a parsed query: the dialect it was
// written in, its basic graph pattern, and the window metadata for streaming
// dialects (nil for plain SPARQL).
type Query struct {
	Language QueryLanguage
	BGP      []*Triple
	Window   *WindowDefinition
}

const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// triplePattern scans `s p o .` statements at brace depth 1.
var triplePattern = regexp.MustCompile(
	`([?$]\w+|<[^>]+>|[\w:]+)\s+([?$]\w+|<[^>]+>|[\w:]+|a)\s+([?$]\w+|<[^>]+>|[\w:]+|'[^']*'|"[^"]*")\s*\.`)

// DetectQueryLanguage detects the dialect of a query string. JanusQL is
// recognized by its historical window keywords, RSP-QL by REGISTER/STREAM or
// direct window syntax; everything else is treated as SPARQL.
func DetectQueryLanguage(query string) QueryLanguage {
	upper := strings.ToUpper(query)

	if (strings.Contains(upper, "OFFSET") && strings.Contains(upper, "RANGE") && strings.Contains(upper, "STEP")) ||
		(strings.Contains(upper, "START") && strings.Contains(upper, "END")) {
		return JanusQL
	}

	if strings.Contains(upper, "REGISTER") && strings.Contains(upper, "STREAM") {
		return RSPQL
	}

	if strings.Contains(upper, "FROM") && strings.Contains(upper, "NAMED") &&
		strings.Contains(upper, "WINDOW") && strings.Contains(upper, "ON STREAM") {
		return RSPQL
	}

	return SPARQL
}

// ParseQuery detects the dialect of a query and parses it into its
// language-agnostic view.
func ParseQuery(query string) (*Query, error) {
	switch DetectQueryLanguage(query) {
	case RSPQL:
		return parseRSPQLQuery(query)
	case JanusQL:
		return parseJanusQLQuery(query)
	}
	return parseSparqlQuery(query)
}

func parseSparqlQuery(query string) (*Query, error) {
	parsed, err := NewSparqlParser().Parse(query)
	if err != nil {
		return nil, err
	}
	bgp := extractBGPFromWhere(parsed.WhereClause)
	return &Query{Language: SPARQL, BGP: bgp}, nil
}

func parseRSPQLQuery(query string) (*Query, error) {
	parsed := NewRSPQLParser(query).Parse()
	bgp := extractBGPFromWhere(parsed.SparqlQuery)

	var window *WindowDefinition
	if len(parsed.S2R) > 0 {
		w := parsed.S2R[0]
		window = &w
	}
	return &Query{Language: RSPQL, BGP: bgp, Window: window}, nil
}

func parseJanusQLQuery(query string) (*Query, error) {
	parsed, err := NewJanusQLParser().Parse(query)
	if err != nil {
		return nil, err
	}
	bgp := extractBGPFromWhere(parsed.WhereClause)

	var window *WindowDefinition
	if len(parsed.LiveWindows) > 0 {
		w := parsed.LiveWindows[0]
		window = &w
	} else if len(parsed.HistoricalWindows) > 0 {
		w := parsed.HistoricalWindows[0]
		window = &w
	}
	return &Query{Language: JanusQL, BGP: bgp, Window: window}, nil
}

// ExtractBGP returns the basic graph pattern of a query.
func ExtractBGP(query string) ([]*Triple, error) {
	parsed, err := ParseQuery(query)
	if err != nil {
		return nil, err
	}
	return parsed.BGP, nil
}

// IsIsomorphic reports whether two queries are equivalent: same stream and
// window parameters (for streaming dialects) and isomorphic graph patterns.
func IsIsomorphic(queryOne, queryTwo string) (bool, error) {
	q1, err := ParseQuery(queryOne)
	if err != nil {
		return false, err
	}
	q2, err := ParseQuery(queryTwo)
	if err != nil {
		return false, err
	}

	if q1.Language != SPARQL || q2.Language != SPARQL {
		if !streamParametersEqual(q1, q2) {
			return false, nil
		}
		if !windowNamesEqual(q1, q2) {
			return false, nil
		}
	}

	return AreIsomorphic(q1.BGP, q2.BGP)
}

// QueryComparison holds the granular outcome of comparing two queries.
type QueryComparison struct {
	IsIsomorphic  bool
	SameLanguage  bool
	SameBGPSize   bool
	BGPIsomorphic bool
}

// Summary returns a one-line rendering of the comparison.
func (c QueryComparison) Summary() string {
	return fmt.Sprintf("Isomorphic: %t, Same Language: %t, Same BGP Size: %t, BGP Isomorphic: %t",
		c.IsIsomorphic, c.SameLanguage, c.SameBGPSize, c.BGPIsomorphic)
}

// CompareQueries compares two queries and reports why they are or are not
// equivalent.
func CompareQueries(queryOne, queryTwo string) (*QueryComparison, error) {
	q1, err := ParseQuery(queryOne)
	if err != nil {
		return nil, err
	}
	q2, err := ParseQuery(queryTwo)
	if err != nil {
		return nil, err
	}

	bgpIsomorphic, err := AreIsomorphic(q1.BGP, q2.BGP)
	if err != nil {
		return nil, err
	}
	isomorphic, err := IsIsomorphic(queryOne, queryTwo)
	if err != nil {
		return nil, err
	}

	return &QueryComparison{
		IsIsomorphic:  isomorphic,
		SameLanguage:  q1.Language == q2.Language,
		SameBGPSize:   len(q1.BGP) == len(q2.BGP),
		BGPIsomorphic: bgpIsomorphic,
	}, nil
}

// CheckStreamParameters reports whether the stream parameters (stream name,
// width, slide, offset, start, end) of two queries are equal.
func CheckStreamParameters(queryOne, queryTwo string) (bool, error) {
	q1, err := ParseQuery(queryOne)
	if err != nil {
		return false, err
	}
	q2, err := ParseQuery(queryTwo)
	if err != nil {
		return false, err
	}
	return streamParametersEqual(q1, q2) && windowNamesEqual(q1, q2), nil
}

// CheckWindowNames reports whether the window names of two queries are equal.
func CheckWindowNames(queryOne, queryTwo string) (bool, error) {
	q1, err := ParseQuery(queryOne)
	if err != nil {
		return false, err
	}
	q2, err := ParseQuery(queryTwo)
	if err != nil {
		return false, err
	}
	return windowNamesEqual(q1, q2), nil
}

func streamParametersEqual(q1, q2 *Query) bool {
	a, b := q1.Window, q2.Window
	if a == nil || b == nil {
		return a == b
	}
	return a.StreamName == b.StreamName &&
		a.Width == b.Width &&
		a.Slide == b.Slide &&
		a.Offset == b.Offset &&
		a.Start == b.Start &&
		a.End == b.End
}

func windowNamesEqual(q1, q2 *Query) bool {
	a, b := q1.Window, q2.Window
	if a == nil || b == nil {
		return a == b
	}
	return a.WindowName == b.WindowName
}

// extractBGPFromWhere scans the depth-1 region of the WHERE clause for
// `s p o .` statements.
func extractBGPFromWhere(whereClause string) []*Triple {
	content := extractInnerBraces(whereClause)
	if content == "" {
		return nil
	}

	var bgp []*Triple
	for _, caps := range triplePattern.FindAllStringSubmatch(content, -1) {
		subject := parseNode(caps[1])
		var predicate Term
		if caps[2] == "a" {
			predicate = NewResource(rdfType)
		} else {
			predicate = parseNode(caps[2])
		}
		object := parseNode(caps[3])
		bgp = append(bgp, NewTriple(subject, predicate, object))
	}
	return bgp
}

// extractInnerBraces collects the characters sitting at brace depth 1,
// skipping nested blocks.
func extractInnerBraces(text string) string {
	var result strings.Builder
	depth := 0

	for _, ch := range text {
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
		default:
			if depth == 1 {
				result.WriteRune(ch)
			}
		}
	}

	return strings.TrimSpace(result.String())
}

// parseNode maps a token to a Term. Bare tokens are taken as IRIs; expanding
// prefixed names is the caller's business.
func parseNode(token string) Term {
	trimmed := strings.TrimSpace(token)

	switch {
	case strings.HasPrefix(trimmed, "?") || strings.HasPrefix(trimmed, "$"):
		return NewVariable(trimmed[1:])
	case strings.HasPrefix(trimmed, "<") && strings.HasSuffix(trimmed, ">"):
		return NewResource(trimmed[1 : len(trimmed)-1])
	case strings.HasPrefix(trimmed, `"`) || strings.HasPrefix(trimmed, "'"):
		return NewLiteral(strings.Trim(trimmed, `"'`))
	case strings.HasPrefix(trimmed, "_:"):
		return NewBlankNode(trimmed[2:])
	}
	return NewResource(trimmed)
}

// unwrapIRI expands a possibly prefixed IRI to its full form.
func unwrapIRI(prefixedIRI string, prefixes map[string]string) string {
	trimmed := strings.TrimSpace(prefixedIRI)

	if strings.HasPrefix(trimmed, "<") && strings.HasSuffix(trimmed, ">") {
		return debrack(trimmed)
	}

	if colon := strings.Index(trimmed, ":"); colon >= 0 {
		if namespace, ok := prefixes[trimmed[:colon]]; ok {
			return namespace + trimmed[colon+1:]
		}
	}

	return trimmed
}

// wrapIRI renders an IRI in prefixed form when a known namespace matches,
// bracketed otherwise.
func wrapIRI(iri string, prefixes map[string]string) string {
	for prefix, namespace := range prefixes {
		if strings.HasPrefix(iri, namespace) {
			return prefix + ":" + strings.TrimPrefix(iri, namespace)
		}
	}
	return brack(iri)
}
