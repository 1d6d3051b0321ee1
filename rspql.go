package tulna

import (
	"regexp"
	"strconv"
	"strings"
)

// Operator is the relation-to-stream operator of a streaming query.
type Operator int

const (
	RStream Operator = iota
	IStream
	DStream
)

func (o Operator) String() string {
	switch o {
	case IStream:
		return "IStream"
	case DStream:
		return "DStream"
	}
	return "RStream"
}

// R2S names the output stream a streaming query registers.
type R2S struct {
	Operator Operator
	Name     string
}

// ParsedRSPQLQuery is an RSP-QL query split into its SPARQL body, the
// registered output and the stream-to-relation windows.
type ParsedRSPQLQuery struct {
	SparqlQuery string
	R2S         R2S
	S2R         []WindowDefinition
}

var (
	rspqlRegister = regexp.MustCompile(`REGISTER +([^ ]+) +<([^>]+)> AS`)
	rspqlWindow   = regexp.MustCompile(`FROM +NAMED +WINDOW +([^ ]+) +ON +STREAM +([^ ]+) +\[RANGE +([^ \]]+) +STEP +([^ \]]+)\]`)
	rspqlPrefix   = regexp.MustCompile(`PREFIX +([^:]*): +<([^>]+)>`)
)

// RSPQLParser is a line-oriented parser for RSP-QL queries.
type RSPQLParser struct {
	query string
}

// NewRSPQLParser returns a parser for the given query.
func NewRSPQLParser(query string) *RSPQLParser {
	return &RSPQLParser{query: query}
}

// Parse splits the query into windows, the registered output and the
// remaining SPARQL body. WINDOW blocks are rewritten to GRAPH blocks so the
// body stays plain SPARQL.
func (p *RSPQLParser) Parse() *ParsedRSPQLQuery {
	parsed := &ParsedRSPQLQuery{
		R2S: R2S{Operator: RStream, Name: "undefined"},
	}
	var sparqlLines []string
	prefixes := make(map[string]string)

	for _, line := range strings.Split(p.query, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "REGISTER"):
			for _, caps := range rspqlRegister.FindAllStringSubmatch(trimmed, -1) {
				if operator, ok := parseOperator(caps[1]); ok {
					parsed.R2S = R2S{Operator: operator, Name: caps[2]}
				}
			}
		case strings.HasPrefix(trimmed, "FROM NAMED WINDOW"):
			for _, caps := range rspqlWindow.FindAllStringSubmatch(trimmed, -1) {
				width, _ := strconv.ParseInt(caps[3], 10, 64)
				slide, _ := strconv.ParseInt(caps[4], 10, 64)
				parsed.S2R = append(parsed.S2R, WindowDefinition{
					WindowName: unwrapIRI(caps[1], prefixes),
					StreamName: unwrapIRI(caps[2], prefixes),
					Width:      width,
					Slide:      slide,
					Offset:     -1,
					Start:      -1,
					End:        -1,
					Type:       LiveWindow,
				})
			}
		default:
			sparqlLine := trimmed
			if strings.HasPrefix(sparqlLine, "WINDOW") {
				sparqlLine = strings.Replace(sparqlLine, "WINDOW", "GRAPH", 1)
			}
			if strings.HasPrefix(sparqlLine, "PREFIX") {
				for _, caps := range rspqlPrefix.FindAllStringSubmatch(sparqlLine, -1) {
					prefixes[caps[1]] = caps[2]
				}
			}
			sparqlLines = append(sparqlLines, sparqlLine)
		}
	}

	parsed.SparqlQuery = strings.Join(sparqlLines, "\n")
	return parsed
}

func parseOperator(token string) (Operator, bool) {
	switch token {
	case "RStream":
		return RStream, true
	case "IStream":
		return IStream, true
	case "DStream":
		return DStream, true
	}
	return RStream, false
}
