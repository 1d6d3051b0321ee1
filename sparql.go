package tulna

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// QueryType enumerates the SPARQL query forms.
type QueryType int

const (
	SelectQuery QueryType = iota
	ConstructQuery
	AskQuery
	DescribeQuery
)

// ParsedSparqlQuery holds the components extracted from a SPARQL query.
// Limit and Offset are -1 when the query does not carry them.
type ParsedSparqlQuery struct {
	Type             QueryType
	Prefixes         map[string]string
	SelectClause     string
	FromClauses      []string
	FromNamedClauses []string
	WhereClause      string
	OrderBy          string
	Limit            int64
	Offset           int64
	Distinct         bool
	Reduced          bool
	OriginalQuery    string
}

// SparqlParser extracts the surface structure of a SPARQL query. It is a
// clause-level scanner, not a grammar: enough to feed equivalence checking.
type SparqlParser struct {
	prefix    *regexp.Regexp
	selects   *regexp.Regexp
	construct *regexp.Regexp
	ask       *regexp.Regexp
	describe  *regexp.Regexp
	from      *regexp.Regexp
	fromNamed *regexp.Regexp
	orderBy   *regexp.Regexp
	limit     *regexp.Regexp
	offset    *regexp.Regexp
}

// NewSparqlParser returns a parser with its clause patterns precompiled.
func NewSparqlParser() *SparqlParser {
	return &SparqlParser{
		prefix:    regexp.MustCompile(`(?i)PREFIX\s+([^\s:]+):\s*<([^>]+)>`),
		selects:   regexp.MustCompile(`(?i)SELECT\s+(DISTINCT\s+|REDUCED\s+)?(.+?)(?:WHERE|FROM|\{)`),
		construct: regexp.MustCompile(`(?i)CONSTRUCT\s*\{`),
		ask:       regexp.MustCompile(`(?i)ASK\s*\{`),
		describe:  regexp.MustCompile(`(?i)DESCRIBE\s+(.+?)(?:WHERE|FROM|\{)`),
		from:      regexp.MustCompile(`(?i)FROM\s+(<[^>]+>|\S+)`),
		fromNamed: regexp.MustCompile(`(?i)FROM\s+NAMED\s+(<[^>]+>|\S+)`),
		orderBy:   regexp.MustCompile(`(?i)ORDER\s+BY\s+(.+?)(?:LIMIT|OFFSET|$)`),
		limit:     regexp.MustCompile(`(?i)LIMIT\s+(\d+)`),
		offset:    regexp.MustCompile(`(?i)OFFSET\s+(\d+)`),
	}
}

// Parse extracts the clauses of a SPARQL query. The WHERE clause is captured
// with balanced braces, so nested group patterns stay intact.
func (p *SparqlParser) Parse(query string) (*ParsedSparqlQuery, error) {
	parsed := &ParsedSparqlQuery{
		Type:          SelectQuery,
		Prefixes:      make(map[string]string),
		Limit:         -1,
		Offset:        -1,
		OriginalQuery: query,
	}

	queryType, err := p.determineQueryType(query)
	if err != nil {
		return nil, err
	}
	parsed.Type = queryType

	inWhereClause := false
	braceCount := 0
	var whereLines []string

	for _, line := range strings.Split(query, "\n") {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)

		if trimmed == "" {
			if inWhereClause {
				whereLines = append(whereLines, line)
			}
			continue
		}

		switch {
		case strings.HasPrefix(upper, "PREFIX"):
			if caps := p.prefix.FindStringSubmatch(trimmed); caps != nil {
				parsed.Prefixes[caps[1]] = caps[2]
			}
		case strings.HasPrefix(upper, "SELECT"):
			if caps := p.selects.FindStringSubmatch(trimmed); caps != nil {
				modifier := strings.ToUpper(strings.TrimSpace(caps[1]))
				if strings.Contains(modifier, "DISTINCT") {
					parsed.Distinct = true
				}
				if strings.Contains(modifier, "REDUCED") {
					parsed.Reduced = true
				}
				parsed.SelectClause = strings.TrimSpace(caps[2])
			}
		case strings.HasPrefix(upper, "FROM NAMED"):
			if caps := p.fromNamed.FindStringSubmatch(trimmed); caps != nil {
				parsed.FromNamedClauses = append(parsed.FromNamedClauses, unwrapIRI(caps[1], parsed.Prefixes))
			}
		case strings.HasPrefix(upper, "FROM"):
			if caps := p.from.FindStringSubmatch(trimmed); caps != nil {
				parsed.FromClauses = append(parsed.FromClauses, unwrapIRI(caps[1], parsed.Prefixes))
			}
		case strings.HasPrefix(upper, "WHERE") || strings.HasPrefix(trimmed, "{"):
			inWhereClause = true
			whereLines = append(whereLines, line)
			braceCount += strings.Count(trimmed, "{")
			braceCount -= strings.Count(trimmed, "}")
		default:
			if inWhereClause {
				braceCount += strings.Count(trimmed, "{")
				braceCount -= strings.Count(trimmed, "}")
				whereLines = append(whereLines, line)

				if braceCount == 0 {
					inWhereClause = false
				}
			}
		}
	}

	parsed.WhereClause = strings.Join(whereLines, "\n")

	if caps := p.orderBy.FindStringSubmatch(query); caps != nil {
		parsed.OrderBy = strings.TrimSpace(caps[1])
	}
	if caps := p.limit.FindStringSubmatch(query); caps != nil {
		parsed.Limit, _ = strconv.ParseInt(caps[1], 10, 64)
	}
	if caps := p.offset.FindStringSubmatch(query); caps != nil {
		parsed.Offset, _ = strconv.ParseInt(caps[1], 10, 64)
	}

	return parsed, nil
}

func (p *SparqlParser) determineQueryType(query string) (QueryType, error) {
	switch {
	case p.selects.MatchString(query):
		return SelectQuery, nil
	case p.construct.MatchString(query):
		return ConstructQuery, nil
	case p.ask.MatchString(query):
		return AskQuery, nil
	case p.describe.MatchString(query):
		return DescribeQuery, nil
	case strings.Contains(strings.ToUpper(query), "SELECT"):
		return SelectQuery, nil
	}
	return SelectQuery, fmt.Errorf("%w: unable to determine query type", ErrParse)
}

// ExtractGraphPatterns returns the GRAPH targets referenced in a WHERE
// clause.
func (p *SparqlParser) ExtractGraphPatterns(whereClause string) []string {
	graphPattern := regexp.MustCompile(`(?i)GRAPH\s+(<[^>]+>|\S+)`)
	var graphs []string
	for _, caps := range graphPattern.FindAllStringSubmatch(whereClause, -1) {
		graphs = append(graphs, caps[1])
	}
	return graphs
}

// ExtractVariables returns the variables of a SELECT clause, or ["*"].
func (p *SparqlParser) ExtractVariables(selectClause string) []string {
	if strings.TrimSpace(selectClause) == "*" {
		return []string{"*"}
	}

	varPattern := regexp.MustCompile(`\?(\w+)`)
	var vars []string
	for _, caps := range varPattern.FindAllStringSubmatch(selectClause, -1) {
		vars = append(vars, "?"+caps[1])
	}
	return vars
}

// ToQueryString reconstructs the query from its parsed components.
func (q *ParsedSparqlQuery) ToQueryString() string {
	var lines []string

	for prefix, namespace := range q.Prefixes {
		lines = append(lines, fmt.Sprintf("PREFIX %s: <%s>", prefix, namespace))
	}
	if len(q.Prefixes) > 0 {
		lines = append(lines, "")
	}

	switch q.Type {
	case SelectQuery:
		selects := "SELECT"
		if q.Distinct {
			selects += " DISTINCT"
		}
		if q.Reduced {
			selects += " REDUCED"
		}
		lines = append(lines, selects+" "+q.SelectClause)
	case ConstructQuery:
		lines = append(lines, "CONSTRUCT {")
	case AskQuery:
		lines = append(lines, "ASK")
	case DescribeQuery:
		lines = append(lines, "DESCRIBE "+q.SelectClause)
	}

	for _, from := range q.FromClauses {
		lines = append(lines, fmt.Sprintf("FROM <%s>", from))
	}
	for _, fromNamed := range q.FromNamedClauses {
		lines = append(lines, fmt.Sprintf("FROM NAMED <%s>", fromNamed))
	}

	if q.WhereClause != "" {
		lines = append(lines, q.WhereClause)
	}

	if q.OrderBy != "" {
		lines = append(lines, "ORDER BY "+q.OrderBy)
	}
	if q.Limit >= 0 {
		lines = append(lines, fmt.Sprintf("LIMIT %d", q.Limit))
	}
	if q.Offset >= 0 {
		lines = append(lines, fmt.Sprintf("OFFSET %d", q.Offset))
	}

	return strings.Join(lines, "\n")
}
