package tulna

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparqlParserPrefixes(t *testing.T) {
	query := `PREFIX foaf: <http://xmlns.com/foaf/0.1/>
PREFIX ex: <http://example.org/>
SELECT ?name
WHERE {
    ?x foaf:name ?name .
}`
	parsed, err := NewSparqlParser().Parse(query)
	assert.NoError(t, err)
	assert.Equal(t, SelectQuery, parsed.Type)
	assert.Equal(t, "http://xmlns.com/foaf/0.1/", parsed.Prefixes["foaf"])
	assert.Equal(t, "http://example.org/", parsed.Prefixes["ex"])
}

func TestSparqlParserWhereClause(t *testing.T) {
	query := `SELECT ?s
WHERE {
    ?s <http://example.org/p> ?o .
}`
	parsed, err := NewSparqlParser().Parse(query)
	assert.NoError(t, err)
	assert.Contains(t, parsed.WhereClause, "WHERE {")
	assert.Contains(t, parsed.WhereClause, "?s <http://example.org/p> ?o .")
	assert.Contains(t, parsed.WhereClause, "}")
}

func TestSparqlParserNestedBraces(t *testing.T) {
	query := `SELECT ?s
WHERE {
    GRAPH <http://example.org/g> {
        ?s <http://example.org/p> ?o .
    }
}`
	parsed, err := NewSparqlParser().Parse(query)
	assert.NoError(t, err)
	// Balanced capture keeps the nested group inside the WHERE clause.
	assert.Contains(t, parsed.WhereClause, "GRAPH <http://example.org/g>")
	assert.Contains(t, parsed.WhereClause, "?s <http://example.org/p> ?o .")
}

func TestSparqlParserSelectModifiers(t *testing.T) {
	parsed, err := NewSparqlParser().Parse("SELECT DISTINCT ?name WHERE { ?x <p> ?name . }")
	assert.NoError(t, err)
	assert.True(t, parsed.Distinct)
	assert.False(t, parsed.Reduced)
	assert.Equal(t, "?name", parsed.SelectClause)

	parsed, err = NewSparqlParser().Parse("SELECT REDUCED ?name WHERE { ?x <p> ?name . }")
	assert.NoError(t, err)
	assert.True(t, parsed.Reduced)
}

func TestSparqlParserSolutionModifiers(t *testing.T) {
	query := `SELECT ?name
WHERE {
    ?x <http://example.org/name> ?name .
}
ORDER BY ?name LIMIT 10 OFFSET 5`
	parsed, err := NewSparqlParser().Parse(query)
	assert.NoError(t, err)
	assert.Equal(t, "?name", parsed.OrderBy)
	assert.Equal(t, int64(10), parsed.Limit)
	assert.Equal(t, int64(5), parsed.Offset)
}

func TestSparqlParserFromClauses(t *testing.T) {
	query := `PREFIX ex: <http://example.org/>
SELECT ?s
FROM <http://example.org/g1>
FROM NAMED ex:g2
WHERE {
    ?s ?p ?o .
}`
	parsed, err := NewSparqlParser().Parse(query)
	assert.NoError(t, err)
	assert.Equal(t, []string{"http://example.org/g1"}, parsed.FromClauses)
	assert.Equal(t, []string{"http://example.org/g2"}, parsed.FromNamedClauses)
}

func TestSparqlParserQueryTypes(t *testing.T) {
	parser := NewSparqlParser()

	parsed, err := parser.Parse("CONSTRUCT { ?s ?p ?o . } WHERE { ?s ?p ?o . }")
	assert.NoError(t, err)
	assert.Equal(t, ConstructQuery, parsed.Type)

	parsed, err = parser.Parse("ASK { ?s ?p ?o . }")
	assert.NoError(t, err)
	assert.Equal(t, AskQuery, parsed.Type)

	parsed, err = parser.Parse("DESCRIBE ?s WHERE { ?s ?p ?o . }")
	assert.NoError(t, err)
	assert.Equal(t, DescribeQuery, parsed.Type)
}

func TestSparqlParserUnknownType(t *testing.T) {
	_, err := NewSparqlParser().Parse("this is not a query")
	assert.ErrorIs(t, err, ErrParse)
}

func TestSparqlParserToQueryString(t *testing.T) {
	query := `SELECT DISTINCT ?name WHERE
{
    ?x <http://example.org/name> ?name .
}
LIMIT 10`
	parsed, err := NewSparqlParser().Parse(query)
	assert.NoError(t, err)

	rebuilt := parsed.ToQueryString()
	assert.Contains(t, rebuilt, "SELECT DISTINCT")
	assert.Contains(t, rebuilt, "?x <http://example.org/name> ?name .")
	assert.Contains(t, rebuilt, "LIMIT 10")

	reparsed, err := NewSparqlParser().Parse(rebuilt)
	assert.NoError(t, err)
	assert.Equal(t, parsed.WhereClause, reparsed.WhereClause)
	assert.Equal(t, parsed.Limit, reparsed.Limit)
}

func TestSparqlParserExtractVariables(t *testing.T) {
	parser := NewSparqlParser()
	assert.Equal(t, []string{"*"}, parser.ExtractVariables("*"))
	assert.Equal(t, []string{"?a", "?b"}, parser.ExtractVariables("?a ?b"))
}

func TestSparqlParserExtractGraphPatterns(t *testing.T) {
	parser := NewSparqlParser()
	graphs := parser.ExtractGraphPatterns("WHERE { GRAPH <http://example.org/g> { ?s ?p ?o . } }")
	assert.Equal(t, []string{"<http://example.org/g>"}, graphs)
}
