package tulna

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJanusQLParserHistoricalSliding(t *testing.T) {
	query := `PREFIX ex: <http://example.org/>
REGISTER RStream ex:output AS
SELECT ?s ?v
FROM NAMED WINDOW ex:w ON STREAM ex:stream [OFFSET 100 RANGE 50 STEP 10]
WHERE {
    ?s ex:hasValue ?v .
}`
	parsed, err := NewJanusQLParser().Parse(query)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(parsed.LiveWindows))
	assert.Equal(t, 1, len(parsed.HistoricalWindows))

	window := parsed.HistoricalWindows[0]
	assert.Equal(t, HistoricalSlidingWindow, window.Type)
	assert.Equal(t, "http://example.org/w", window.WindowName)
	assert.Equal(t, "http://example.org/stream", window.StreamName)
	assert.Equal(t, int64(100), window.Offset)
	assert.Equal(t, int64(50), window.Width)
	assert.Equal(t, int64(10), window.Slide)

	assert.NotNil(t, parsed.R2S)
	assert.Equal(t, RStream, parsed.R2S.Operator)
	assert.Equal(t, "http://example.org/output", parsed.R2S.Name)
}

func TestJanusQLParserHistoricalFixed(t *testing.T) {
	query := `REGISTER RStream <output> AS
SELECT ?s ?v
FROM NAMED WINDOW <w> ON STREAM <stream> [START 1000 END 2000]
WHERE {
    ?s <http://example.org/hasValue> ?v .
}`
	parsed, err := NewJanusQLParser().Parse(query)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(parsed.HistoricalWindows))

	window := parsed.HistoricalWindows[0]
	assert.Equal(t, HistoricalFixedWindow, window.Type)
	assert.Equal(t, int64(1000), window.Start)
	assert.Equal(t, int64(2000), window.End)
	assert.Equal(t, int64(0), window.Width)
	assert.Equal(t, int64(0), window.Slide)
}

func TestJanusQLParserLiveWindow(t *testing.T) {
	query := `REGISTER RStream <output> AS
SELECT ?s ?v
FROM NAMED WINDOW <w> ON STREAM <stream> [RANGE 50 STEP 10]
FROM NAMED WINDOW <h> ON STREAM <stream> [START 1000 END 2000]
WHERE {
    ?s <http://example.org/hasValue> ?v .
}`
	parsed, err := NewJanusQLParser().Parse(query)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(parsed.LiveWindows))
	assert.Equal(t, 1, len(parsed.HistoricalWindows))
	assert.Equal(t, LiveWindow, parsed.LiveWindows[0].Type)

	// Live windows yield a derived RSP-QL query.
	assert.Contains(t, parsed.RSPQLQuery, "REGISTER RStream <output> AS")
	assert.Contains(t, parsed.RSPQLQuery, "FROM NAMED WINDOW <w> ON STREAM <stream> [RANGE 50 STEP 10]")
}

func TestJanusQLParserDerivedSparql(t *testing.T) {
	query := `PREFIX ex: <http://example.org/>
REGISTER RStream ex:output AS
SELECT ?s ?v
FROM NAMED WINDOW ex:w ON STREAM ex:stream [START 1000 END 2000]
WHERE {
    WINDOW ex:w { ?s ex:hasValue ?v . }
}&`
	parsed, err := NewJanusQLParser().Parse(query)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(parsed.SparqlQueries))

	derived := parsed.SparqlQueries[0]
	assert.Contains(t, derived, "GRAPH ex:w")
	assert.NotContains(t, derived, "WINDOW ex:w")
	assert.Contains(t, derived, "FILTER(?timestamp >= 1000 && ?timestamp <= 2000)")
}

func TestJanusQLParserComments(t *testing.T) {
	query := `/* a streaming query
 * with a historical window
 */
REGISTER RStream <output> AS
SELECT ?s ?v
FROM NAMED WINDOW <w> ON STREAM <stream> [OFFSET 100 RANGE 50 STEP 10]
WHERE {
    ?s <http://example.org/hasValue> ?v .
}`
	parsed, err := NewJanusQLParser().Parse(query)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(parsed.HistoricalWindows))
}
