package tulna

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParsedJanusQuery holds the components of a JanusQL query: the windows it
// opens over live and historical stream data, the registered output, and the
// queries derived for each execution target.
type ParsedJanusQuery struct {
	R2S               *R2S
	LiveWindows       []WindowDefinition
	HistoricalWindows []WindowDefinition
	RSPQLQuery        string
	SparqlQueries     []string
	Prefixes          map[string]string
	WhereClause       string
	SelectClause      string
}

// JanusQLParser parses JanusQL queries, the RSP-QL extension with historical
// windows.
type JanusQLParser struct {
	historicalSliding *regexp.Regexp
	historicalFixed   *regexp.Regexp
	liveSliding       *regexp.Regexp
	register          *regexp.Regexp
	prefix            *regexp.Regexp
}

// NewJanusQLParser returns a parser with its window patterns precompiled.
func NewJanusQLParser() *JanusQLParser {
	return &JanusQLParser{
		historicalSliding: regexp.MustCompile(
			`FROM\s+NAMED\s+WINDOW\s+([^\s]+)\s+ON\s+STREAM\s+([^\s]+)\s+\[OFFSET\s+(\d+)\s+RANGE\s+(\d+)\s+STEP\s+(\d+)\]`),
		historicalFixed: regexp.MustCompile(
			`FROM\s+NAMED\s+WINDOW\s+([^\s]+)\s+ON\s+STREAM\s+([^\s]+)\s+\[START\s+(\d+)\s+END\s+(\d+)\]`),
		liveSliding: regexp.MustCompile(
			`FROM\s+NAMED\s+WINDOW\s+([^\s]+)\s+ON\s+STREAM\s+([^\s]+)\s+\[RANGE\s+(\d+)\s+STEP\s+(\d+)\]`),
		register: regexp.MustCompile(`REGISTER\s+(\w+)\s+([^\s]+)\s+AS`),
		prefix:   regexp.MustCompile(`PREFIX\s+([^\s:]+):\s*<([^>]+)>`),
	}
}

func (p *JanusQLParser) parseWindow(line string, prefixes map[string]string) (*WindowDefinition, error) {
	if caps := p.historicalSliding.FindStringSubmatch(line); caps != nil {
		offset, err := strconv.ParseInt(caps[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: window offset %q", ErrParse, caps[3])
		}
		width, err := strconv.ParseInt(caps[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: window range %q", ErrParse, caps[4])
		}
		slide, err := strconv.ParseInt(caps[5], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: window step %q", ErrParse, caps[5])
		}
		return &WindowDefinition{
			WindowName: unwrapIRI(caps[1], prefixes),
			StreamName: unwrapIRI(caps[2], prefixes),
			Width:      width,
			Slide:      slide,
			Offset:     offset,
			Start:      -1,
			End:        -1,
			Type:       HistoricalSlidingWindow,
		}, nil
	}

	if caps := p.historicalFixed.FindStringSubmatch(line); caps != nil {
		start, err := strconv.ParseInt(caps[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: window start %q", ErrParse, caps[3])
		}
		end, err := strconv.ParseInt(caps[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: window end %q", ErrParse, caps[4])
		}
		return &WindowDefinition{
			WindowName: unwrapIRI(caps[1], prefixes),
			StreamName: unwrapIRI(caps[2], prefixes),
			Start:      start,
			End:        end,
			Offset:     -1,
			Type:       HistoricalFixedWindow,
		}, nil
	}

	if caps := p.liveSliding.FindStringSubmatch(line); caps != nil {
		width, err := strconv.ParseInt(caps[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: window range %q", ErrParse, caps[3])
		}
		slide, err := strconv.ParseInt(caps[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: window step %q", ErrParse, caps[4])
		}
		return &WindowDefinition{
			WindowName: unwrapIRI(caps[1], prefixes),
			StreamName: unwrapIRI(caps[2], prefixes),
			Width:      width,
			Slide:      slide,
			Offset:     -1,
			Start:      -1,
			End:        -1,
			Type:       LiveWindow,
		}, nil
	}

	return nil, nil
}

// Parse extracts windows, prefixes and clauses from a JanusQL query, and
// derives the RSP-QL query for its live windows plus one SPARQL query per
// historical window.
func (p *JanusQLParser) Parse(query string) (*ParsedJanusQuery, error) {
	parsed := &ParsedJanusQuery{
		Prefixes: make(map[string]string),
	}

	var prefixLines []string
	var whereLines []string
	inWhereClause := false

	for _, line := range strings.Split(query, "\n") {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "/*") ||
			strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "*/") {
			if inWhereClause && trimmed != "" {
				whereLines = append(whereLines, trimmed)
			}
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "REGISTER"):
			if caps := p.register.FindStringSubmatch(trimmed); caps != nil {
				operator, _ := parseOperator(caps[1])
				parsed.R2S = &R2S{
					Operator: operator,
					Name:     unwrapIRI(caps[2], parsed.Prefixes),
				}
			}
		case strings.HasPrefix(trimmed, "PREFIX"):
			if caps := p.prefix.FindStringSubmatch(trimmed); caps != nil {
				parsed.Prefixes[caps[1]] = caps[2]
				prefixLines = append(prefixLines, trimmed)
			}
		case strings.HasPrefix(trimmed, "SELECT"):
			parsed.SelectClause = trimmed
		case strings.HasPrefix(trimmed, "FROM NAMED WINDOW"):
			window, err := p.parseWindow(trimmed, parsed.Prefixes)
			if err != nil {
				return nil, err
			}
			if window != nil {
				if window.Type == LiveWindow {
					parsed.LiveWindows = append(parsed.LiveWindows, *window)
				} else {
					parsed.HistoricalWindows = append(parsed.HistoricalWindows, *window)
				}
			}
		case strings.HasPrefix(trimmed, "WHERE"):
			inWhereClause = true
			whereLines = append(whereLines, line)
		default:
			if inWhereClause {
				whereLines = append(whereLines, line)
			}
		}
	}

	parsed.WhereClause = strings.Join(whereLines, "\n")

	if len(parsed.LiveWindows) > 0 {
		parsed.RSPQLQuery = p.generateRSPQLQuery(parsed, prefixLines)
	}
	parsed.SparqlQueries = p.generateSparqlQueries(parsed, prefixLines)

	return parsed, nil
}

// generateRSPQLQuery rebuilds the live-window part of the query as plain
// RSP-QL.
func (p *JanusQLParser) generateRSPQLQuery(parsed *ParsedJanusQuery, prefixLines []string) string {
	var lines []string

	lines = append(lines, prefixLines...)
	lines = append(lines, "")

	if parsed.R2S != nil {
		lines = append(lines, fmt.Sprintf("REGISTER %s %s AS",
			parsed.R2S.Operator, wrapIRI(parsed.R2S.Name, parsed.Prefixes)))
	}

	if parsed.SelectClause != "" {
		lines = append(lines, parsed.SelectClause)
	}

	lines = append(lines, "")

	for _, window := range parsed.LiveWindows {
		lines = append(lines, fmt.Sprintf("FROM NAMED WINDOW %s ON STREAM %s [RANGE %d STEP %d]",
			wrapIRI(window.WindowName, parsed.Prefixes),
			wrapIRI(window.StreamName, parsed.Prefixes),
			window.Width, window.Slide))
	}

	if parsed.WhereClause != "" {
		lines = append(lines, parsed.WhereClause)
	}

	return strings.Join(lines, "\n")
}

// generateSparqlQueries derives one SPARQL query per historical window.
func (p *JanusQLParser) generateSparqlQueries(parsed *ParsedJanusQuery, prefixLines []string) []string {
	var queries []string

	for i := range parsed.HistoricalWindows {
		var lines []string

		lines = append(lines, prefixLines...)
		lines = append(lines, "")

		if parsed.SelectClause != "" {
			lines = append(lines, parsed.SelectClause)
		}

		lines = append(lines, "")
		lines = append(lines, p.adaptWhereClauseForHistorical(parsed.WhereClause, &parsed.HistoricalWindows[i]))
		queries = append(queries, strings.Join(lines, "\n"))
	}

	return queries
}

// adaptWhereClauseForHistorical rewrites WINDOW blocks to GRAPH blocks and
// constrains the timestamp to the window bounds.
func (p *JanusQLParser) adaptWhereClauseForHistorical(whereClause string, window *WindowDefinition) string {
	adapted := strings.ReplaceAll(whereClause, "WINDOW ", "GRAPH ")

	var filter string
	switch window.Type {
	case HistoricalFixedWindow:
		if window.Start >= 0 && window.End >= 0 {
			filter = fmt.Sprintf("\n FILTER(?timestamp >= %d && ?timestamp <= %d)", window.Start, window.End)
		}
	case HistoricalSlidingWindow:
		if window.Offset >= 0 {
			filter = fmt.Sprintf("\n FILTER(?timestamp >= %d)", window.Offset)
		}
	}
	closing := strings.LastIndex(adapted, "}")
	if filter == "" || closing < 0 {
		return adapted
	}
	return adapted[:closing] + filter + "\n" + adapted[closing:]
}
