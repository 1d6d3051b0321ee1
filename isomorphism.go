package tulna

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spaolacci/murmur3"
)

// Sentinels used when rendering triple signatures.
const (
	sigSelf  = "@self"
	sigBlank = "@blank"
)

// normalizedTriple is the engine's internal view of a triple. Every position
// is a string whose prefix reveals its kind: "<" for IRIs, "\"" for literals,
// "_:" for unlabeled terms (blank nodes and variables alike).
type normalizedTriple struct {
	subject   string
	predicate string
	object    string
}

func (q normalizedTriple) key() string {
	return q.subject + "|" + q.predicate + "|" + q.object
}

func (q normalizedTriple) hasBlank() bool {
	return isBlank(q.subject) || isBlank(q.predicate) || isBlank(q.object)
}

func isBlank(term string) bool {
	return strings.HasPrefix(term, "_:")
}

// AreIsomorphic reports whether two graph patterns describe the same structure
// up to a renaming of their unlabeled terms, i.e. whether a bijection between
// the blank nodes and variables of the two sides exists that maps one triple
// set onto the other. Triple order and duplicate triples are irrelevant.
func AreIsomorphic(triplesA, triplesB []*Triple) (bool, error) {
	graphA, err := normalizeGraph(triplesA)
	if err != nil {
		return false, err
	}
	graphB, err := normalizeGraph(triplesB)
	if err != nil {
		return false, err
	}

	graphA = uniq(graphA)
	graphB = uniq(graphB)

	if len(graphA) != len(graphB) {
		return false, nil
	}

	st, ok := newIsoState(graphA, graphB)
	if !ok {
		return false, nil
	}

	return st.findBijection(map[string]uint64{}, map[string]uint64{}) != nil, nil
}

// normalizeGraph rewrites triples over the string alphabet the engine works
// on. Variables are renumbered per graph in first-occurrence order; the "_:v"
// and "_:u" prefixes keep variables and user-supplied blank node ids from
// ever colliding.
func normalizeGraph(triples []*Triple) ([]normalizedTriple, error) {
	vars := make(map[string]string)
	graph := make([]normalizedTriple, 0, len(triples))

	for _, triple := range triples {
		if triple == nil {
			return nil, fmt.Errorf("%w: nil triple", ErrInvalidInput)
		}
		s, err := normalizeTerm(triple.Subject, vars)
		if err != nil {
			return nil, err
		}
		p, err := normalizeTerm(triple.Predicate, vars)
		if err != nil {
			return nil, err
		}
		o, err := normalizeTerm(triple.Object, vars)
		if err != nil {
			return nil, err
		}
		graph = append(graph, normalizedTriple{subject: s, predicate: p, object: o})
	}

	return graph, nil
}

func normalizeTerm(t Term, vars map[string]string) (string, error) {
	switch term := t.(type) {
	case *Resource:
		if isBlank(term.URI) {
			return "", fmt.Errorf("%w: IRI %q", ErrInvalidInput, term.URI)
		}
		return term.String(), nil
	case *Literal:
		if isBlank(term.Value) {
			return "", fmt.Errorf("%w: literal %q", ErrInvalidInput, term.Value)
		}
		return term.String(), nil
	case *BlankNode:
		return "_:u" + term.ID, nil
	case *Variable:
		id, ok := vars[term.Name]
		if !ok {
			id = "_:v" + strconv.Itoa(len(vars))
			vars[term.Name] = id
		}
		return id, nil
	}
	return "", fmt.Errorf("%w: term %T", ErrInvalidInput, t)
}

// uniq collapses duplicate triples, keeping first-occurrence order.
func uniq(graph []normalizedTriple) []normalizedTriple {
	seen := make(map[string]bool, len(graph))
	result := make([]normalizedTriple, 0, len(graph))
	for _, quad := range graph {
		key := quad.key()
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, quad)
	}
	return result
}

// isoState carries the per-call working set: the two deduplicated graphs,
// their blank-bearing subsets and the sorted unlabeled identifiers of each
// side. Nothing outlives the call.
type isoState struct {
	fullA  []normalizedTriple
	fullB  []normalizedTriple
	blankA []normalizedTriple
	blankB []normalizedTriple
	nodesA []string
	nodesB []string
	indexB map[string]bool
}

// newIsoState splits both graphs and runs the cheap preflight rejections:
// ground triples carry no unlabeled position, so no renaming can ever change
// them and the two ground sets must already be equal.
func newIsoState(graphA, graphB []normalizedTriple) (*isoState, bool) {
	groundA := indexGraph(filterGround(graphA))
	groundB := indexGraph(filterGround(graphB))
	if len(groundA) != len(groundB) {
		return nil, false
	}
	for key := range groundA {
		if !groundB[key] {
			return nil, false
		}
	}

	st := &isoState{
		fullA:  graphA,
		fullB:  graphB,
		blankA: filterBlank(graphA),
		blankB: filterBlank(graphB),
		nodesA: blankNodes(graphA),
		nodesB: blankNodes(graphB),
		indexB: indexGraph(graphB),
	}
	if len(st.nodesA) != len(st.nodesB) {
		return nil, false
	}
	return st, true
}

// findBijection is the recursive heart of the algorithm. Each call refines
// hashes under the given groundings, pairs up grounded nodes, and either
// hands a complete pairing to the verifier or speculates on one ambiguous
// pair and recurses. Returns nil when no bijection exists under the given
// groundings.
func (st *isoState) findBijection(groundedA, groundedB map[string]uint64) map[string]string {
	hashesA, allA := hashTerms(st.blankA, st.nodesA, groundedA)
	hashesB, allB := hashTerms(st.blankB, st.nodesB, groundedB)

	// The grounded hash values must agree between the sides as a multiset;
	// otherwise the sides disagree about who is distinguished.
	if len(hashesA) != len(hashesB) {
		return nil
	}
	counts := make(map[uint64]int, len(hashesA))
	for _, hash := range hashesA {
		counts[hash]++
	}
	for _, hash := range hashesB {
		counts[hash]--
		if counts[hash] < 0 {
			return nil
		}
	}

	// Pair every grounded node on side A with an unused same-hash node on
	// side B. Ambiguous nodes are left to the speculation phase.
	bijection := make(map[string]string, len(hashesA))
	used := make(map[string]bool, len(hashesB))

	for _, nodeA := range st.nodesA {
		hashA, grounded := hashesA[nodeA]
		if !grounded {
			continue
		}
		found := false
		for _, nodeB := range st.nodesB {
			if used[nodeB] {
				continue
			}
			if hashB, ok := hashesB[nodeB]; ok && hashA == hashB {
				bijection[nodeA] = nodeB
				used[nodeB] = true
				found = true
				break
			}
		}
		if !found {
			return nil
		}
	}

	if len(bijection) == len(st.nodesA) && len(used) == len(st.nodesB) {
		if st.verify(bijection) {
			return bijection
		}
		return nil
	}

	// Speculate: ground one pair of ambiguous nodes with matching hashes to
	// a fresh shared value and recurse. One pair per frame; committing a
	// whole equivalence class at once is unsound, since same-hash nodes may
	// still need different partners once refinement proceeds. Sorted node
	// lists keep the candidate order deterministic.
	for _, nodeA := range st.nodesA {
		if _, grounded := hashesA[nodeA]; grounded {
			continue
		}
		hashA, ok := allA[nodeA]
		if !ok {
			continue
		}
		for _, nodeB := range st.nodesB {
			if _, grounded := hashesB[nodeB]; grounded {
				continue
			}
			hashB, ok := allB[nodeB]
			if !ok || hashA != hashB {
				continue
			}

			shared := hashString("speculation|" + nodeA)
			nextA := copyHashes(groundedA)
			nextA[nodeA] = shared
			nextB := copyHashes(groundedB)
			nextB[nodeB] = shared

			if result := st.findBijection(nextA, nextB); result != nil {
				return result
			}
		}
	}

	return nil
}

// verify rewrites the full graph A through the bijection and checks that
// every rewritten triple exists in graph B. Hash agreement alone is not
// sufficient: regular graphs can agree on every signature and still not be
// isomorphic.
func (st *isoState) verify(bijection map[string]string) bool {
	if len(st.fullA) != len(st.fullB) {
		return false
	}
	for _, quad := range st.fullA {
		s := applyMapping(quad.subject, bijection)
		p := applyMapping(quad.predicate, bijection)
		o := applyMapping(quad.object, bijection)
		if !st.indexB[s+"|"+p+"|"+o] {
			return false
		}
	}
	return true
}

func applyMapping(pos string, bijection map[string]string) string {
	if mapped, ok := bijection[pos]; ok {
		return mapped
	}
	return pos
}

// hashTerms assigns signature hashes to every unlabeled term, iterating to a
// fixed point. A term is grounded either when all its unlabeled neighbors are
// already grounded, or when its hash is unique on its side: a globally unique
// hash distinguishes the term no matter what its neighborhood still hides.
// The first returned map holds grounded terms only; the second the latest
// hash of every term hashed in this call (terms grounded on entry are not in
// it).
func hashTerms(quads []normalizedTriple, terms []string, grounded map[string]uint64) (map[string]uint64, map[string]uint64) {
	hashes := copyHashes(grounded)
	allHashes := make(map[string]uint64, len(terms))

	for {
		before := len(hashes)

		for _, term := range terms {
			if _, ok := hashes[term]; ok {
				continue
			}
			selfGrounded, hash := hashTerm(term, quads, hashes)
			if selfGrounded {
				hashes[term] = hash
			}
			allHashes[term] = hash
		}

		counts := make(map[uint64]int, len(allHashes))
		for _, hash := range allHashes {
			counts[hash]++
		}
		for term, hash := range allHashes {
			if counts[hash] == 1 {
				hashes[term] = hash
			}
		}

		if len(hashes) == before {
			return hashes, allHashes
		}
	}
}

// hashTerm computes the structural hash of one term from the canonical
// multiset of signatures of the triples it occurs in, and reports whether
// every other unlabeled term in those triples is already grounded.
func hashTerm(term string, quads []normalizedTriple, hashes map[string]uint64) (bool, uint64) {
	var signatures []string
	selfGrounded := true

	for _, quad := range quads {
		positions := [3]string{quad.subject, quad.predicate, quad.object}
		occurs := false
		for _, pos := range positions {
			if pos == term {
				occurs = true
				break
			}
		}
		if !occurs {
			continue
		}

		signatures = append(signatures, quadSignature(quad, hashes, term))
		for _, pos := range positions {
			if pos != term && !termGrounded(pos, hashes) {
				selfGrounded = false
			}
		}
	}

	// Triple order inside a graph carries no meaning; sorting makes the
	// signature invariant to it.
	sort.Strings(signatures)
	return selfGrounded, hashString(strings.Join(signatures, ""))
}

// quadSignature renders a triple from the perspective of one term, in a
// fixed s|p|o layout.
func quadSignature(quad normalizedTriple, hashes map[string]uint64, term string) string {
	return termSignature(quad.subject, hashes, term) + "|" +
		termSignature(quad.predicate, hashes, term) + "|" +
		termSignature(quad.object, hashes, term)
}

// termSignature renders one position: the target term as @self, grounded
// unlabeled terms as their hash, ungrounded ones as the opaque @blank marker
// so that their identities cannot leak into the hash.
func termSignature(pos string, hashes map[string]uint64, target string) string {
	if pos == target {
		return sigSelf
	}
	if !isBlank(pos) {
		return pos
	}
	if hash, ok := hashes[pos]; ok {
		return strconv.FormatUint(hash, 10)
	}
	return sigBlank
}

func termGrounded(pos string, hashes map[string]uint64) bool {
	if !isBlank(pos) {
		return true
	}
	_, ok := hashes[pos]
	return ok
}

// hashString hashes with MurmurHash3 x64 128 (seed 0), keeping the low 64
// bits.
func hashString(data string) uint64 {
	h1, _ := murmur3.Sum128([]byte(data))
	return h1
}

func copyHashes(hashes map[string]uint64) map[string]uint64 {
	dup := make(map[string]uint64, len(hashes)+1)
	for term, hash := range hashes {
		dup[term] = hash
	}
	return dup
}

func filterBlank(graph []normalizedTriple) []normalizedTriple {
	var result []normalizedTriple
	for _, quad := range graph {
		if quad.hasBlank() {
			result = append(result, quad)
		}
	}
	return result
}

func filterGround(graph []normalizedTriple) []normalizedTriple {
	var result []normalizedTriple
	for _, quad := range graph {
		if !quad.hasBlank() {
			result = append(result, quad)
		}
	}
	return result
}

func indexGraph(graph []normalizedTriple) map[string]bool {
	index := make(map[string]bool, len(graph))
	for _, quad := range graph {
		index[quad.key()] = true
	}
	return index
}

func blankNodes(graph []normalizedTriple) []string {
	seen := make(map[string]bool)
	for _, quad := range graph {
		for _, pos := range [3]string{quad.subject, quad.predicate, quad.object} {
			if isBlank(pos) {
				seen[pos] = true
			}
		}
	}
	nodes := make([]string, 0, len(seen))
	for node := range seen {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	return nodes
}
