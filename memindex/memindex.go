// Package memindex implements a minimal in-memory index builder: the
// on-disk index build/merge machinery spec.md §1 places out of scope
// ("an opaque Tokenizer + Dictionary that produces word-ids and hit
// streams") still needs *some* concrete backing to run the core
// end-to-end, so this package adapts the teacher's in-memory
// InvertedIndex (`index.go`'s DocBitmaps/PostingsList hybrid storage)
// into a builder over this module's own postinglist.Qword/hitpos types,
// for the demo CLI in cmd/ftsdemo. It is demo-only scaffolding, not a
// production index format.
package memindex

import (
	"math"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/manticore-go/ftscore/dictionary"
	"github.com/manticore-go/ftscore/hitpos"
	"github.com/manticore-go/ftscore/postinglist"
)

// Document is one source record to index: a row id and its field values
// keyed by field name.
type Document struct {
	RowID  int64
	Fields map[string]string
}

// Index is an in-memory, single-segment index: one Qword per distinct
// canonical term, a row-id universe bitmap for match_all, and the raw
// field text kept around for highlighting/_source rendering.
type Index struct {
	mu sync.RWMutex

	dict       *dictionary.Dictionary
	fieldOrder []string
	fieldIdx   map[string]int

	terms    map[string]*postinglist.Qword
	universe *roaring.Bitmap
	docLen   map[int64]int
	rawDocs  map[int64]map[string]string

	totalDocLen int64
}

// New builds an empty index over the named fields, tokenizing with dict.
// Field order determines each field's hitpos.Pos field index.
func New(dict *dictionary.Dictionary, fields []string) *Index {
	idx := &Index{
		dict:       dict,
		fieldOrder: append([]string{}, fields...),
		fieldIdx:   make(map[string]int, len(fields)),
		terms:      make(map[string]*postinglist.Qword),
		universe:   roaring.NewBitmap(),
		docLen:     make(map[int64]int),
		rawDocs:    make(map[int64]map[string]string),
	}
	for i, f := range fields {
		idx.fieldIdx[f] = i
	}
	return idx
}

// FieldIndex satisfies jsonquery.Schema: resolves a field name to its
// hitpos field index.
func (idx *Index) FieldIndex(name string) (int, bool) {
	i, ok := idx.fieldIdx[name]
	return i, ok
}

// NumFields satisfies jsonquery.Schema.
func (idx *Index) NumFields() int { return len(idx.fieldOrder) }

// FieldNames returns the field list in hitpos field-index order, letting
// a caller turn a matched hitpos.FieldMask back into field names.
func (idx *Index) FieldNames() []string { return append([]string{}, idx.fieldOrder...) }

// AddDocument tokenizes every field of doc and folds its terms into the
// index, mirroring the teacher's Index method (tokenize, then per-token
// indexToken) generalized to multiple named fields instead of one flat
// document string.
func (idx *Index) AddDocument(doc Document) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.universe.Add(uint32(doc.RowID))
	idx.rawDocs[doc.RowID] = doc.Fields

	length := 0
	for _, fieldName := range idx.fieldOrder {
		text, ok := doc.Fields[fieldName]
		if !ok {
			continue
		}
		fieldIdx := idx.fieldIdx[fieldName]
		tokens := idx.dict.Tokenize(text)
		canon := make([]string, 0, len(tokens))
		for _, tok := range tokens {
			term, ok := idx.dict.CanonicalTerm(tok)
			if !ok {
				continue
			}
			canon = append(canon, term)
		}
		for pos, term := range canon {
			q, ok := idx.terms[term]
			if !ok {
				q = postinglist.NewQword(term, 0)
				idx.terms[term] = q
			}
			hp := hitpos.New(fieldIdx, pos)
			if pos == len(canon)-1 {
				hp = hp.SetEnd()
			}
			q.Add(doc.RowID, hp)
		}
		length += len(canon)
	}
	idx.docLen[doc.RowID] = length
	idx.totalDocLen += int64(length)
}

// Lookup satisfies ast.Source: resolves a query term to its posting
// list. atomPos on the returned Qword is always 0 here since memindex
// has no query-position context; ast.Compile only reads AtomPos through
// the iterator layer, which this module's keyword nodes set directly.
func (idx *Index) Lookup(term string) (*postinglist.Qword, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	canon, ok := idx.dict.CanonicalTerm(term)
	if !ok {
		return nil, false
	}
	q, ok := idx.terms[canon]
	return q, ok
}

// Universe satisfies ast.Source: every indexed row id, the execution
// form of match_all.
func (idx *Index) Universe() *roaring.Bitmap {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.universe.Clone()
}

// DocLen returns rowID's total indexed token count across all fields,
// the document-length input expr.Factors.SetDocLen needs for BM25A/
// BM25F.
func (idx *Index) DocLen(rowID int64) float64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return float64(idx.docLen[rowID])
}

// AvgDocLen returns the mean document length across the whole index.
func (idx *Index) AvgDocLen() float64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if len(idx.docLen) == 0 {
		return 0
	}
	return float64(idx.totalDocLen) / float64(len(idx.docLen))
}

// Fields returns rowID's raw field text, for _source rendering and
// highlighting in a caller that has no other document store.
func (idx *Index) Fields(rowID int64) map[string]string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.rawDocs[rowID]
}

// NumDocs returns the number of indexed documents.
func (idx *Index) NumDocs() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docLen)
}

// IDF returns the Robertson-Sparck-Jones IDF for term across the whole
// index: log((N - df + 0.5) / (df + 0.5) + 1). Used to seed
// expr.Factors' per-field idf table before ranking.
func (idx *Index) IDF(term string) float64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	canon, ok := idx.dict.CanonicalTerm(term)
	if !ok {
		return 0
	}
	q, ok := idx.terms[canon]
	if !ok {
		return 0
	}
	n := float64(len(idx.docLen))
	df := float64(q.DocCount)
	return logIDF(n, df)
}

func logIDF(n, df float64) float64 {
	if n <= 0 {
		return 0
	}
	x := (n-df+0.5)/(df+0.5) + 1
	if x <= 0 {
		return 0
	}
	return math.Log(x)
}

// Terms returns every distinct indexed term in sorted order.
func (idx *Index) Terms() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]string, 0, len(idx.terms))
	for t := range idx.terms {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
