// Package dictionary implements the tokenizer/dictionary collaborator
// spec.md §6 describes: word-id lookup with stopword/wordform/stemmer
// handling, used by the core to turn raw terms into the identifiers its
// posting lists are keyed on.
package dictionary

import (
	"hash/fnv"
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
)

// Config mirrors the teacher's AnalyzerConfig, generalized into the
// dictionary's settings surface (spec.md §6: "get_settings_hash is used
// to invalidate caches" — every field here participates in that hash).
type Config struct {
	MinTokenLength  int
	EnableStemming  bool
	EnableStopwords bool
}

// DefaultConfig returns the standard pipeline settings.
func DefaultConfig() Config {
	return Config{MinTokenLength: 2, EnableStemming: true, EnableStopwords: true}
}

// markerStart/markerEnd are folded into the top bits of a word id by
// GetWordIDWithMarkers, spec.md §6's "get_word_id_with_markers" variant
// used when a term sits at the first or last position of a field.
const (
	markerStart uint64 = 1 << 63
	markerEnd   uint64 = 1 << 62
	idMask             = ^(markerStart | markerEnd)
)

// Dictionary adapts the teacher's fixed analysis pipeline
// (`analyzer.go`'s tokenize/lowercase/stopword/length/stem chain) into
// spec.md §6's stateful collaborator interface: word-id assignment,
// stopword detection, wordform substitution, and a settings hash used to
// invalidate dependent caches (qcache.Cache.Invalidate).
type Dictionary struct {
	cfg       Config
	wordforms map[string]string
	hash      uint64
}

// New builds a Dictionary. wordforms maps a surface form to its
// canonical replacement, applied before stemming and id lookup, per
// spec.md §6: "Wordforms and multi-forms are applied by the dictionary
// before word-id lookup."
func New(cfg Config, wordforms map[string]string) *Dictionary {
	d := &Dictionary{cfg: cfg, wordforms: wordforms}
	d.hash = d.computeSettingsHash()
	return d
}

func (d *Dictionary) computeSettingsHash() uint64 {
	h := fnv.New64a()
	h.Write([]byte{boolByte(d.cfg.EnableStemming), boolByte(d.cfg.EnableStopwords), byte(d.cfg.MinTokenLength)})
	keys := make([]string, 0, len(d.wordforms))
	for k := range d.wordforms {
		keys = append(keys, k)
	}
	sortStrings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(d.wordforms[k]))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// SettingsHash satisfies spec.md §6's get_settings_hash, a stable digest
// of everything that would change how a term maps to a word id.
func (d *Dictionary) SettingsHash() uint64 { return d.hash }

// Tokenize splits text the way the teacher's tokenize does: any
// non-letter, non-digit rune is a delimiter, Unicode-aware.
func (d *Dictionary) Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// IsStopWord reports whether word (already lowercased by the caller, or
// not — IsStopWord lowercases internally) is a stopword, per spec.md §6.
func (d *Dictionary) IsStopWord(word string) bool {
	_, ok := englishStopwords[strings.ToLower(word)]
	return ok
}

// ApplyStemmers reduces word to its root form via the Porter2/Snowball
// algorithm, mirroring the teacher's stemmerFilter.
func (d *Dictionary) ApplyStemmers(word string) string {
	return snowballeng.Stem(word, false)
}

// canonicalize lowercases, substitutes any configured wordform, and
// optionally stems — the pipeline every GetWordID* variant shares.
func (d *Dictionary) canonicalize(word string, stem bool) (string, bool) {
	lower := strings.ToLower(word)
	if d.cfg.EnableStopwords && d.IsStopWord(lower) {
		return "", false
	}
	if len(lower) < d.cfg.MinTokenLength {
		return "", false
	}
	if wf, ok := d.wordforms[lower]; ok {
		lower = wf
	}
	if stem && d.cfg.EnableStemming {
		lower = d.ApplyStemmers(lower)
	}
	return lower, true
}

// CanonicalTerm returns the fully canonicalized (stopword-filtered,
// wordform-substituted, optionally stemmed) form of word, and false if
// word is a stopword or too short to index. Index builders use this to
// derive the posting-list key directly, rather than hashing it into a
// numeric id the way GetWordID does for the ABI-facing accessor.
func (d *Dictionary) CanonicalTerm(word string) (string, bool) {
	return d.canonicalize(word, true)
}

// GetWordID returns a stable identifier for word after full
// canonicalization (stopwording, wordforms, stemming), or 0 if word is a
// stopword or too short — spec.md §6: "Stopwords return 0."
func (d *Dictionary) GetWordID(word string) uint64 {
	canon, ok := d.canonicalize(word, true)
	if !ok {
		return 0
	}
	return hashWord(canon)
}

// GetWordIDNonStemmed is GetWordID without the stemming step, used where
// the caller needs an exact-form lookup (e.g. phrase expansion).
func (d *Dictionary) GetWordIDNonStemmed(word string) uint64 {
	canon, ok := d.canonicalize(word, false)
	if !ok {
		return 0
	}
	return hashWord(canon)
}

// GetWordIDWithMarkers is GetWordID with the field-boundary bits spec.md
// §6 names folded into the id's top two bits.
func (d *Dictionary) GetWordIDWithMarkers(word string, isFieldStart, isFieldEnd bool) uint64 {
	id := d.GetWordID(word) & idMask
	if isFieldStart {
		id |= markerStart
	}
	if isFieldEnd {
		id |= markerEnd
	}
	return id
}

func hashWord(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	id := h.Sum64() & idMask
	if id == 0 {
		id = 1 // 0 is reserved for "stopword/no id" per spec.md §6
	}
	return id
}

// englishStopwords is the teacher's stopword list (analyzer.go),
// unchanged.
var englishStopwords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "across": {}, "after": {}, "afterwards": {},
	"again": {}, "against": {}, "all": {}, "almost": {}, "alone": {}, "along": {},
	"already": {}, "also": {}, "although": {}, "always": {}, "am": {}, "among": {},
	"amongst": {}, "amoungst": {}, "amount": {}, "an": {}, "and": {}, "another": {},
	"any": {}, "anyhow": {}, "anyone": {}, "anything": {}, "anyway": {}, "anywhere": {},
	"are": {}, "around": {}, "as": {}, "at": {}, "back": {}, "be": {}, "became": {},
	"because": {}, "become": {}, "becomes": {}, "becoming": {}, "been": {}, "before": {},
	"beforehand": {}, "behind": {}, "being": {}, "below": {}, "beside": {}, "besides": {},
	"between": {}, "beyond": {}, "bill": {}, "both": {}, "bottom": {}, "but": {}, "by": {},
	"call": {}, "can": {}, "cannot": {}, "cant": {}, "co": {}, "con": {}, "could": {},
	"couldnt": {}, "cry": {}, "de": {}, "describe": {}, "detail": {}, "do": {}, "done": {},
	"down": {}, "due": {}, "during": {}, "each": {}, "eg": {}, "eight": {}, "either": {},
	"eleven": {}, "else": {}, "elsewhere": {}, "empty": {}, "enough": {}, "etc": {},
	"even": {}, "ever": {}, "every": {}, "everyone": {}, "everything": {}, "everywhere": {},
	"except": {}, "few": {}, "fifteen": {}, "fify": {}, "fill": {}, "find": {}, "fire": {},
	"first": {}, "five": {}, "for": {}, "former": {}, "formerly": {}, "forty": {},
	"found": {}, "four": {}, "from": {}, "front": {}, "full": {}, "further": {}, "get": {},
	"give": {}, "go": {}, "had": {}, "has": {}, "hasnt": {}, "have": {}, "he": {},
	"hence": {}, "her": {}, "here": {}, "hereafter": {}, "hereby": {}, "herein": {},
	"hereupon": {}, "hers": {}, "herself": {}, "him": {}, "himself": {}, "his": {},
	"how": {}, "however": {}, "hundred": {}, "ie": {}, "if": {}, "in": {}, "inc": {},
	"indeed": {}, "interest": {}, "into": {}, "is": {}, "it": {}, "its": {}, "itself": {},
	"keep": {}, "last": {}, "latter": {}, "latterly": {}, "least": {}, "less": {},
	"ltd": {}, "made": {}, "many": {}, "may": {}, "me": {}, "meanwhile": {}, "might": {},
	"mill": {}, "mine": {}, "more": {}, "moreover": {}, "most": {}, "mostly": {},
	"move": {}, "much": {}, "must": {}, "my": {}, "myself": {}, "name": {}, "namely": {},
	"neither": {}, "never": {}, "nevertheless": {}, "next": {}, "nine": {}, "no": {},
	"nobody": {}, "none": {}, "noone": {}, "nor": {}, "not": {}, "nothing": {}, "now": {},
	"nowhere": {}, "of": {}, "off": {}, "often": {}, "on": {}, "once": {}, "one": {},
	"only": {}, "onto": {}, "or": {}, "other": {}, "others": {}, "otherwise": {}, "our": {},
	"ours": {}, "ourselves": {}, "out": {}, "over": {}, "own": {}, "part": {}, "per": {},
	"perhaps": {}, "please": {}, "put": {}, "rather": {}, "re": {}, "same": {}, "see": {},
	"seem": {}, "seemed": {}, "seeming": {}, "seems": {}, "serious": {}, "several": {},
	"she": {}, "should": {}, "show": {}, "side": {}, "since": {}, "sincere": {}, "six": {},
	"sixty": {}, "so": {}, "some": {}, "somehow": {}, "someone": {}, "something": {},
	"sometime": {}, "sometimes": {}, "somewhere": {}, "still": {}, "such": {},
	"system": {}, "take": {}, "ten": {}, "than": {}, "that": {}, "the": {}, "their": {},
	"them": {}, "themselves": {}, "then": {}, "thence": {}, "there": {}, "thereafter": {},
	"thereby": {}, "therefore": {}, "therein": {}, "thereupon": {}, "these": {}, "they": {},
	"thickv": {}, "thin": {}, "third": {}, "this": {}, "those": {}, "though": {},
	"three": {}, "through": {}, "throughout": {}, "thru": {}, "thus": {}, "to": {},
	"together": {}, "too": {}, "top": {}, "toward": {}, "towards": {}, "twelve": {},
	"twenty": {}, "two": {}, "un": {}, "under": {}, "until": {}, "up": {}, "upon": {},
	"us": {}, "very": {}, "via": {}, "was": {}, "we": {}, "well": {}, "were": {},
	"what": {}, "whatever": {}, "when": {}, "whence": {}, "whenever": {}, "where": {},
	"whereafter": {}, "whereas": {}, "whereby": {}, "wherein": {}, "whereupon": {},
	"wherever": {}, "whether": {}, "which": {}, "while": {}, "whither": {}, "who": {},
	"whoever": {}, "whole": {}, "whom": {}, "whose": {}, "why": {}, "will": {}, "with": {},
	"within": {}, "without": {}, "would": {}, "yet": {}, "you": {}, "your": {}, "yours": {},
	"yourself": {}, "yourselves": {},
}
