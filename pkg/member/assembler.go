package member

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/knakk/rdf"

	"github.com/3leaps/treedump/pkg/rdfio"
	"github.com/3leaps/treedump/pkg/schema"
)

// ErrInvalidDateField marks a date-field triple whose object is not a
// typed, parseable literal - a schema contract violation rather than a
// Turtle syntax error.
var ErrInvalidDateField = errors.New("member: date field object is not a parseable literal")

// DateLayout is the lexical format every per-triple date field and TREE
// relation value is written and parsed in. It differs from the config
// file's own highest_date/lowest_date layout (see internal/config), which
// carries no fractional seconds - the two were parsed with distinct calls
// in the system this was ported from and that distinction is preserved
// here rather than unified.
const DateLayout = "2006-01-02T15:04:05.999999999"

// Config holds the fixed, compile-once inputs an Assembler needs for the
// life of a run.
type Config struct {
	MemberRegex *regexp.Regexp
	DateField   string
	Schema      []schema.Rule
	// Frequency is how often (in emitted members) progress is reported.
	// Zero disables progress reporting.
	Frequency int
}

// Assembler folds an ordered triple stream into completed Members,
// following the state machine described for the member assembler: a
// member's identity is set by the first triple whose subject matches the
// configured regex, its date is extracted from the configured date field,
// and it is emitted the instant every schema rule has matched at least one
// of its accumulated triples.
type Assembler struct {
	cfg        Config
	current    Member
	mask       *schema.Mask
	nEmitted   int
	onProgress func(nEmitted int)
}

// NewAssembler builds an Assembler. onProgress may be nil.
func NewAssembler(cfg Config, onProgress func(nEmitted int)) *Assembler {
	return &Assembler{
		cfg:        cfg,
		mask:       schema.NewMask(cfg.Schema),
		onProgress: onProgress,
	}
}

// Observe folds one triple into the member under construction. It returns
// a completed Member and true when the triple completes it; the assembler
// resets its internal state immediately after, ready for the next member.
func (a *Assembler) Observe(t rdf.Triple) (Member, bool, error) {
	subject := termKey(t.Subj)
	predicate := termKey(t.Pred)

	if a.current.ID == "" && a.cfg.MemberRegex.MatchString(subject) {
		a.current.ID = subject
	}
	a.current.Properties = append(a.current.Properties, t)

	if strings.Contains(predicate, a.cfg.DateField) {
		date, err := parseDateField(t.Obj)
		if err != nil {
			return Member{}, false, fmt.Errorf("member: date field triple with subject %q: %w", subject, err)
		}
		a.current.Date = date
	}

	a.mask.Observe(subject, predicate, a.current.ID, nil)

	if !a.mask.Complete() {
		return Member{}, false, nil
	}

	done := a.current
	a.current = Member{}
	a.mask.Reset()
	a.nEmitted++
	if a.onProgress != nil && a.cfg.Frequency > 0 && a.nEmitted%a.cfg.Frequency == 0 {
		a.onProgress(a.nEmitted)
	}
	return done, true, nil
}

// Pending reports the number of triples accumulated for the member
// currently under construction, for diagnostics at EOF: a non-zero value
// means a partial member is being silently discarded.
func (a *Assembler) Pending() int {
	return len(a.current.Properties)
}

// NEmitted returns the number of members emitted so far.
func (a *Assembler) NEmitted() int {
	return a.nEmitted
}

func termKey(t rdf.Term) string {
	if raw, ok := rdfio.RawIRI(t); ok {
		return raw
	}
	return t.String()
}

func parseDateField(obj rdf.Term) (int64, error) {
	lit, ok := rdfio.Literal(obj)
	if !ok {
		return 0, fmt.Errorf("%w: object is not a literal", ErrInvalidDateField)
	}
	lexical := fmt.Sprint(lit.Value)
	parsed, err := time.Parse(DateLayout, lexical)
	if err != nil {
		return 0, fmt.Errorf("%w: %q does not match layout %q: %v", ErrInvalidDateField, lexical, DateLayout, err)
	}
	return parsed.Unix(), nil
}
