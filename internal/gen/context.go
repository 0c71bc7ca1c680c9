package gen

import (
	"context"

	"github.com/specialistvlad/dm2mcell/internal/compartment"
	"github.com/specialistvlad/dm2mcell/internal/ctxlog"
	"github.com/specialistvlad/dm2mcell/internal/ident"
	"github.com/specialistvlad/dm2mcell/internal/model"
	"github.com/specialistvlad/dm2mcell/internal/notation"
	"github.com/specialistvlad/dm2mcell/internal/program"
)

// Options control a generation run.
type Options struct {
	// Prefix names the output units.
	Prefix string
	// Testing fixes generation-time constants so output is reproducible.
	Testing bool
	// DeclarativePreferred enables the declarative notation for eligible
	// constructs; when false everything is emitted procedurally.
	DeclarativePreferred bool
	// ParameterOverrides replace parameter expressions by name.
	ParameterOverrides map[string]string
}

// Result summarizes a run.
type Result struct {
	Failed          bool
	Units           []string
	DeclarativeUsed bool
}

type speciesRef struct {
	id       string
	notation notation.Notation
	surface  bool
}

type ruleRef struct {
	id       string
	notation notation.Notation
}

type termRef struct {
	id string
	// local terms are created inside the declarative-rule count function.
	local bool
}

type configSetting struct {
	field string
	value string
}

// Context is the state of one generation run.
type Context struct {
	opts  Options
	model *model.Model
	prog  *program.Program
	names *ident.Registry

	params         []model.Parameter
	config         []configSetting
	species        map[string]speciesRef
	surfaceClasses map[string]string
	rules          map[string]ruleRef
	objects        map[string]string
	objectOrder    []string
	regions        map[string]string
	patterns       map[string]model.ReleasePattern
	patternIDs     map[string]string
	terms          map[string]termRef
	compartments   *compartment.Set
	localCounts    []string

	failed bool
}

func newContext(ctx context.Context, m *model.Model, opts Options) *Context {
	if opts.Prefix == "" {
		opts.Prefix = "model"
	}
	return &Context{
		opts:           opts,
		model:          m,
		prog:           program.New(opts.Prefix),
		names:          ident.NewRegistry(),
		species:        make(map[string]speciesRef),
		surfaceClasses: make(map[string]string),
		rules:          make(map[string]ruleRef),
		objects:        make(map[string]string),
		regions:        make(map[string]string),
		patterns:       make(map[string]model.ReleasePattern),
		patternIDs:     make(map[string]string),
		terms:          make(map[string]termRef),
		compartments:   compartment.Resolve(ctx, m),
	}
}

// itemError records a failed item: it is logged, the run is marked failed
// and an error comment takes the place of the statement.
func (c *Context) itemError(ctx context.Context, unit, item string, err error) {
	ctxlog.FromContext(ctx).Error("Item could not be generated.", "unit", unit, "item", item, "error", err)
	c.failed = true
	c.prog.Unit(unit).Error(item, err)
}

// problems reports decoding problems of the given sections into unit.
func (c *Context) problems(ctx context.Context, unit string, sections ...model.Section) {
	for _, p := range c.model.ProblemsIn(sections...) {
		c.itemError(ctx, unit, p.Item, p.Err)
	}
}

func (c *Context) declarative() bool { return c.opts.DeclarativePreferred }

// speciesDeclaredIn reports whether every name is a species declared in n.
func (c *Context) speciesDeclaredIn(names []string, n notation.Notation) bool {
	for _, name := range names {
		ref, ok := c.species[name]
		if !ok || ref.notation != n {
			return false
		}
	}
	return true
}

// isRule reports whether name is a generated reaction rule.
func (c *Context) isRule(name string) bool {
	_, ok := c.rules[name]
	return ok
}
