// Package engine implements the execute strategy: the orchestrator that
// turns a compiled build.Configuration into populated instances.
//
// A Strategy owns one build history and is therefore one logical build
// session. It is not safe for concurrent use; callers needing parallel
// builds create one Strategy per goroutine from the same Configuration.
//
// Resolution order for a requested type:
//
//  1. creation rules matching the requested type and member
//  2. type mapping to the build type (creation rules are checked again)
//  3. ancestor reuse, when Settings.ReuseAncestors is on
//  4. type creators, then value generators, by descending priority
//  5. pointer types: build the element and take its address
//  6. constructor resolution, instantiation and property population
//
// Post-build actions run on every value produced by any of these paths.
// Failures are never downgraded to zero values; the whole call fails after
// the build history is unwound.
//
// There is no depth limit. The build history only rejects the same instance
// being entered twice, so a self-referential type (a *node holding a *node)
// recurses until the goroutine stack overflows unless the configuration
// terminates it: enable Settings.ReuseAncestors, ignore the property, or add
// a creation rule for it.
package engine

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/pithecene-io/modelforge/build"
	"github.com/pithecene-io/modelforge/creators"
	"github.com/pithecene-io/modelforge/generate"
	"github.com/pithecene-io/modelforge/history"
	"github.com/pithecene-io/modelforge/log"
	"github.com/pithecene-io/modelforge/metrics"
	"github.com/pithecene-io/modelforge/resolve"
	"github.com/pithecene-io/modelforge/rules"
	"github.com/pithecene-io/modelforge/typeinfo"
	"github.com/pithecene-io/modelforge/types"
)

// Option configures a Strategy.
type Option func(*Strategy)

// WithLogger sets the logger for build steps. Nil disables logging.
func WithLogger(l *log.Logger) Option {
	return func(s *Strategy) {
		s.logger = l
	}
}

// WithCollector sets the metrics collector. Nil disables metrics.
func WithCollector(c *metrics.Collector) Option {
	return func(s *Strategy) {
		s.collector = c
	}
}

// Strategy builds and populates instances from a Configuration.
type Strategy struct {
	cfg       *build.Configuration
	chain     *history.BuildHistory
	logger    *log.Logger
	collector *metrics.Collector

	// Snapshots of the configuration's ordered collections, taken once.
	creation   []*rules.CreationRule
	ignores    []*rules.IgnoreRule
	order      []*rules.ExecuteOrderRule
	creators   []creators.TypeCreator
	generators []generate.ValueGenerator
	postBuild  []rules.PostBuildAction
}

// New creates a strategy for cfg.
func New(cfg *build.Configuration, opts ...Option) (*Strategy, error) {
	if cfg == nil {
		return nil, types.ArgumentError("configuration")
	}
	s := &Strategy{
		cfg:        cfg,
		chain:      history.New(),
		creation:   cfg.CreationRules(),
		ignores:    cfg.IgnoreRules(),
		order:      cfg.ExecuteOrderRules(),
		creators:   cfg.TypeCreators(),
		generators: cfg.ValueGenerators(),
		postBuild:  cfg.PostBuildActions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Configuration returns the configuration the strategy builds with.
func (s *Strategy) Configuration() *build.Configuration {
	return s.cfg
}

// Create builds a new, fully populated value of t. args, when given, select
// and feed a constructor of the build type; they bypass creation rules,
// creators and generators.
//
// The result has exactly type t, or the mapped build type when t is mapped.
func (s *Strategy) Create(t reflect.Type, args ...any) (any, error) {
	if t == nil {
		return nil, types.ArgumentError("type")
	}
	s.collector.IncBuildStarted()

	v, err := s.build(t, nil, "", args)
	if err != nil {
		return nil, s.fail(t, err)
	}
	out, err := typeinfo.ValueFor(v, t)
	if err != nil {
		return nil, s.fail(t, err)
	}
	s.collector.IncBuildSucceeded()
	return out.Interface(), nil
}

// Populate assigns generated values to the eligible properties of instance
// and returns it. Existing values are overwritten; collection-typed
// properties are replaced, never appended to.
//
// A pointer is populated in place. A struct passed by value is copied and
// the populated copy is returned.
func (s *Strategy) Populate(instance any) (any, error) {
	if instance == nil {
		return nil, types.ArgumentError("instance")
	}
	s.collector.IncBuildStarted()

	rv := reflect.ValueOf(instance)
	v, err := s.populate(rv)
	if err != nil {
		return nil, s.fail(rv.Type(), err)
	}
	s.collector.IncBuildSucceeded()
	return v.Interface(), nil
}

// CreateChild builds a value of t for reference within the current build.
// Type creators call it for each element they produce.
func (s *Strategy) CreateChild(t reflect.Type, reference string) (any, error) {
	v, err := s.build(t, nil, reference, nil)
	if err != nil {
		return nil, err
	}
	return iface(v), nil
}

// BuildChain returns the live build history.
func (s *Strategy) BuildChain() *history.BuildHistory {
	return s.chain
}

func (s *Strategy) fail(t reflect.Type, err error) error {
	s.logger.BuildFailed(t, err)
	s.collector.IncBuildFailed()
	return err
}

// build resolves one value. member is nil for values requested by type,
// such as top-level requests and collection elements.
func (s *Strategy) build(t reflect.Type, member typeinfo.Member, reference string, args []any) (reflect.Value, error) {
	if t == nil {
		return reflect.Value{}, types.ArgumentError("type")
	}
	s.logger.CreatingType(t, reference, s.chain.Len())

	explicit := len(args) > 0
	if !explicit {
		if v, ok, err := s.fromCreationRule(t, t, member, reference); ok {
			return v, err
		}
	}

	bt := t
	if mt, ok := s.cfg.MappedType(t); ok {
		s.logger.MappedType(t, mt)
		s.collector.IncMappingApplied()
		bt = mt
		if !explicit {
			if v, ok, err := s.fromCreationRule(bt, t, member, reference); ok {
				return v, err
			}
		}
	}

	if !explicit {
		if v, ok := s.reuseAncestor(bt, reference); ok {
			return v, nil
		}
		if v, ok, err := s.fromCreator(bt, t, member, reference); ok {
			return v, err
		}
		if v, ok, err := s.fromGenerator(bt, t, member, reference); ok {
			return v, err
		}
	}

	if bt.Kind() == reflect.Pointer && !s.cfg.Catalog().HasConstructors(bt) {
		return s.buildPointer(bt, t, member, reference, args)
	}
	return s.construct(bt, t, member, reference, args)
}

func (s *Strategy) fromCreationRule(bt, requested reflect.Type, member typeinfo.Member, reference string) (reflect.Value, bool, error) {
	for _, r := range s.creation {
		if !r.IsMatch(bt, member) {
			continue
		}
		s.logger.ResolvedBy(bt, reference, r.String())
		s.collector.IncCreationRuleHit()

		out, err := r.Create(bt, member, s.chain)
		if err != nil {
			return reflect.Value{}, true, types.NewBuildError(types.ErrBuildFailed, bt, reference,
				fmt.Errorf("creation rule %s: %w", r, err))
		}
		v, err := s.runPostBuild(reflect.ValueOf(out), bt, requested, member)
		return v, true, err
	}
	return reflect.Value{}, false, nil
}

// reuseAncestor returns the nearest instance under construction whose type is
// the pointer type bt.
func (s *Strategy) reuseAncestor(bt reflect.Type, reference string) (reflect.Value, bool) {
	if !s.cfg.Settings().ReuseAncestors || bt.Kind() != reflect.Pointer {
		return reflect.Value{}, false
	}
	items := s.chain.Items()
	for i := len(items) - 1; i >= 0; i-- {
		if reflect.TypeOf(items[i].Value) == bt {
			s.logger.ReusingAncestor(bt, reference)
			s.collector.IncAncestorReused()
			return reflect.ValueOf(items[i].Value), true
		}
	}
	return reflect.Value{}, false
}

func (s *Strategy) fromCreator(bt, requested reflect.Type, member typeinfo.Member, reference string) (reflect.Value, bool, error) {
	for _, tc := range s.creators {
		if !tc.IsSupported(bt, reference, s.chain) {
			continue
		}
		s.logger.ResolvedBy(bt, reference, componentName(tc))
		s.collector.IncCreatorHit()

		out, err := tc.Create(s, bt, reference)
		if err != nil {
			return reflect.Value{}, true, err
		}
		v := reflect.ValueOf(out)
		if tc.AutoPopulate() {
			if v, err = s.populateCreated(v, bt, reference); err != nil {
				return reflect.Value{}, true, err
			}
		}
		v, err = s.runPostBuild(v, bt, requested, member)
		return v, true, err
	}
	return reflect.Value{}, false, nil
}

// populateCreated populates the struct properties of a creator's result.
func (s *Strategy) populateCreated(v reflect.Value, t reflect.Type, reference string) (reflect.Value, error) {
	if !v.IsValid() || typeinfo.StructType(v.Type()) == nil {
		return v, nil
	}
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return v, nil
	}
	inst := addressable(v)
	d, err := s.cfg.Catalog().Describe(inst.Type())
	if err != nil {
		return reflect.Value{}, err
	}
	if err := s.populateValue(inst, t, reference, d, nil, nil); err != nil {
		return reflect.Value{}, err
	}
	return inst, nil
}

func (s *Strategy) fromGenerator(bt, requested reflect.Type, member typeinfo.Member, reference string) (reflect.Value, bool, error) {
	for _, g := range s.generators {
		if !g.IsSupported(bt, reference, s.chain) {
			continue
		}
		name := componentName(g)
		s.logger.ResolvedBy(bt, reference, name)
		s.collector.IncValueGenerated(name)

		out, err := g.Generate(bt, reference, s.chain)
		if err != nil {
			return reflect.Value{}, true, err
		}
		v, err := s.runPostBuild(reflect.ValueOf(out), bt, requested, member)
		return v, true, err
	}
	return reflect.Value{}, false, nil
}

// buildPointer builds the element of bt and returns its address. A
// struct element keeps the identity it had on the build history.
func (s *Strategy) buildPointer(bt, requested reflect.Type, member typeinfo.Member, reference string, args []any) (reflect.Value, error) {
	elem := bt.Elem()
	ev, err := s.build(elem, member, reference, args)
	if err != nil {
		return reflect.Value{}, err
	}

	var p reflect.Value
	switch {
	case ev.IsValid() && ev.CanAddr() && ev.Type() == elem:
		p = ev.Addr()
	default:
		cv, err := typeinfo.ValueFor(ev, elem)
		if err != nil {
			return reflect.Value{}, err
		}
		p = reflect.New(elem)
		p.Elem().Set(cv)
	}
	return s.runPostBuild(p, bt, requested, member)
}

// construct resolves a constructor for bt, invokes it and populates the
// result.
func (s *Strategy) construct(bt, requested reflect.Type, member typeinfo.Member, reference string, args []any) (reflect.Value, error) {
	d, err := s.cfg.Catalog().Describe(bt)
	if err != nil {
		return reflect.Value{}, err
	}
	ctor, err := s.cfg.ConstructorResolver().Resolve(d, args)
	if err != nil {
		return reflect.Value{}, withReference(err, reference)
	}
	s.logger.ConstructorSelected(bt, ctor.String())

	var in []reflect.Value
	if len(args) > 0 {
		in, err = resolve.Bind(ctor, args)
	} else {
		in, err = s.buildParams(ctor)
	}
	if err != nil {
		return reflect.Value{}, err
	}

	out, err := ctor.Invoke(in)
	if err != nil {
		return reflect.Value{}, err
	}
	if !out.IsValid() || (typeinfo.CanBeNil(out.Type()) && out.IsNil()) {
		return reflect.Value{}, types.NewBuildError(types.ErrBuildFailed, bt, reference,
			fmt.Errorf("constructor %s returned nil", ctor))
	}
	s.collector.IncInstanceCreated()

	inst := out
	if out.Kind() == reflect.Interface {
		inst = out.Elem()
	}
	if typeinfo.StructType(inst.Type()) != nil {
		inst = addressable(inst)
		if inst.Type() != bt {
			if d, err = s.cfg.Catalog().Describe(inst.Type()); err != nil {
				return reflect.Value{}, err
			}
		}
		if err := s.populateValue(inst, bt, reference, d, ctor, in); err != nil {
			return reflect.Value{}, err
		}
	}
	return s.runPostBuild(inst, bt, requested, member)
}

// buildParams produces constructor arguments, highest execute-order
// priority first.
func (s *Strategy) buildParams(ctor *typeinfo.Constructor) ([]reflect.Value, error) {
	in := make([]reflect.Value, ctor.Arity())
	positions := make([]int, ctor.Arity())
	for i := range positions {
		positions[i] = i
	}
	slices.SortStableFunc(positions, func(a, b int) int {
		return cmp.Compare(s.priorityOf(&ctor.Params[b]), s.priorityOf(&ctor.Params[a]))
	})

	for _, i := range positions {
		p := &ctor.Params[i]
		if p.HasDefault && !s.hasCreationRule(p.Type, p) && !s.cfg.CanBuild(p.Type) {
			v, err := typeinfo.ValueFor(p.Default, p.Type)
			if err != nil {
				return nil, types.NewBuildError(types.ErrBuildFailed, ctor.Type, p.Name, err)
			}
			in[i] = v
			continue
		}
		v, err := s.build(p.Type, p, p.Name, nil)
		if err != nil {
			return nil, fmt.Errorf("parameter %s of %s: %w", p.Name, ctor.Type, err)
		}
		cv, err := typeinfo.ValueFor(v, p.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %s of %s: %w", p.Name, ctor.Type, err)
		}
		in[i] = cv
	}
	return in, nil
}

type pendingProperty struct {
	prop     *typeinfo.Property
	priority int
}

// populateValue fills the properties of inst, a pointer to struct or an
// addressable struct, while it sits on the build history.
func (s *Strategy) populateValue(inst reflect.Value, t reflect.Type, reference string, d *typeinfo.Descriptor, ctor *typeinfo.Constructor, args []reflect.Value) error {
	ptr := inst
	if inst.Kind() != reflect.Pointer {
		ptr = inst.Addr()
	}

	release, err := s.chain.Enter(ptr.Interface(), t, reference)
	if err != nil {
		return err
	}
	defer release()
	s.collector.ObserveDepth(s.chain.Len())

	resolver := s.cfg.PropertyResolver()
	var pending []pendingProperty
	for _, p := range resolver.Properties(d, nil) {
		if s.ignored(p) {
			s.logger.IgnoringProperty(p.Owner, p.Name)
			s.collector.IncPropertyIgnored()
			continue
		}
		if !resolver.ShouldPopulate(p, ptr, ctor, args) {
			continue
		}
		pending = append(pending, pendingProperty{prop: p, priority: s.priorityOf(p)})
	}
	slices.SortStableFunc(pending, func(a, b pendingProperty) int {
		return cmp.Compare(b.priority, a.priority)
	})

	for _, pp := range pending {
		p := pp.prop
		s.logger.PopulatingProperty(p.Owner, p.Name, pp.priority)

		v, err := s.build(p.Type, p, p.Name, nil)
		if err != nil {
			return fmt.Errorf("property %s.%s: %w", p.Owner.Name(), p.Name, err)
		}
		if err := p.Set(ptr, v); err != nil {
			return err
		}
		s.collector.IncPropertyPopulated()
	}
	return nil
}

func (s *Strategy) populate(rv reflect.Value) (reflect.Value, error) {
	t := rv.Type()

	for _, tc := range s.creators {
		if !tc.IsSupported(t, "", s.chain) && (t.Kind() != reflect.Pointer || !tc.IsSupported(t.Elem(), "", s.chain)) {
			continue
		}
		s.logger.ResolvedBy(t, "", componentName(tc))
		out, err := tc.Populate(s, rv.Interface())
		if err != nil {
			return reflect.Value{}, err
		}
		return s.runPostBuild(reflect.ValueOf(out), t, t, nil)
	}

	if typeinfo.StructType(t) == nil {
		return reflect.Value{}, types.NotSupportedError("populate", t, "")
	}
	if t.Kind() == reflect.Pointer && rv.IsNil() {
		return reflect.Value{}, types.ArgumentError("instance")
	}

	inst := rv
	if t.Kind() == reflect.Struct {
		inst = reflect.New(t).Elem()
		inst.Set(rv)
	}
	d, err := s.cfg.Catalog().Describe(t)
	if err != nil {
		return reflect.Value{}, err
	}
	if err := s.populateValue(inst, t, "", d, nil, nil); err != nil {
		return reflect.Value{}, err
	}
	return s.runPostBuild(inst, t, t, nil)
}

// runPostBuild applies the post-build actions matching the build type, or
// the requested type when the two differ.
func (s *Strategy) runPostBuild(v reflect.Value, bt, requested reflect.Type, member typeinfo.Member) (reflect.Value, error) {
	for _, a := range s.postBuild {
		if !a.IsMatch(bt, member, s.chain) && (requested == bt || !a.IsMatch(requested, member, s.chain)) {
			continue
		}
		out, err := a.Execute(iface(v), bt, member, s.chain)
		if err != nil {
			return reflect.Value{}, types.NewBuildError(types.ErrBuildFailed, bt, memberName(member),
				fmt.Errorf("post-build action %s: %w", componentName(a), err))
		}
		rv, err := typeinfo.ValueFor(out, requested)
		if err != nil {
			return reflect.Value{}, err
		}
		v = rv
		s.collector.IncPostBuildAction()
	}
	return v, nil
}

func (s *Strategy) ignored(p *typeinfo.Property) bool {
	for _, r := range s.ignores {
		if r.IsMatch(p) {
			return true
		}
	}
	return false
}

// priorityOf returns the priority of the first matching execute-order rule.
func (s *Strategy) priorityOf(m typeinfo.Member) int {
	for _, r := range s.order {
		if r.IsMatch(m) {
			return r.Priority()
		}
	}
	return rules.NeutralPriority
}

func (s *Strategy) hasCreationRule(t reflect.Type, m typeinfo.Member) bool {
	for _, r := range s.creation {
		if r.IsMatch(t, m) {
			return true
		}
	}
	return false
}

// addressable returns v itself when it is a pointer or addressable, and an
// addressable copy otherwise.
func addressable(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Pointer || v.CanAddr() {
		return v
	}
	cp := reflect.New(v.Type()).Elem()
	cp.Set(v)
	return cp
}

func iface(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

func memberName(m typeinfo.Member) string {
	if m == nil {
		return ""
	}
	return m.MemberName()
}

func withReference(err error, reference string) error {
	if reference == "" {
		return err
	}
	return fmt.Errorf("%s: %w", reference, err)
}

func componentName(c any) string {
	if n, ok := c.(interface{ Name() string }); ok {
		return n.Name()
	}
	if n, ok := c.(fmt.Stringer); ok {
		return n.String()
	}
	return fmt.Sprintf("%T", c)
}

// Create builds a T with s.
func Create[T any](s *Strategy, args ...any) (T, error) {
	var zero T
	if s == nil {
		return zero, types.ArgumentError("strategy")
	}
	v, err := s.Create(reflect.TypeFor[T](), args...)
	if err != nil || v == nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, types.NewBuildError(types.ErrBuildFailed, reflect.TypeFor[T](), "",
			fmt.Errorf("built %T", v))
	}
	return out, nil
}

// Populate populates instance with s. See Strategy.Populate.
func Populate[T any](s *Strategy, instance T) (T, error) {
	var zero T
	if s == nil {
		return zero, types.ArgumentError("strategy")
	}
	v, err := s.Populate(instance)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, types.NewBuildError(types.ErrBuildFailed, reflect.TypeFor[T](), "",
			fmt.Errorf("populated %T", v))
	}
	return out, nil
}

var _ creators.Executor = (*Strategy)(nil)
