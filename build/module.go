package build

import (
	"github.com/pithecene-io/modelforge/creators"
	"github.com/pithecene-io/modelforge/generate"
	"github.com/pithecene-io/modelforge/resolve"
	"github.com/pithecene-io/modelforge/rules"
)

// Module bundles configuration applied to a Compiler.
type Module interface {
	Configure(c *Compiler)
}

// ModuleFunc adapts a function to Module.
type ModuleFunc func(c *Compiler)

func (f ModuleFunc) Configure(c *Compiler) { f(c) }

// Default execute-order priorities. Context-reading generators run after the
// values they read.
const (
	GenderOrder      = 9000
	FirstNameOrder   = 8000
	LastNameOrder    = 7900
	CompanyOrder     = 7600
	DomainOrder      = 7500
	EmailOrder       = 7000
	CountryOrder     = 6000
	StateOrder       = 5900
	CityOrder        = 5800
	PostcodeOrder    = 5700
	DateOfBirthOrder = 5000
	AgeOrder         = 4900
)

// DefaultModule installs the default resolvers, the built-in generators and
// creators, and the execute-order rules correlated generators rely on.
type DefaultModule struct{}

func (DefaultModule) Configure(c *Compiler) {
	c.SetConstructorResolver(&resolve.DefaultConstructorResolver{})
	c.SetPropertyResolver(&resolve.DefaultPropertyResolver{})

	for _, g := range generate.Defaults(c.Random()) {
		c.AddDefaultRule(g, nil)
	}
	for _, tc := range creators.Defaults() {
		c.AddDefaultRule(tc, nil)
	}

	for _, o := range []struct {
		pattern  string
		priority int
	}{
		{`^(gender|sex)$`, GenderOrder},
		{`^(first|given|fore)_?name$`, FirstNameOrder},
		{`^(last|family|sur)_?name$`, LastNameOrder},
		{`^(company|employer|organi[sz]ation)(_?name)?$`, CompanyOrder},
		{`domain(_?name)?$`, DomainOrder},
		{`^e?_?mail(_?address)?$`, EmailOrder},
		{`^country(_?name)?$`, CountryOrder},
		{`^(state|region|province|county)$`, StateOrder},
		{`^(city|town|home_?town)$`, CityOrder},
		{`^(post_?code|postal_?code|zip(_?code)?)$`, PostcodeOrder},
		{`^(dob|born|date_?of_?birth|birth_?date|birthday)$`, DateOfBirthOrder},
		{`^age$`, AgeOrder},
	} {
		c.AddDefaultRule(rules.NewExecuteOrderPattern(o.pattern, o.priority))
	}
}
