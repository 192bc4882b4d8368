package generate

import (
	"fmt"
	"net"
	"reflect"
	"regexp"

	"github.com/pithecene-io/modelforge/history"
)

var ipType = reflect.TypeFor[net.IP]()

func mustPattern(expr string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + expr)
}

// produceFunc returns the semantic value for reference. base is the
// requested type without its nullable pointer; the result is converted to it
// by the caller.
type produceFunc func(r *Random, base reflect.Type, reference string, chain *history.BuildHistory) any

// SemanticGenerator produces realistic values for references whose name
// matches a pattern, such as City or FirstName.
type SemanticGenerator struct {
	// Random overrides the shared source when set.
	Random *Random

	name     string
	pattern  *regexp.Regexp
	accepts  func(base reflect.Type, reference string) bool
	produce  produceFunc
	priority int
}

func newSemantic(name string, pattern *regexp.Regexp, accepts func(reflect.Type) bool, produce produceFunc) *SemanticGenerator {
	g := &SemanticGenerator{
		name:     name,
		pattern:  pattern,
		produce:  produce,
		priority: SemanticPriority,
	}
	g.accepts = func(base reflect.Type, reference string) bool {
		return accepts(base) && g.pattern.MatchString(reference)
	}
	return g
}

func isString(t reflect.Type) bool { return t.Kind() == reflect.String }

func isInteger(t reflect.Type) bool {
	return isNumeric(t) && t.Kind() != reflect.Float32 && t.Kind() != reflect.Float64
}

func isTime(t reflect.Type) bool { return t == timeType }

// Name identifies the generator in catalogs and logs.
func (g *SemanticGenerator) Name() string { return g.name }

func (g *SemanticGenerator) IsSupported(t reflect.Type, reference string, _ *history.BuildHistory) bool {
	return baseMatches(t, func(b reflect.Type) bool { return g.accepts(b, reference) })
}

func (g *SemanticGenerator) Generate(t reflect.Type, reference string, chain *history.BuildHistory) (any, error) {
	if err := check(g.name, g.IsSupported(t, reference, chain), t, reference); err != nil {
		return nil, err
	}
	r := orShared(g.Random)
	base, _ := nullable(t)
	return finish(r, t, g.produce(r, base, reference, chain)), nil
}

func (g *SemanticGenerator) Priority() int { return g.priority }

func (g *SemanticGenerator) String() string {
	return fmt.Sprintf("%s /%s/", g.name, g.pattern)
}

var (
	firstNamePattern   = mustPattern(`^(first|given|fore)_?name$`)
	lastNamePattern    = mustPattern(`^(last|family|sur)_?name$`)
	genderPattern      = mustPattern(`^(gender|sex)$`)
	domainPattern      = mustPattern(`domain(_?name)?$`)
	companyPattern     = mustPattern(`^(company|employer|organi[sz]ation)(_?name)?$`)
	countryPattern     = mustPattern(`^country(_?name)?$`)
	statePattern       = mustPattern(`^(state|region|province|county)$`)
	dateOfBirthPattern = mustPattern(`^(dob|born|date_?of_?birth|birth_?date|birthday)$`)
)

// NewGenderGenerator picks a gender and records it as the gender capability
// of the instance under construction.
func NewGenderGenerator() *SemanticGenerator {
	return newSemantic("gender", genderPattern, isString,
		func(r *Random, _ reflect.Type, _ string, chain *history.BuildHistory) any {
			g := Pick(r, genders)
			if item := current(chain); item != nil {
				item.SetCapability(CapabilityGender, g)
			}
			return g
		})
}

// NewFirstNameGenerator picks a first name matching the gender of the
// instance under construction when one is known.
func NewFirstNameGenerator() *SemanticGenerator {
	return newSemantic("first name", firstNamePattern, isString,
		func(r *Random, _ reflect.Type, _ string, chain *history.BuildHistory) any {
			return firstName(r, contextValue(chain, CapabilityGender, genderPattern))
		})
}

func firstName(r *Random, gender string) string {
	switch gender {
	case GenderFemale:
		return Pick(r, femaleNames)
	case GenderMale:
		return Pick(r, maleNames)
	default:
		if r.Bool() {
			return Pick(r, femaleNames)
		}
		return Pick(r, maleNames)
	}
}

// NewLastNameGenerator picks a family name.
func NewLastNameGenerator() *SemanticGenerator {
	return newSemantic("last name", lastNamePattern, isString,
		func(r *Random, _ reflect.Type, _ string, _ *history.BuildHistory) any {
			return Pick(r, lastNames)
		})
}

// NewFullNameGenerator joins the first and last name of the instance under
// construction, generating whichever is missing.
func NewFullNameGenerator() *SemanticGenerator {
	return newSemantic("full name", mustPattern(`^(full|display|contact)_?name$`), isString,
		func(r *Random, _ reflect.Type, _ string, chain *history.BuildHistory) any {
			first, ok := siblingString(chain, firstNamePattern)
			if !ok {
				first = firstName(r, contextValue(chain, CapabilityGender, genderPattern))
			}
			last, ok := siblingString(chain, lastNamePattern)
			if !ok {
				last = Pick(r, lastNames)
			}
			return first + " " + last
		})
}

// NewEmailGenerator derives an address from the first name, last name and
// domain of the instance under construction.
func NewEmailGenerator() *SemanticGenerator {
	return newSemantic("email", mustPattern(`^e?_?mail(_?address)?$`), isString,
		func(r *Random, _ reflect.Type, _ string, chain *history.BuildHistory) any {
			first, ok := siblingString(chain, firstNamePattern)
			if !ok {
				first = firstName(r, "")
			}
			last, ok := siblingString(chain, lastNamePattern)
			if !ok {
				last = Pick(r, lastNames)
			}
			domain, ok := siblingString(chain, domainPattern)
			if !ok {
				domain = randomDomain(r, chain)
			}
			return slug(first) + "." + slug(last) + "@" + domain
		})
}

// NewDomainGenerator produces a domain name, derived from the company of the
// instance under construction when one is set.
func NewDomainGenerator() *SemanticGenerator {
	return newSemantic("domain", domainPattern, isString,
		func(r *Random, _ reflect.Type, _ string, chain *history.BuildHistory) any {
			return randomDomain(r, chain)
		})
}

func randomDomain(r *Random, chain *history.BuildHistory) string {
	if company, ok := siblingString(chain, companyPattern); ok {
		if s := slug(company); s != "" {
			return s + "." + Pick(r, topLevelDomains)
		}
	}
	return Pick(r, domainWords) + "." + Pick(r, topLevelDomains)
}

// NewCompanyGenerator produces a company name.
func NewCompanyGenerator() *SemanticGenerator {
	return newSemantic("company", companyPattern, isString,
		func(r *Random, _ reflect.Type, _ string, _ *history.BuildHistory) any {
			return Pick(r, companies) + " " + Pick(r, companySuffixes)
		})
}

// NewCountryGenerator picks a country and records it as the country
// capability of the instance under construction.
func NewCountryGenerator() *SemanticGenerator {
	return newSemantic("country", countryPattern, isString,
		func(r *Random, _ reflect.Type, _ string, chain *history.BuildHistory) any {
			c := Pick(r, countries).Name
			if item := current(chain); item != nil {
				item.SetCapability(CapabilityCountry, c)
			}
			return c
		})
}

// NewStateGenerator picks a state or region, within the country of the
// instance under construction when one is known.
func NewStateGenerator() *SemanticGenerator {
	return newSemantic("state", statePattern, isString,
		func(r *Random, _ reflect.Type, _ string, chain *history.BuildHistory) any {
			c, ok := findCountry(contextValue(chain, CapabilityCountry, countryPattern))
			if !ok {
				c = Pick(r, countries)
			}
			s := Pick(r, c.Regions).Name
			if item := current(chain); item != nil {
				item.SetCapability(CapabilityState, s)
			}
			return s
		})
}

// NewCityGenerator picks a city, within the state or country of the instance
// under construction when one is known.
func NewCityGenerator() *SemanticGenerator {
	return newSemantic("city", mustPattern(`^(city|town|home_?town)$`), isString,
		func(r *Random, _ reflect.Type, _ string, chain *history.BuildHistory) any {
			if reg, ok := findRegion(contextValue(chain, CapabilityState, statePattern)); ok {
				return Pick(r, reg.Cities)
			}
			c, ok := findCountry(contextValue(chain, CapabilityCountry, countryPattern))
			if !ok {
				c = Pick(r, countries)
			}
			return Pick(r, Pick(r, c.Regions).Cities)
		})
}

// NewPostcodeGenerator produces a postcode in the layout of the country of
// the instance under construction.
func NewPostcodeGenerator() *SemanticGenerator {
	return newSemantic("postcode", mustPattern(`^(post_?code|postal_?code|zip(_?code)?)$`), isString,
		func(r *Random, _ reflect.Type, _ string, chain *history.BuildHistory) any {
			c, ok := findCountry(contextValue(chain, CapabilityCountry, countryPattern))
			if !ok {
				c = Pick(r, countries)
			}
			out := []byte(c.Postcode)
			for i, ch := range out {
				switch ch {
				case '9':
					out[i] = byte('0' + r.IntN(10))
				case 'A':
					out[i] = byte('A' + r.IntN(26))
				}
			}
			return string(out)
		})
}

// NewStreetGenerator produces a street address line.
func NewStreetGenerator() *SemanticGenerator {
	return newSemantic("street", mustPattern(`^(street|street_?address|address_?line_?1?)$`), isString,
		func(r *Random, _ reflect.Type, _ string, _ *history.BuildHistory) any {
			return fmt.Sprintf("%d %s", r.Between(1, 250), Pick(r, streets))
		})
}

// NewPhoneGenerator produces a phone number.
func NewPhoneGenerator() *SemanticGenerator {
	return newSemantic("phone", mustPattern(`^(phone|mobile|telephone)(_?number)?$`), isString,
		func(r *Random, _ reflect.Type, _ string, _ *history.BuildHistory) any {
			return fmt.Sprintf("+1 555 %03d %04d", r.IntN(1000), r.IntN(10000))
		})
}

// NewIPAddressGenerator produces IPv4 addresses as net.IP values for any
// reference, and as strings for references named like an address.
func NewIPAddressGenerator() *SemanticGenerator {
	g := newSemantic("ip address", mustPattern(`^ip(_?address)?$|^ipv4(_?address)?$`), isString,
		func(r *Random, base reflect.Type, _ string, _ *history.BuildHistory) any {
			ip := net.IPv4(byte(r.Between(1, 223)), byte(r.IntN(256)), byte(r.IntN(256)), byte(r.Between(1, 254)))
			if base == ipType {
				return ip
			}
			return ip.String()
		})
	byName := g.accepts
	g.accepts = func(base reflect.Type, reference string) bool {
		return base == ipType || byName(base, reference)
	}
	return g
}

// NewDateOfBirthGenerator produces a birth date between 18 and 80 years ago.
func NewDateOfBirthGenerator() *SemanticGenerator {
	return newSemantic("date of birth", dateOfBirthPattern, isTime,
		func(r *Random, _ reflect.Type, _ string, _ *history.BuildHistory) any {
			today := today()
			days := r.Between(18*365, 80*365)
			return today.AddDate(0, 0, -days)
		})
}

// NewAgeGenerator produces an age in years, derived from the date of birth
// of the instance under construction when one is set.
func NewAgeGenerator() *SemanticGenerator {
	return newSemantic("age", mustPattern(`^age$`), isInteger,
		func(r *Random, _ reflect.Type, _ string, chain *history.BuildHistory) any {
			if dob, ok := siblingTime(chain, dateOfBirthPattern); ok {
				return int64(yearsBetween(dob, today()))
			}
			return int64(r.Between(18, 80))
		})
}

// NewTimeZoneGenerator produces an IANA time zone name.
func NewTimeZoneGenerator() *SemanticGenerator {
	return newSemantic("time zone", mustPattern(`^(time_?zone|tz)$`), isString,
		func(r *Random, _ reflect.Type, _ string, _ *history.BuildHistory) any {
			return Pick(r, timeZones)
		})
}

// Semantic returns one of each semantic generator drawing from r, or from
// the shared source when r is nil.
func Semantic(r *Random) []ValueGenerator {
	gens := []*SemanticGenerator{
		NewGenderGenerator(),
		NewFirstNameGenerator(),
		NewLastNameGenerator(),
		NewFullNameGenerator(),
		NewEmailGenerator(),
		NewDomainGenerator(),
		NewCompanyGenerator(),
		NewCountryGenerator(),
		NewStateGenerator(),
		NewCityGenerator(),
		NewPostcodeGenerator(),
		NewStreetGenerator(),
		NewPhoneGenerator(),
		NewIPAddressGenerator(),
		NewDateOfBirthGenerator(),
		NewAgeGenerator(),
		NewTimeZoneGenerator(),
	}
	out := make([]ValueGenerator, len(gens))
	for i, g := range gens {
		g.Random = r
		out[i] = g
	}
	return out
}

// Defaults returns the full built-in catalog drawing from r, or from the
// shared source when r is nil.
func Defaults(r *Random) []ValueGenerator {
	return append([]ValueGenerator{
		&UUIDGenerator{Random: r},
		&BooleanGenerator{Random: r},
		&NumericGenerator{Random: r},
		&TimeGenerator{Random: r},
		&StringGenerator{Random: r},
	}, Semantic(r)...)
}
