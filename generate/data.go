package generate

// Lookup tables for the semantic generators.

const (
	GenderFemale = "Female"
	GenderMale   = "Male"
)

var genders = []string{GenderFemale, GenderMale}

var femaleNames = []string{
	"Amelia", "Ava", "Chloe", "Clara", "Elena", "Emma", "Freya", "Grace",
	"Hannah", "Ingrid", "Isla", "Julia", "Leah", "Lucia", "Maya", "Mia",
	"Nora", "Olivia", "Priya", "Rosa", "Sofia", "Yuki", "Zoe", "Astrid",
}

var maleNames = []string{
	"Aarav", "Adam", "Ben", "Carlos", "Daniel", "David", "Erik", "Felix",
	"George", "Hugo", "Ivan", "Jack", "Kenji", "Leo", "Liam", "Lucas",
	"Mateo", "Noah", "Oliver", "Omar", "Paul", "Samuel", "Theo", "Viktor",
}

var lastNames = []string{
	"Anderson", "Bauer", "Brown", "Costa", "Dubois", "Garcia", "Hansen",
	"Ito", "Jensen", "Kim", "Kowalski", "Lopez", "Martin", "Meyer", "Moreau",
	"Nguyen", "Novak", "Olsen", "Patel", "Rossi", "Silva", "Smith", "Tanaka",
	"Taylor", "Wilson", "Young",
}

var companies = []string{
	"Acme", "Bluefield", "Brightline", "Cobalt Works", "Copperleaf",
	"Driftwood Labs", "Evergreen Systems", "Granite & Co", "Harbor Logistics",
	"Ironbark", "Juniper Foods", "Keystone Health", "Lumen Energy",
	"Meridian Analytics", "Northwind", "Oakridge Partners", "Pinecrest",
	"Quartz Point", "Redwood Digital", "Silverline", "Tidewater", "Umbra",
}

var companySuffixes = []string{"Inc", "LLC", "Ltd", "GmbH", "AB", "Group"}

var topLevelDomains = []string{"com", "net", "org", "io", "dev", "co"}

var domainWords = []string{
	"acme", "bluefield", "cobalt", "example", "harbor", "juniper", "lumen",
	"meridian", "northwind", "pinecrest", "redwood", "tidewater",
}

var streets = []string{
	"Main Street", "High Street", "Station Road", "Park Avenue", "Church Lane",
	"Mill Road", "Elm Street", "King Street", "Harbour Way", "Lake Drive",
}

var timeZones = []string{
	"UTC", "Europe/London", "Europe/Paris", "Europe/Berlin", "Europe/Oslo",
	"America/New_York", "America/Chicago", "America/Denver",
	"America/Los_Angeles", "America/Sao_Paulo", "Asia/Tokyo", "Asia/Kolkata",
	"Asia/Singapore", "Australia/Sydney", "Africa/Johannesburg",
}

// region is a state or region and some of its cities.
type region struct {
	Name   string
	Cities []string
}

// country groups regions with the postcode layout used there. In the layout
// '9' stands for a digit and 'A' for an upper case letter.
type country struct {
	Name     string
	Postcode string
	Regions  []region
}

var countries = []country{
	{
		Name:     "United States",
		Postcode: "99999",
		Regions: []region{
			{"California", []string{"Los Angeles", "San Diego", "San Francisco", "Sacramento"}},
			{"New York", []string{"New York", "Buffalo", "Albany", "Rochester"}},
			{"Texas", []string{"Houston", "Austin", "Dallas", "San Antonio"}},
			{"Washington", []string{"Seattle", "Spokane", "Tacoma"}},
		},
	},
	{
		Name:     "Canada",
		Postcode: "A9A 9A9",
		Regions: []region{
			{"Ontario", []string{"Toronto", "Ottawa", "Hamilton"}},
			{"Quebec", []string{"Montreal", "Quebec City", "Laval"}},
			{"British Columbia", []string{"Vancouver", "Victoria", "Surrey"}},
		},
	},
	{
		Name:     "Germany",
		Postcode: "99999",
		Regions: []region{
			{"Bavaria", []string{"Munich", "Nuremberg", "Augsburg"}},
			{"Berlin", []string{"Berlin"}},
			{"Hesse", []string{"Frankfurt", "Wiesbaden", "Kassel"}},
		},
	},
	{
		Name:     "Norway",
		Postcode: "9999",
		Regions: []region{
			{"Oslo", []string{"Oslo"}},
			{"Vestland", []string{"Bergen", "Voss"}},
			{"Trøndelag", []string{"Trondheim", "Steinkjer"}},
		},
	},
	{
		Name:     "Australia",
		Postcode: "9999",
		Regions: []region{
			{"New South Wales", []string{"Sydney", "Newcastle", "Wollongong"}},
			{"Victoria", []string{"Melbourne", "Geelong", "Ballarat"}},
			{"Queensland", []string{"Brisbane", "Gold Coast", "Cairns"}},
		},
	},
	{
		Name:     "Japan",
		Postcode: "999-9999",
		Regions: []region{
			{"Tokyo", []string{"Tokyo", "Hachioji"}},
			{"Osaka", []string{"Osaka", "Sakai"}},
			{"Hokkaido", []string{"Sapporo", "Hakodate"}},
		},
	},
}

func findCountry(name string) (country, bool) {
	for _, c := range countries {
		if c.Name == name {
			return c, true
		}
	}
	return country{}, false
}

func findRegion(name string) (region, bool) {
	for _, c := range countries {
		for _, r := range c.Regions {
			if r.Name == name {
				return r, true
			}
		}
	}
	return region{}, false
}
