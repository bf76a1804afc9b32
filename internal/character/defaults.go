package character

// defaultCharacters is the built-in alias table for The Office (US). It
// covers the main cast with the spellings and typos seen in scraped
// transcripts, so the tool works without a config file. Extend it offline
// with a YAML table as new variants are discovered.
var defaultCharacters = map[string][]string{
	"Michael Scott": {
		"Michael", "Micheal", "Michel", "Michael Gary Scott", "Michael G. Scott",
	},
	"Dwight Schrute": {
		"Dwight", "Diwght", "Dwigh", "Dwight K. Schrute", "Dwight Kurt Schrute",
	},
	"Jim Halpert": {
		"Jim", "Jim Halpret", "James Halpert",
	},
	"Pam Beesly": {
		"Pam", "Pam Halpert", "Pam Beesley", "Pamela Beesly",
	},
	"Andy Bernard": {
		"Andy", "Andrew Bernard", "Nard Dog",
	},
	"Angela Martin": {
		"Angela",
	},
	"Oscar Martinez": {
		"Oscar",
	},
	"Kevin Malone": {
		"Kevin",
	},
	"Stanley Hudson": {
		"Stanley",
	},
	"Phyllis Vance": {
		"Phyllis", "Phyllis Lapin", "Phyllis Lapin-Vance",
	},
	"Ryan Howard": {
		"Ryan",
	},
	"Kelly Kapoor": {
		"Kelly",
	},
	"Toby Flenderson": {
		"Toby",
	},
	"Creed Bratton": {
		"Creed",
	},
	"Meredith Palmer": {
		"Meredith",
	},
	"Erin Hannon": {
		"Erin",
	},
	"Darryl Philbin": {
		"Darryl", "Daryl",
	},
	"Holly Flax": {
		"Holly",
	},
	"Jan Levinson": {
		"Jan", "Jan Levinson-Gould",
	},
	"Robert California": {
		"Robert",
	},
	"Nellie Bertram": {
		"Nellie",
	},
	"Gabe Lewis": {
		"Gabe",
	},
	"David Wallace": {
		"David", "Wallace",
	},
}

// DefaultTable returns the built-in alias table.
func DefaultTable() *Table {
	t, err := NewTable(defaultCharacters)
	if err != nil {
		// The built-in table is validated by tests; a conflict here is a
		// programming error.
		panic(err)
	}
	return t
}
