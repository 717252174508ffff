package catalog

// ActivityAny is the wildcard entry for players without a target dungeon
const ActivityAny = "LFG - ANY"

// TierAny is the key level entry for groups open to any level
const TierAny = "LFG"

// Catalog holds the static activity and tier lists sessions choose from.
// It is injected as configuration; nothing in here is mutable at runtime.
type Catalog struct {
	// Activities is the dungeon list in display order
	Activities []string

	// Tiers is the key level list in ascending order
	Tiers []string
}

// Default returns the current season's dungeon pool and key levels
func Default() *Catalog {
	return &Catalog{
		Activities: []string{
			ActivityAny,
			"Darkflame Cleft",
			"Cinderbrew Meadery",
			"Theater of Pain",
			"The Rookery",
			"Op Floodgate",
			"Motherlode",
			"Mechagone Workshop",
			"Priory of the Sacred Flame",
		},
		Tiers: []string{
			TierAny,
			"2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12",
		},
	}
}

// HasActivity reports whether the dungeon is in the catalog
func (c *Catalog) HasActivity(name string) bool {
	for _, a := range c.Activities {
		if a == name {
			return true
		}
	}
	return false
}

// HasTier reports whether the key level is in the catalog
func (c *Catalog) HasTier(name string) bool {
	for _, t := range c.Tiers {
		if t == name {
			return true
		}
	}
	return false
}
