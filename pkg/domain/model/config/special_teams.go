package config

// SpecialTeams names the three teams whose membership transitions drive
// permission promotion and demotion: the leads team, the admins team, and
// the catch-all team containing every linked user. The names come from the
// application configuration and are injected into the permission policy.
type SpecialTeams struct {
	Leads  string
	Admins string
	All    string
}

// IsSpecial reports whether the team name is one of the special teams
func (x SpecialTeams) IsSpecial(name string) bool {
	return name == x.Leads || name == x.Admins || name == x.All
}
