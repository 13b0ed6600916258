package position

// Default returns the position groups used by the scouting newsletter.
// Short codes come from the tracking export; descriptive labels from the
// event-data export.
func Default() *GroupMap {
	return NewGroupMap([]Group{
		{Tag: "IV", Labels: []string{"LCB", "RCB", "CB", "Centre Back", "Center Back", "Left Centre Back", "Right Centre Back"}},
		{Tag: "AV", Labels: []string{"LB", "RB", "Left Back", "Right Back"}},
		{Tag: "FLV", Labels: []string{"LWB", "RWB", "Left Wing Back", "Right Wing Back"}},
		{Tag: "AVFLV", Labels: []string{"LB", "RB", "LWB", "RWB", "Left Back", "Right Back", "Left Wing Back", "Right Wing Back"}},
		{Tag: "ZDM", Labels: []string{"DM", "LDM", "RDM", "Defensive Midfielder"}},
		{Tag: "ZDMZM", Labels: []string{"DM", "LDM", "RDM", "CM", "RM", "LM", "Defensive Midfielder", "Central Midfielder", "Left Midfielder", "Right Midfielder"}},
		{Tag: "ZM", Labels: []string{"CM", "RM", "LM", "Central Midfielder", "Left Midfielder", "Right Midfielder"}},
		{Tag: "ZOM", Labels: []string{"CM", "AM", "Central Midfielder", "Attacking Midfielder"}},
		{Tag: "ZMZOM", Labels: []string{"CM", "RM", "LM", "AM", "Central Midfielder", "Left Midfielder", "Right Midfielder", "Attacking Midfielder"}},
		{Tag: "FS", Labels: []string{"LW", "RW", "Left Winger", "Right Winger"}},
		{Tag: "ST", Labels: []string{"CF", "LF", "RF", "Centre Forward", "Center Forward", "Left Forward", "Right Forward"}},
	})
}
