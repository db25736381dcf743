package phh

// HandHistory is one hand in PHH (Poker Hand History) form. Field order
// follows the PHH layout: game rules, table, the action record, then
// when and where it was played.
type HandHistory struct {
	// Rules. Hands have no antes or blinds, so those arrays are all zero.
	Variant           string `toml:"variant"`
	Antes             []int  `toml:"antes"`
	BlindsOrStraddles []int  `toml:"blinds_or_straddles"`
	MinBet            int    `toml:"min_bet"`

	// Seats, in the order the engine seated players
	Table           string   `toml:"table,omitempty"`
	SeatCount       int      `toml:"seat_count,omitempty"`
	Seats           []int    `toml:"seats,omitempty"`
	Players         []string `toml:"players,omitempty"`
	StartingStacks  []int    `toml:"starting_stacks"`
	FinishingStacks []int    `toml:"finishing_stacks,omitempty"`
	Winnings        []int    `toml:"winnings,omitempty"`

	Actions []string `toml:"actions"`

	HandID   string `toml:"hand"`
	Time     string `toml:"time,omitempty"`
	TimeZone string `toml:"time_zone,omitempty"`
	Day      int    `toml:"day,omitempty"`
	Month    int    `toml:"month,omitempty"`
	Year     int    `toml:"year,omitempty"`

	// Metadata carries counters PHH has no field for, e.g. "unawarded_chips"
	Metadata map[string]int `toml:"metadata,omitempty"`
}
