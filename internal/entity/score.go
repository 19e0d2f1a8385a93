package entity

// Score - counters kept per session; every round is counted at most once.
type Score struct {
	Human int `json:"human"`
	Bot   int `json:"bot"`
	Draws int `json:"draws"`
	// NextRound is the lowest game round not counted yet.
	NextRound int `json:"next_round"`
}

// Record adds the result of a finished game. It reports false for a game still in play and for
// a round that was already counted, so replaying a stored turn never counts twice.
func (that *Score) Record(game *Game) bool {
	if !game.IsFinished() || game.Round < that.NextRound {
		return false
	}

	switch game.Winner {
	case HumanMark.String():
		that.Human++
	case BotMark.String():
		that.Bot++
	case PlayerTie:
		that.Draws++
	default:
		return false
	}

	that.NextRound = game.Round + 1

	return true
}

func (that *Score) Games() int {
	return that.Human + that.Bot + that.Draws
}
