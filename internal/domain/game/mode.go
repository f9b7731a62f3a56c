package game

type Mode string

const (
	ModeStandard Mode = "standard"
	ModeCapture  Mode = "capture"
	ModeSpeed    Mode = "speed"
	ModeBase     Mode = "base"
	ModeHidden   Mode = "hidden"
	ModeMissile  Mode = "missile"
	ModeMix      Mode = "mix"

	ModeOmok   Mode = "omok"
	ModeTtamok Mode = "ttamok"

	ModeDice    Mode = "dice"
	ModeThief   Mode = "thief"
	ModeAlkkagi Mode = "alkkagi"
	ModeCurling Mode = "curling"
)

func (m Mode) IsGoFamily() bool {
	switch m {
	case ModeStandard, ModeCapture, ModeSpeed, ModeBase, ModeHidden, ModeMissile, ModeMix:
		return true
	}
	return false
}

func (m Mode) IsLineMode() bool {
	return m == ModeOmok || m == ModeTtamok
}

func (m Mode) IsValid() bool {
	if m.IsGoFamily() || m.IsLineMode() {
		return true
	}
	switch m {
	case ModeDice, ModeThief, ModeAlkkagi, ModeCurling:
		return true
	}
	return false
}

// Mixable reports whether m can be enabled inside a mix match.
func (m Mode) Mixable() bool {
	switch m {
	case ModeCapture, ModeSpeed, ModeBase, ModeHidden, ModeMissile:
		return true
	}
	return false
}

type Status string

const (
	StatusPending Status = "pending"

	StatusNigiri   Status = "nigiri"
	StatusRPS      Status = "rps"
	StatusTurnRoll Status = "turn_roll"

	StatusBasePlacement      Status = "base_placement"
	StatusKomiBidding        Status = "komi_bidding"
	StatusHiddenPrePlacement Status = "hidden_preplacement"

	StatusPlaying          Status = "playing"
	StatusHiddenPlacing    Status = "hidden_placing"
	StatusScanning         Status = "scanning"
	StatusMissileSelecting Status = "missile_selecting"

	StatusDiceRolling  Status = "dice_rolling"
	StatusDicePlacing  Status = "dice_placing"
	StatusThiefRolling Status = "thief_rolling"
	StatusThiefPlacing Status = "thief_placing"

	StatusAlkkagiPlacement Status = "alkkagi_placement"
	StatusAlkkagiPlaying   Status = "alkkagi_playing"
	StatusCurlingPlaying   Status = "curling_playing"

	StatusScoring        Status = "scoring"
	StatusEnded          Status = "ended"
	StatusNoContest      Status = "no_contest"
	StatusRematchPending Status = "rematch_pending"
)

// IsTerminal reports whether no board mutation may happen anymore.
func (s Status) IsTerminal() bool {
	return s == StatusEnded || s == StatusNoContest || s == StatusRematchPending
}

// IsItemWindow reports the item-use sub-phases entered from playing.
func (s Status) IsItemWindow() bool {
	return s == StatusHiddenPlacing || s == StatusScanning || s == StatusMissileSelecting
}

// IsSimultaneous reports phases where both sides act independently.
func (s Status) IsSimultaneous() bool {
	switch s {
	case StatusRPS, StatusTurnRoll, StatusBasePlacement, StatusKomiBidding,
		StatusHiddenPrePlacement, StatusAlkkagiPlacement:
		return true
	}
	return false
}

type WinReason string

const (
	ReasonScore        WinReason = "score"
	ReasonResign       WinReason = "resign"
	ReasonTimeout      WinReason = "timeout"
	ReasonCaptureLimit WinReason = "capture_limit"
	ReasonLineFormed   WinReason = "line_formed"
	ReasonDisconnect   WinReason = "disconnect"
	ReasonNoContest    WinReason = "no_contest"
)
