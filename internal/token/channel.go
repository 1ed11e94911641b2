package token

// Channel is a two-character message channel code, compared
// case-insensitively (BMS channel codes are conventionally upper-cased).
type Channel string

const (
	ChBGM            Channel = "01"
	ChSectionLen     Channel = "02"
	ChBPM            Channel = "03"
	ChBGABase        Channel = "04"
	ChVideoSeek      Channel = "05"
	ChBGAPoor        Channel = "06"
	ChBGAOverlay     Channel = "07"
	ChBPMByID        Channel = "08"
	ChStopByID       Channel = "09"
	ChBGAOverlay2    Channel = "0A"
	ChOpacityBase    Channel = "0B"
	ChOpacityOverlay Channel = "0C"
	ChOpacityOver2   Channel = "0D"
	ChOpacityPoor    Channel = "0E"
	ChBGMVolume      Channel = "97"
	ChKeyVolume      Channel = "98"
	ChTextByID       Channel = "99"
	ChJudgeByID      Channel = "A0"
	ChARGBBase       Channel = "A1"
	ChARGBOverlay    Channel = "A2"
	ChARGBOverlay2   Channel = "A3"
	ChARGBPoor       Channel = "A4"
	ChBGAKeybound    Channel = "A5"
	ChOptionByID     Channel = "A6"
	ChScrollByID     Channel = "SC"
	ChSpeedByID      Channel = "SP"
)

// IsNoteChannel reports whether ch is in the 1P/2P playable-note ranges
// 11..1Z / 21..2Z (base-62 second character), which are resolved through a
// key-layout dictionary rather than handled generically.
func IsNoteChannel(ch string) bool {
	if len(ch) != 2 {
		return false
	}
	return (ch[0] == '1' || ch[0] == '2') && ch[1] != '0'
}

// IsIDValued reports whether ch is decoded as base-62 object id pairs;
// everything else that is not a note channel is a numeric (hex-byte) channel.
func IsIDValued(ch string) bool {
	switch Channel(ch) {
	case ChBGABase, ChBGAPoor, ChBGAOverlay, ChBPMByID, ChStopByID, ChBGAOverlay2,
		ChTextByID, ChJudgeByID, ChARGBBase, ChARGBOverlay, ChARGBOverlay2, ChARGBPoor,
		ChBGAKeybound, ChOptionByID, ChScrollByID, ChSpeedByID, ChBGM:
		return true
	}
	return IsNoteChannel(ch)
}
