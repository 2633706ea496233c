package npk

import "github.com/meigma/npk/internal/magic"

// Known kinds.
const (
	KindNone    = magic.None
	KindUnknown = magic.Unknown
	KindAPK     = magic.APK
	KindNPK     = magic.NPK
	KindNXS     = magic.NXS
	KindCPYC    = magic.CPYC
	KindPYC     = magic.PYC
	KindPNG     = magic.PNG
	KindRIFF    = magic.RIFF
	KindBNK     = magic.BNK
)

// Kinds returns every kind Sniff can produce from a non-empty buffer, in
// signature priority order, followed by KindUnknown.
func Kinds() []Kind {
	return magic.Kinds()
}

// Sniff classifies data by its leading signature. It returns KindNone for an
// empty buffer and KindUnknown when nothing matches.
func Sniff(data []byte) Kind {
	return magic.Sniff(data)
}

// SniffFile classifies the first bytes of the file at path.
func SniffFile(path string) (Kind, error) {
	return magic.SniffFile(path)
}
