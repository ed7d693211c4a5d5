package lexicon

// e-MFD columns: five foundation probabilities followed by five sentiments.
const (
	CareP = iota
	FairnessP
	LoyaltyP
	AuthorityP
	SanctityP
	CareSent
	FairnessSent
	LoyaltySent
	AuthoritySent
	SanctitySent
	EMFDSize
)

const emfdFoundations = 5

var EMFDNames = [EMFDSize]string{
	"care_p", "fairness_p", "loyalty_p", "authority_p", "sanctity_p",
	"care_sent", "fairness_sent", "loyalty_sent", "authority_sent", "sanctity_sent",
}

// EMFDScores is one e-MFD record or an elementwise aggregate of records.
type EMFDScores [EMFDSize]float64

func (s EMFDScores) Probabilities() []float64 {
	return s[:emfdFoundations]
}

func (s EMFDScores) Sentiments() []float64 {
	return s[emfdFoundations:]
}

func (s *EMFDScores) Add(o EMFDScores) {
	for i := range s {
		s[i] += o[i]
	}
}

func (s *EMFDScores) Div(d float64) {
	for i := range s {
		s[i] /= d
	}
}

func (s EMFDScores) Map() map[string]float64 {
	return toMap(EMFDNames[:], s[:])
}

// MFD categories (original Moral Foundations Dictionary).
const (
	MFDCareVirtue = iota
	MFDFairnessVirtue
	MFDLoyaltyVirtue
	MFDAuthorityVirtue
	MFDSanctityVirtue
	MFDCareVice
	MFDFairnessVice
	MFDLoyaltyVice
	MFDAuthorityVice
	MFDSanctityVice
	MFDMoral
	MFDSize
)

var MFDNames = [MFDSize]string{
	"care.virtue", "fairness.virtue", "loyalty.virtue", "authority.virtue", "sanctity.virtue",
	"care.vice", "fairness.vice", "loyalty.vice", "authority.vice", "sanctity.vice",
	"moral",
}

// mfdAliases maps the LIWC category names used by the published .dic file.
var mfdAliases = map[string]int{
	"harmvirtue":      MFDCareVirtue,
	"harmvice":        MFDCareVice,
	"fairnessvirtue":  MFDFairnessVirtue,
	"fairnessvice":    MFDFairnessVice,
	"ingroupvirtue":   MFDLoyaltyVirtue,
	"ingroupvice":     MFDLoyaltyVice,
	"authorityvirtue": MFDAuthorityVirtue,
	"authorityvice":   MFDAuthorityVice,
	"purityvirtue":    MFDSanctityVirtue,
	"purityvice":      MFDSanctityVice,
	"moralitygeneral": MFDMoral,
}

type MFDScores [MFDSize]float64

func (s MFDScores) Map() map[string]float64 {
	return toMap(MFDNames[:], s[:])
}

// MFD2 categories.
const (
	MFD2CareVirtue = iota
	MFD2CareVice
	MFD2FairnessVirtue
	MFD2FairnessVice
	MFD2LoyaltyVirtue
	MFD2LoyaltyVice
	MFD2AuthorityVirtue
	MFD2AuthorityVice
	MFD2SanctityVirtue
	MFD2SanctityVice
	MFD2Size
)

var MFD2Names = [MFD2Size]string{
	"care.virtue", "care.vice", "fairness.virtue", "fairness.vice", "loyalty.virtue",
	"loyalty.vice", "authority.virtue", "authority.vice", "sanctity.virtue", "sanctity.vice",
}

type MFD2Scores [MFD2Size]float64

func (s MFD2Scores) Map() map[string]float64 {
	return toMap(MFD2Names[:], s[:])
}

func toMap(names []string, values []float64) map[string]float64 {
	m := make(map[string]float64, len(names))
	for i, name := range names {
		m[name] = values[i]
	}
	return m
}

func indexOf(names []string, name string) (int, bool) {
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return -1, false
}
