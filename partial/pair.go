package partial

import (
	"fmt"

	"github.com/UT-GlobalSeismology/Kibrary-sub006/spc"
)

// maxIgnoredRadii is how many radius disagreements IsGoodPairPermissive
// tolerates.
const maxIgnoredRadii = 2

// IsGoodPair checks that a forward and a backward file describe the same
// perturbation points on the same frequency grid.
func IsGoodPair(fwd, bwd spc.File) error {
	if err := sameGrid(fwd, bwd); err != nil {
		return err
	}
	rf, rb := fwd.BodyR(), bwd.BodyR()
	for i := range rf {
		if !spc.SameRadius(rf[i], rb[i]) {
			return spc.Mismatch(fmt.Sprintf("bodyR[%d]", i), fwd.ID(), bwd.ID(), rf[i], rb[i])
		}
	}
	return nil
}

// IsGoodPairPermissive is IsGoodPair for catalog construction: up to two
// radii may disagree, and their indices are returned so the caller can skip
// them. The grid and position checks are as strict as in IsGoodPair.
func IsGoodPairPermissive(fwd, bwd spc.File) (ignored []int, err error) {
	if err := sameGrid(fwd, bwd); err != nil {
		return nil, err
	}
	rf, rb := fwd.BodyR(), bwd.BodyR()
	var first error
	for i := range rf {
		if spc.SameRadius(rf[i], rb[i]) {
			continue
		}
		if first == nil {
			first = spc.Mismatch(fmt.Sprintf("bodyR[%d]", i), fwd.ID(), bwd.ID(), rf[i], rb[i])
		}
		ignored = append(ignored, i)
	}
	if len(ignored) > maxIgnoredRadii {
		return nil, fmt.Errorf("%d radii differ: %w", len(ignored), first)
	}
	return ignored, nil
}

func sameGrid(fwd, bwd spc.File) error {
	switch {
	case fwd.TLen() != bwd.TLen():
		return spc.Mismatch("tlen", fwd.ID(), bwd.ID(), fwd.TLen(), bwd.TLen())
	case fwd.NP() != bwd.NP():
		return spc.Mismatch("np", fwd.ID(), bwd.ID(), fwd.NP(), bwd.NP())
	case fwd.OmegaI() != bwd.OmegaI():
		return spc.Mismatch("omegai", fwd.ID(), bwd.ID(), fwd.OmegaI(), bwd.OmegaI())
	case fwd.NBody() != bwd.NBody():
		return spc.Mismatch("nbody", fwd.ID(), bwd.ID(), fwd.NBody(), bwd.NBody())
	case len(fwd.BodyR()) != len(bwd.BodyR()):
		return spc.Mismatch("radii", fwd.ID(), bwd.ID(), len(fwd.BodyR()), len(bwd.BodyR()))
	case !spc.SamePosition(fwd.Observer(), bwd.Observer()):
		return spc.Mismatch("position", fwd.ID(), bwd.ID(), fwd.Observer(), bwd.Observer())
	}
	return nil
}
