package trm

import "fmt"

// Standard pack names and axis orders. Clients address a pack by name and
// always receive its operators in this stable order.
const (
	PackTetralemma = "tetralemma"
	PackTone       = "tone"
	PackOntology   = "ontology"
	PackPragmatics = "pragmatics"
	PackAudience   = "audience"
)

// StandardAxes returns the stable axis ordering for a pack family name.
func StandardAxes(packName string) ([]string, error) {
	switch packName {
	case PackTetralemma:
		return []string{"A", "¬A", "both", "neither"}, nil
	case PackTone:
		return []string{"analytical", "critical", "empathic", "playful", "neutral"}, nil
	case PackOntology:
		return []string{"corporeal", "subjective", "objective", "mixed_frame"}, nil
	case PackPragmatics:
		return []string{"clarity", "coherence", "evidence", "charity"}, nil
	case PackAudience:
		return []string{"expert", "general", "student", "policy", "editorial"}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPack, packName)
	}
}

func packDescription(packName string) string {
	switch packName {
	case PackTetralemma:
		return "catuskoti four-valued stance: affirmation, negation, both, neither"
	case PackTone:
		return "rhetorical register of the text"
	case PackOntology:
		return "frame of reference the text speaks from"
	case PackPragmatics:
		return "argumentative quality axes"
	case PackAudience:
		return "intended reader sophistication and domain"
	default:
		return ""
	}
}

// NewStandardRandomPacks builds every standard pack family as a random
// POVM pack sharing one rank and seed. Intended for process-startup
// initialization before any corpus-learned pack is available.
func NewStandardRandomPacks(rank int, seed int64) (map[string]*Pack, error) {
	names := []string{PackTetralemma, PackTone, PackOntology, PackPragmatics, PackAudience}
	packs := make(map[string]*Pack, len(names))
	for i, name := range names {
		axes, err := StandardAxes(name)
		if err != nil {
			return nil, err
		}
		pack, err := NewRandomPack(name, packDescription(name), axes, rank, seed+int64(i))
		if err != nil {
			return nil, err
		}
		packs[name] = pack
	}
	return packs, nil
}
