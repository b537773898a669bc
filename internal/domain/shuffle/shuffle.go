// Package shuffle randomizes the option order of multiple-choice prompts
// while keeping the correct-answer set consistent. Prompts are stored in the
// order the generator produced them and shuffled every time they are served,
// so a user never learns answer positions by repetition.
package shuffle

import (
	"math/rand/v2"
)

// Options returns a random permutation of the given option strings together
// with the correct-index set remapped into the new ordering. The strings at
// the returned correct indices are exactly the strings at the original
// correct indices.
//
// Remapping is done through the permutation itself, by original position and
// never by string content, so duplicate option strings keep the correct
// count of selections.
//
// The inputs are not mutated. rng may be nil, in which case the shared
// global source is used; tests inject a seeded *rand.Rand for determinism.
func Options(rng *rand.Rand, options []string, correct map[int]struct{}) ([]string, map[int]struct{}) {
	n := len(options)
	if n == 0 {
		return []string{}, map[int]struct{}{}
	}

	var perm []int
	if rng != nil {
		perm = rng.Perm(n)
	} else {
		perm = rand.Perm(n)
	}

	shuffled, remapped := Apply(perm, options, correct)
	return shuffled, remapped
}

// Apply reorders options by an explicit permutation, where perm[newPos]
// gives the original position, and remaps the correct-index set the same
// way. Callers that need to translate between served and stored option
// positions later (grading an answer against a prompt served shuffled)
// generate the permutation themselves and keep it.
//
// The inputs are not mutated.
func Apply(perm []int, options []string, correct map[int]struct{}) ([]string, map[int]struct{}) {
	shuffled := make([]string, len(options))
	remapped := make(map[int]struct{}, len(correct))

	for newPos, oldPos := range perm {
		shuffled[newPos] = options[oldPos]
		if _, ok := correct[oldPos]; ok {
			remapped[newPos] = struct{}{}
		}
	}

	return shuffled, remapped
}

// IndexSet converts a slice of indices into the set form Options consumes.
// Duplicate indices collapse into a single set entry.
func IndexSet(indices []int) map[int]struct{} {
	set := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		set[idx] = struct{}{}
	}
	return set
}

// Indices converts a correct-index set back into a sorted-free slice form
// for storage or transport. Order is unspecified.
func Indices(set map[int]struct{}) []int {
	indices := make([]int, 0, len(set))
	for idx := range set {
		indices = append(indices, idx)
	}
	return indices
}
