package nativeruntime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsOneTimeWitnessAcceptsSingleBoolFieldMatchingModuleName(t *testing.T) {
	require.True(t, IsOneTimeWitness([]bool{true}, "COIN", "coin"))
}

func TestIsOneTimeWitnessRejectsWrongStructName(t *testing.T) {
	require.False(t, IsOneTimeWitness([]bool{true}, "WRONG", "coin"))
}

func TestIsOneTimeWitnessRejectsMultipleFields(t *testing.T) {
	require.False(t, IsOneTimeWitness([]bool{true, true}, "COIN", "coin"))
}

func TestIsOneTimeWitnessRejectsZeroFields(t *testing.T) {
	require.False(t, IsOneTimeWitness(nil, "COIN", "coin"))
}

func TestIsOneTimeWitnessRejectsNonBoolSoleField(t *testing.T) {
	require.False(t, IsOneTimeWitness([]bool{false}, "COIN", "coin"))
}
