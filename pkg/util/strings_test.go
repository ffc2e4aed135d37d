package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stationly/stationly/pkg/util"
)

func TestRemoveDuplicateStrings(t *testing.T) {
	result := util.RemoveDuplicateStrings([]string{"brixton", "victoria", "brixton", "", "walthamstow"}, nil)

	assert.Equal(t, []string{"brixton", "victoria", "walthamstow"}, result)
}

func TestRemoveDuplicateStringsIgnoreList(t *testing.T) {
	result := util.RemoveDuplicateStrings([]string{"brixton", "victoria", "walthamstow"}, []string{"victoria"})

	assert.Equal(t, []string{"brixton", "walthamstow"}, result)
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Cable car", util.Capitalize("cable-car"))
	assert.Equal(t, "Tube", util.Capitalize("tube"))
	assert.Equal(t, "", util.Capitalize(""))
}
