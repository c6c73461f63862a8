package flashparams

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestW25Q16JV_Topology(t *testing.T) {
	p := W25Q16JV()
	assert.NoError(t, p.Validate())
	assert.EqualValues(t, 16, p.PagesPerSector())
	assert.EqualValues(t, 512, p.NumSectors())
}

func TestParams_ValidateZeroValue(t *testing.T) {
	var p Params
	assert.Error(t, p.Validate())
}

func TestParams_ValidateSectorNotMultipleOfPage(t *testing.T) {
	p := W25Q16JV()
	p.SectorSize = 4000
	assert.Error(t, p.Validate())
}
