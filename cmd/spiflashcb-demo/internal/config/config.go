// Package config loads flashparams.Params presets from TOML files, letting
// the demo CLI target a flash part that isn't one of the builtin presets
// without recompiling.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/flashparams"
)

// PresetFile is the on-disk TOML shape for a flash-part description.
type PresetFile struct {
	Name           string `toml:"name"`
	IDHex          uint32 `toml:"id_hex"`
	OpRDID         byte   `toml:"op_rdid"`
	OpWREN         byte   `toml:"op_wren"`
	OpWRDSBL       byte   `toml:"op_wrdsbl"`
	OpEraseBulk    byte   `toml:"op_erase_bulk"`
	OpEraseSector  byte   `toml:"op_erase_sector"`
	OpRDSR         byte   `toml:"op_rdsr"`
	OpRead         byte   `toml:"op_read"`
	OpPageProgram  byte   `toml:"op_page_program"`
	AddressBytes   int    `toml:"address_bytes"`
	SectorSize     uint32 `toml:"sector_size"`
	PageSize       uint32 `toml:"page_size"`
	TotalSize      uint32 `toml:"total_size"`
	RDIDDummyBytes int    `toml:"rdid_dummy_bytes"`
	WIPMask        byte   `toml:"wip_mask"`
	WRENMask       byte   `toml:"wren_mask"`
}

// LoadPreset reads a flash-part description from a TOML file at path.
func LoadPreset(path string) (flashparams.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return flashparams.Params{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var pf PresetFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return flashparams.Params{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	p := flashparams.Params{
		Name:           pf.Name,
		IDHex:          pf.IDHex,
		OpRDID:         pf.OpRDID,
		OpWREN:         pf.OpWREN,
		OpWRDSBL:       pf.OpWRDSBL,
		OpEraseBulk:    pf.OpEraseBulk,
		OpEraseSector:  pf.OpEraseSector,
		OpRDSR:         pf.OpRDSR,
		OpRead:         pf.OpRead,
		OpPageProgram:  pf.OpPageProgram,
		AddressBytes:   pf.AddressBytes,
		SectorSize:     pf.SectorSize,
		PageSize:       pf.PageSize,
		TotalSize:      pf.TotalSize,
		RDIDDummyBytes: pf.RDIDDummyBytes,
		WIPMask:        pf.WIPMask,
		WRENMask:       pf.WRENMask,
	}
	if err := p.Validate(); err != nil {
		return flashparams.Params{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return p, nil
}

// BuiltinPresets maps preset names accepted by --preset to their
// flashparams.Params constructor, alongside anything loadable from a TOML
// file path.
var BuiltinPresets = map[string]func() flashparams.Params{
	"w25q16jv":   flashparams.W25Q16JV,
	"w25q32jv":   flashparams.W25Q32JV,
	"at25sf081":  flashparams.AT25SF081,
}

// Resolve looks up name as a builtin preset first, falling back to treating
// it as a path to a TOML preset file.
func Resolve(name string) (flashparams.Params, error) {
	if ctor, ok := BuiltinPresets[name]; ok {
		return ctor(), nil
	}
	return LoadPreset(name)
}
