package terrain

import "fmt"

// TextureType is the archive's ground texture enum. The editor works with
// raw 0..63 type codes; records translate codes to this enum on export.
type TextureType uint16

// Ground texture types, in archive order.
const (
	TextureBarrenRock TextureType = iota
	TextureGrassland
	TextureIce
	TextureLushGrass
	TextureMarshSparseSwamp
	TextureMudRichDirt
	TextureObsidianPlain
	TexturePackedDirt
	TexturePatchyDirt
	TexturePatchyGrassland
	TextureSandYellow
	TextureSandGrey
	TextureSandRockStrewn
	TextureSedimentaryRock
	TextureSemiBarrenRock
	TextureSnow
	TextureWaterRunning
	TextureWaterStandingFresh
	TextureWaterShallowSea
	TextureWaterShallowStillSea
	TextureWaterDeepSea
	TextureReserved21
	TextureReserved22
	TextureReserved23
	TextureReserved24
	TextureReserved25
	TextureReserved26
	TextureReserved27
	TextureReserved28
	TextureReserved29
	TextureReserved30
	TextureRoadType

	textureTypeCount
)

// TextureTypeForCode translates an internal 0..63 type code to the archive
// enum. Codes past the table wrap onto it, matching the client's behavior
// of masking rather than rejecting.
func TextureTypeForCode(code uint8) TextureType {
	return TextureType(code) % textureTypeCount
}

// String returns the enum name for diagnostics.
func (t TextureType) String() string {
	names := [...]string{
		"BarrenRock", "Grassland", "Ice", "LushGrass", "MarshSparseSwamp",
		"MudRichDirt", "ObsidianPlain", "PackedDirt", "PatchyDirt",
		"PatchyGrassland", "SandYellow", "SandGrey", "SandRockStrewn",
		"SedimentaryRock", "SemiBarrenRock", "Snow", "WaterRunning",
		"WaterStandingFresh", "WaterShallowSea", "WaterShallowStillSea",
		"WaterDeepSea",
	}
	if int(t) < len(names) {
		return names[t]
	}
	if t == TextureRoadType {
		return "RoadType"
	}
	if t < textureTypeCount {
		return fmt.Sprintf("Reserved%d", uint16(t))
	}
	return fmt.Sprintf("Unknown(%d)", uint16(t))
}
