package baac

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Unknown is the sentinel label for missing or unmapped categorical codes.
// Rows carrying it stay in the table; only required-field gaps exclude a row.
const Unknown = "Unknown"

//go:embed codes.yaml
var codesYAML []byte

// codeTables holds the BAAC code → label lookup tables. Loaded once at
// startup from the embedded codes.yaml and never mutated.
type codeTables struct {
	Lighting       map[int]string `yaml:"lighting"`
	Weather        map[int]string `yaml:"weather"`
	Agglomeration  map[int]string `yaml:"agglomeration"`
	Intersection   map[int]string `yaml:"intersection"`
	RoadCategory   map[int]string `yaml:"road_category"`
	Surface        map[int]string `yaml:"surface"`
	Infrastructure map[int]string `yaml:"infrastructure"`
	Situation      map[int]string `yaml:"situation"`
	Sex            map[int]string `yaml:"sex"`
	TripPurpose    map[int]string `yaml:"trip_purpose"`
	Collision      map[int]string `yaml:"collision"`
}

var codes = mustLoadCodes()

func mustLoadCodes() codeTables {
	var t codeTables
	if err := yaml.Unmarshal(codesYAML, &t); err != nil {
		panic(fmt.Sprintf("baac: parse embedded codes.yaml: %v", err))
	}
	return t
}

// label decodes a numeric BAAC code against a lookup table. ok reports
// whether the raw field held a parseable integer at all.
func label(table map[int]string, code int, ok bool) string {
	if !ok {
		return Unknown
	}
	if l, found := table[code]; found {
		return l
	}
	return Unknown
}
