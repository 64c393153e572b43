// SPDX-License-Identifier: Apache-2.0

// Package testvectors loads the published reference scenarios (S1-S6) as
// embedded YAML, using go:embed plus yaml.Unmarshal into a plain map. The
// accumulator's own package tests import this package to ground their
// assertions in known published values instead of re-deriving them.
package testvectors

import (
	_ "embed"
	"encoding/hex"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilnlabs/merkleaccum/hash"
)

//go:embed scenarios.yaml
var scenariosData []byte

// MinimumIndexEntry is one row of scenario S5's minimumCombinedProofIndex
// reference table.
type MinimumIndexEntry struct {
	N            uint64 `yaml:"n"`
	MinimumIndex uint64 `yaml:"minimumIndex"`
}

// Scenario holds one reference scenario. Fields are populated as relevant
// to that scenario; zero values (nil slices, empty strings) mean the field
// does not apply.
type Scenario struct {
	Description string `yaml:"description"`
	Mode        string `yaml:"mode"`

	ElementCount uint64 `yaml:"elementCount"`
	Depth        int    `yaml:"depth"`

	RootPrefix string `yaml:"rootPrefix"`
	RootSuffix string `yaml:"rootSuffix"`

	ElementRootPrefix string `yaml:"elementRootPrefix"`
	ElementRootSuffix string `yaml:"elementRootSuffix"`

	SingleProofIndex     uint64   `yaml:"singleProofIndex"`
	DecommitmentPrefixes []string `yaml:"decommitmentPrefixes"`
	DecommitmentSuffixes []string `yaml:"decommitmentSuffixes"`

	Indices           []uint64 `yaml:"indices"`
	Flags             []bool   `yaml:"flags"`
	Skips             []bool   `yaml:"skips"`
	Orders            []bool   `yaml:"orders"`
	DecommitmentCount int      `yaml:"decommitmentCount"`

	Table []MinimumIndexEntry `yaml:"table"`

	FlagsWordSuffix  string `yaml:"flagsWordSuffix"`
	SkipsWordSuffix  string `yaml:"skipsWordSuffix"`
	OrdersWordSuffix string `yaml:"ordersWordSuffix"`
}

// HashMode resolves the scenario's mode string to hash.Mode.
func (s Scenario) HashMode() (hash.Mode, error) {
	switch strings.ToLower(s.Mode) {
	case "ordered":
		return hash.Ordered, nil
	case "sorted":
		return hash.Sorted, nil
	default:
		return 0, fmt.Errorf("testvectors: unknown hash mode %q", s.Mode)
	}
}

// Load parses the embedded scenario fixture into a name-keyed map (s1..s6).
func Load() (map[string]Scenario, error) {
	var scenarios map[string]Scenario
	if err := yaml.Unmarshal(scenariosData, &scenarios); err != nil {
		return nil, fmt.Errorf("testvectors: %w", err)
	}
	return scenarios, nil
}

// MatchesHex reports whether digest's lowercase hex encoding starts with
// prefix and ends with suffix. An empty prefix or suffix always matches —
// several scenarios only publish one end of the value.
func MatchesHex(digest hash.Digest, prefix, suffix string) bool {
	full := hex.EncodeToString(digest[:])
	if prefix != "" && !strings.HasPrefix(full, strings.ToLower(prefix)) {
		return false
	}
	if suffix != "" && !strings.HasSuffix(full, strings.ToLower(suffix)) {
		return false
	}
	return true
}
