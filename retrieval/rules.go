// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package retrieval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRuleSet reads a prior rule table from a YAML file. Bounds left
// unset fall back to the default clamp. Example:
//
//	min: -0.6
//	max: 0.9
//	rules:
//	  - kind: token_in_url
//	    weight: 0.20
//	  - kind: url_match
//	    contains: ["/produkty/"]
//	    weight: 0.15
func LoadRuleSet(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("reading rule set %s: %w", path, err)
	}

	defaults := DefaultRuleSet()
	set := RuleSet{Min: defaults.Min, Max: defaults.Max}
	if err := yaml.Unmarshal(data, &set); err != nil {
		return RuleSet{}, fmt.Errorf("parsing rule set %s: %w", path, err)
	}
	if err := set.validate(); err != nil {
		return RuleSet{}, fmt.Errorf("rule set %s: %w", path, err)
	}
	return set, nil
}
