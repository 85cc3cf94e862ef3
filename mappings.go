package elastic

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// MappingRules are external field-mapping overrides, keyed by Go type name.
// They serve the same role as struct tags for types whose source cannot carry
// tags, and they win over tags when both are present.
type MappingRules struct {
	Types map[string]TypeRules `yaml:"types"`
}

// TypeRules holds the per-property overrides of one entity type.
type TypeRules struct {
	Properties map[string]PropertyRule `yaml:"properties"`
}

// PropertyRule overrides the mapping of a single property, addressed by its
// domain property name.
type PropertyRule struct {
	Field      string `yaml:"field"`
	WriteNull  bool   `yaml:"write_null"`
	TimeLayout string `yaml:"time_layout"`
}

// LoadMappingRules reads mapping rules from a YAML file. ${VAR} and
// ${VAR:-default} references are expanded from the environment.
func LoadMappingRules(path string) (MappingRules, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return MappingRules{}, fmt.Errorf("read mapping rules %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var rules MappingRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return MappingRules{}, fmt.Errorf("parse mapping rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return MappingRules{}, fmt.Errorf("invalid mapping rules: %w", err)
	}
	return rules, nil
}

// Validate checks the rules for correctness.
func (r MappingRules) Validate() error {
	for typeName, tr := range r.Types {
		if typeName == "" {
			return fmt.Errorf("type name must not be empty")
		}
		for propName, pr := range tr.Properties {
			if propName == "" {
				return fmt.Errorf("types.%s: property name must not be empty", typeName)
			}
			if pr.Field == "" && !pr.WriteNull && pr.TimeLayout == "" {
				return fmt.Errorf("types.%s.properties.%s: rule sets nothing", typeName, propName)
			}
			if strings.Contains(pr.Field, ".") {
				return fmt.Errorf("types.%s.properties.%s: field %q must not contain dots", typeName, propName, pr.Field)
			}
		}
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
