package atlas

import (
	"fmt"

	"github.com/ohdsi/condenser/pkg/api"
)

type Expression struct {
	Name  string       `json:"name"`
	Items []api.Clause `json:"items"`
}

type Expressions struct {
	CommandLineArguments []string     `json:"cli-arguments,omitempty"`
	Vocabulary           string       `json:"vocabulary,omitempty"`
	Expressions          []Expression `json:"expressions"`
}

// Lookup returns the expression with the given name, or nil.
func (e *Expressions) Lookup(name string) *Expression {
	for i := range e.Expressions {
		if e.Expressions[i].Name == name {
			return &e.Expressions[i]
		}
	}
	return nil
}

// Config holds the defaults for command line flags.
type Config struct {
	LogLevel      string `json:"logLevel,omitempty" validate:"omitempty,oneof=panic fatal error warn warning info debug trace"`
	Timeout       string `json:"timeout,omitempty"`
	MaxNodes      uint64 `json:"maxNodes,omitempty"`
	Parallel      int    `json:"parallel,omitempty" validate:"gte=0"`
	Verify        bool   `json:"verify,omitempty"`
	IgnoreMissing bool   `json:"ignoreMissing,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Parallel: 1,
	}
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %v", err)
	}
	return nil
}
