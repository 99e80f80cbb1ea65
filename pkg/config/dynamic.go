package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vxgo/approuter/pkg/routing"
)

// Defaults for the dynamic configuration prompts.
const (
	// DefaultMenuTitle is shown above the numbered application menu.
	DefaultMenuTitle = "Please select a choice."

	// DefaultInvalidInputMessage warns about a choice that is not on the menu.
	DefaultInvalidInputMessage = "That is an incorrect choice. Please enter " +
		"the number of the menu item you wish to choose."

	// DefaultTryAgainMessage labels the single retry option after bad input.
	DefaultTryAgainMessage = "Try Again"

	// DefaultErrorMessage is sent when a configuration change invalidates
	// an active session.
	DefaultErrorMessage = "Oops! We experienced a temporary error. " +
		"Please try and dial the line again."
)

// Entry is one menu line: the label shown to the user and the endpoint
// the chosen application is reached on.
type Entry struct {
	Label    string `yaml:"label"`
	Endpoint string `yaml:"endpoint"`
}

// Dynamic is the per-message configuration. The worker takes a fresh
// snapshot for every message it handles, so a reload never changes the
// config mid-handling.
type Dynamic struct {
	MenuTitle           string        `yaml:"menu_title"`
	Entries             []Entry       `yaml:"entries"`
	InvalidInputMessage string        `yaml:"invalid_input_message"`
	TryAgainMessage     string        `yaml:"try_again_message"`
	ErrorMessage        string        `yaml:"error_message"`
	RoutingTable        routing.Table `yaml:"routing_table"`
}

// NewDynamic returns a dynamic config with all prompt defaults applied
// and no entries or routes. Mostly useful as a base in tests.
func NewDynamic() *Dynamic {
	return &Dynamic{
		MenuTitle:           DefaultMenuTitle,
		InvalidInputMessage: DefaultInvalidInputMessage,
		TryAgainMessage:     DefaultTryAgainMessage,
		ErrorMessage:        DefaultErrorMessage,
	}
}

// DecodeDynamic parses a dynamic config from YAML, applies prompt
// defaults for absent fields, and validates the result.
func DecodeDynamic(data []byte) (*Dynamic, error) {
	cfg := NewDynamic()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse dynamic config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDynamic reads and decodes a dynamic config file.
func LoadDynamic(path string) (*Dynamic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dynamic config %s: %w", path, err)
	}
	return DecodeDynamic(data)
}

// applyDefaults restores prompt defaults that were explicitly set to
// empty in the file. Yaml zero values and absent keys are treated alike.
func (c *Dynamic) applyDefaults() {
	if c.MenuTitle == "" {
		c.MenuTitle = DefaultMenuTitle
	}
	if c.InvalidInputMessage == "" {
		c.InvalidInputMessage = DefaultInvalidInputMessage
	}
	if c.TryAgainMessage == "" {
		c.TryAgainMessage = DefaultTryAgainMessage
	}
	if c.ErrorMessage == "" {
		c.ErrorMessage = DefaultErrorMessage
	}
}

// Validate rejects configs the state machine cannot make progress with.
// An empty menu is refused here so the select state never sees a menu
// the user cannot answer.
func (c *Dynamic) Validate() error {
	if len(c.Entries) == 0 {
		return fmt.Errorf("at least one menu entry is required")
	}
	for i, entry := range c.Entries {
		if entry.Label == "" {
			return fmt.Errorf("menu entry %d has an empty label", i)
		}
		if entry.Endpoint == "" {
			return fmt.Errorf("menu entry %d (%s) has an empty endpoint", i, entry.Label)
		}
	}
	if err := c.RoutingTable.Validate(); err != nil {
		return fmt.Errorf("invalid routing table: %w", err)
	}
	return nil
}

// TargetEndpoints returns the set of endpoints currently offered on the
// menu. Computed from the live config at handling time, never from a
// session snapshot.
func (c *Dynamic) TargetEndpoints() map[string]struct{} {
	targets := make(map[string]struct{}, len(c.Entries))
	for _, entry := range c.Entries {
		targets[entry.Endpoint] = struct{}{}
	}
	return targets
}

// MenuLabels returns the entry labels in menu order.
func (c *Dynamic) MenuLabels() []string {
	labels := make([]string, len(c.Entries))
	for i, entry := range c.Entries {
		labels[i] = entry.Label
	}
	return labels
}

// MenuEndpoints returns the entry endpoints in menu order.
func (c *Dynamic) MenuEndpoints() []string {
	endpoints := make([]string, len(c.Entries))
	for i, entry := range c.Entries {
		endpoints[i] = entry.Endpoint
	}
	return endpoints
}
