package arcablock

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Config represents the operator-supplied configuration.
//
// The Show* fields form a type whitelist: when neither (or both) is set, every
// record is shown. ReasonRegex keeps only matching reasons while
// ReasonExcludeRegex drops them. This is the documented intent of the fields;
// the tool this replaces silently did the opposite for the regex pair.
type Config struct {
	Username           string `json:"username" validate:"required"`            // Account used to log in.
	Password           string `json:"password" validate:"required"`            // Password for the account.
	Slug               string `json:"slug" validate:"required"`                // Channel slug, e.g. "breaking".
	OnlyOneYear        bool   `json:"onlyOneYear"`                             // Show only blocks whose span has exactly a 1-year component.
	ShowArticle        bool   `json:"showArticle"`                             // Show article blocks.
	ShowComment        bool   `json:"showComment"`                             // Show comment blocks.
	Reason             string `json:"reason,omitempty"`                        // Override reason; empty keeps the original reason.
	Duration           string `json:"duration,omitempty" validate:"omitempty,numeric"` // Override duration in seconds; empty means 1 year.
	ReasonRegex        string `json:"reasonRegex,omitempty"`                   // Keep only reasons matching this pattern.
	ReasonExcludeRegex string `json:"reasonExcludeRegex,omitempty"`            // Drop reasons matching this pattern.
	ReasonLike         string `json:"reasonLike,omitempty"`                    // Keep only reasons similar to this text.
	LessThanDays       int    `json:"lessThanDays,omitempty" validate:"omitempty,min=0"` // Keep only blocks with at most this many days left; 0 disables.
	Logout             bool   `json:"logout,omitempty"`                        // Log the session out at normal exit.
}

// LoadConfig loads and validates the configuration from the specified file.
//
// Regex fields are compiled here so a bad pattern fails the run before any
// network activity. All failures wrap ErrConfigInvalid.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	var config Config
	if err = json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	if err = validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	for _, pattern := range []string{config.ReasonRegex, config.ReasonExcludeRegex} {
		if pattern == "" {
			continue
		}
		if _, err = regexp.Compile(pattern); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
		}
	}

	return &config, nil
}
