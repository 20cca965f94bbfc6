// Command validate provides a small CLI that validates rule set JSON files
// in a configs directory. It checks:
//   - JSON structure and required fields
//   - Board dimensions and win length bounds
//   - That the win length fits on the board
//   - Duplicate rule set names across files
//
// Usage: validate [config-dir] (defaults to "configs")
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dropfour/server/game/config"
	"github.com/dropfour/server/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Notes contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File  string
	Valid bool
	Notes []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// validateRuleSet loads and validates a single rule set JSON file.
func validateRuleSet(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
		Notes: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var rs config.RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if rs.Name == "" {
		// The manager falls back to the filename, but a named file is
		// easier to reference from the CLI and the API.
		result.Notes = append(result.Notes, "Note: no name set, the filename will be used")
	}

	if rs.Name == config.DefaultName {
		result.fail("Name %q collides with the built-in default", config.DefaultName)
	}

	if err := engine.ValidateRules(rs.Rules); err != nil {
		result.fail("Invalid rules: %v", err)
	}

	if result.Valid {
		name := rs.Name
		if name == "" {
			name = strings.TrimSuffix(result.File, ".json")
		}
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Name: %s", name))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Board: %dx%d", rs.Columns, rs.Rows))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Win length: %d", rs.Connect))
		if rs.Description != "" {
			result.Notes = append(result.Notes, fmt.Sprintf("✓ Description: %s", rs.Description))
		}
	}

	return result
}

// checkDuplicateNames reports rule set names that appear in more than one
// file. Later files would silently shadow earlier ones in listings.
func checkDuplicateNames(files []string) []string {
	seen := make(map[string]string)
	var dupes []string

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		var rs config.RuleSet
		if err := json.Unmarshal(data, &rs); err != nil {
			continue
		}
		name := rs.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(file), ".json")
		}
		if prev, ok := seen[name]; ok {
			dupes = append(dupes, fmt.Sprintf("Name %q appears in both %s and %s",
				name, filepath.Base(prev), filepath.Base(file)))
		} else {
			seen[name] = file
		}
	}

	return dupes
}

// main scans the config directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are
// invalid.
func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding rule set files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No rule set files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateRuleSet(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, note := range result.Notes {
				fmt.Println("  " + note)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, note := range result.Notes {
				if !strings.HasPrefix(note, "✓") {
					fmt.Println("  ❌ " + note)
				}
			}
		}
	}

	for _, dupe := range checkDuplicateNames(files) {
		allValid = false
		fmt.Println("❌ " + dupe)
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All rule sets are valid!")
	} else {
		fmt.Println("❌ Some rule sets have errors")
		os.Exit(1)
	}
}
