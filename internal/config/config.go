package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ValidationError reports an invalid configuration value by its YAML path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

// RegionDef declares one tiling region as a fraction of a display's usable
// area, plus its adjacency links to neighboring regions.
type RegionDef struct {
	Name          string `yaml:"name"`
	XPercent      int    `yaml:"x_percent"`      // 0-100
	YPercent      int    `yaml:"y_percent"`      // 0-100
	WidthPercent  int    `yaml:"width_percent"`  // 1-100
	HeightPercent int    `yaml:"height_percent"` // 1-100
	// Vertical stacks windows top-to-bottom; false tiles left-to-right.
	Vertical bool `yaml:"vertical"`
	// Default marks the region that receives windows with no other home.
	Default bool `yaml:"default,omitempty"`
	// Adjacent maps a direction (north/south/east/west) to a region name,
	// optionally qualified as "display:region" for cross-display links.
	Adjacent map[string]string `yaml:"adjacent,omitempty"`
}

// DisplayDef binds a set of regions to displays matching Match.
type DisplayDef struct {
	// Match is a display index ("0"), a RandR output name ("DP-1"), or "*".
	Match   string      `yaml:"match"`
	Regions []RegionDef `yaml:"regions"`
}

// Config holds the daemon configuration.
type Config struct {
	// Margin is the pixel gap between windows and region edges.
	Margin int `yaml:"margin"`
	// GrowActive paints the focused window slightly larger than its slot.
	GrowActive bool `yaml:"grow_active"`
	// MouseFollowsFocus warps the pointer into windows focused via hotkeys.
	MouseFollowsFocus bool `yaml:"mouse_follows_focus"`
	// DragSettleMs is the quiet period after the last drag sample before
	// the drop is committed.
	DragSettleMs int    `yaml:"drag_settle_ms"`
	AutoRestore  bool   `yaml:"auto_restore"`
	LogLevel     string `yaml:"log_level"`
	// IgnoreApps lists WM_CLASS names that are never managed.
	IgnoreApps []string     `yaml:"ignore_apps,omitempty"`
	Displays   []DisplayDef `yaml:"displays"`
	// Hotkeys maps action names to key bindings. Empty string disables a
	// binding; user entries merge over the defaults.
	Hotkeys map[string]string `yaml:"hotkeys"`
}

func DefaultConfig() *Config {
	return &Config{
		Margin:            30,
		GrowActive:        true,
		MouseFollowsFocus: false,
		DragSettleMs:      250,
		AutoRestore:       true,
		LogLevel:          "info",
		Displays: []DisplayDef{
			{
				Match: "*",
				Regions: []RegionDef{
					{
						Name:          "main",
						XPercent:      0,
						YPercent:      0,
						WidthPercent:  100,
						HeightPercent: 100,
						Vertical:      false,
						Default:       true,
					},
				},
			},
		},
		Hotkeys: map[string]string{
			"focus_west":     "Mod4-h",
			"focus_south":    "Mod4-j",
			"focus_north":    "Mod4-k",
			"focus_east":     "Mod4-l",
			"move_west":      "Mod4-Shift-h",
			"move_south":     "Mod4-Shift-j",
			"move_north":     "Mod4-Shift-k",
			"move_east":      "Mod4-Shift-l",
			"swap_west":      "Mod4-Control-h",
			"swap_south":     "Mod4-Control-j",
			"swap_north":     "Mod4-Control-k",
			"swap_east":      "Mod4-Control-l",
			"rebalance":      "Mod4-r",
			"save_layout":    "Mod4-s",
			"restore_layout": "Mod4-Shift-s",
		},
	}
}

// DragSettle returns the drag debounce window as a duration.
func (c *Config) DragSettle() time.Duration {
	return time.Duration(c.DragSettleMs) * time.Millisecond
}

// IsIgnored reports whether a WM_CLASS name is excluded from management.
func (c *Config) IsIgnored(appID string) bool {
	for _, name := range c.IgnoreApps {
		if strings.EqualFold(name, appID) {
			return true
		}
	}
	return false
}

// DisplayFor returns the region definitions for a display, preferring an
// exact index or name match over a "*" wildcard. Nil when nothing matches.
func (c *Config) DisplayFor(id int, name string) *DisplayDef {
	var wildcard *DisplayDef
	for i := range c.Displays {
		def := &c.Displays[i]
		switch def.Match {
		case fmt.Sprintf("%d", id), name:
			return def
		case "*":
			if wildcard == nil {
				wildcard = def
			}
		}
	}
	return wildcard
}

// SplitAdjacentTarget splits an adjacency target into its optional display
// qualifier and region name.
func SplitAdjacentTarget(target string) (display, region string) {
	if i := strings.IndexByte(target, ':'); i >= 0 {
		return target[:i], target[i+1:]
	}
	return "", target
}

// HotkeyActions lists the action names Validate accepts as hotkey keys.
func HotkeyActions() []string {
	actions := []string{"rebalance", "save_layout", "restore_layout"}
	for _, verb := range []string{"focus", "move", "swap"} {
		for _, dir := range []string{"north", "south", "east", "west"} {
			actions = append(actions, verb+"_"+dir)
		}
	}
	sort.Strings(actions)
	return actions
}

var directionNames = map[string]bool{
	"north": true,
	"south": true,
	"east":  true,
	"west":  true,
}

// Normalize fills derived state: when a display definition marks no region
// as default, the first region is promoted.
func (c *Config) Normalize() {
	for i := range c.Displays {
		def := &c.Displays[i]
		hasDefault := false
		for j := range def.Regions {
			if def.Regions[j].Default {
				hasDefault = true
				break
			}
		}
		if !hasDefault && len(def.Regions) > 0 {
			def.Regions[0].Default = true
		}
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.Margin < 0 {
		return &ValidationError{Path: "margin", Err: fmt.Errorf("margin must be >= 0")}
	}
	if c.DragSettleMs <= 0 {
		return &ValidationError{Path: "drag_settle_ms", Err: fmt.Errorf("drag_settle_ms must be > 0")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if len(c.Displays) == 0 {
		return &ValidationError{Path: "displays", Err: fmt.Errorf("displays must not be empty")}
	}

	for i := range c.Displays {
		if err := c.validateDisplay(i); err != nil {
			return err
		}
	}

	validActions := make(map[string]bool)
	for _, action := range HotkeyActions() {
		validActions[action] = true
	}
	for action := range c.Hotkeys {
		if !validActions[action] {
			return &ValidationError{Path: "hotkeys." + action, Err: fmt.Errorf("unknown action; valid actions: %s", strings.Join(HotkeyActions(), ", "))}
		}
	}

	return nil
}

func (c *Config) validateDisplay(i int) error {
	def := &c.Displays[i]
	path := fmt.Sprintf("displays[%d]", i)

	if strings.TrimSpace(def.Match) == "" {
		return &ValidationError{Path: path + ".match", Err: fmt.Errorf("match is required")}
	}
	if len(def.Regions) == 0 {
		return &ValidationError{Path: path + ".regions", Err: fmt.Errorf("at least one region is required")}
	}

	names := make(map[string]bool, len(def.Regions))
	defaults := 0
	for j := range def.Regions {
		region := &def.Regions[j]
		rpath := fmt.Sprintf("%s.regions[%d]", path, j)

		if strings.TrimSpace(region.Name) == "" {
			return &ValidationError{Path: rpath + ".name", Err: fmt.Errorf("name is required")}
		}
		if strings.Contains(region.Name, ":") {
			return &ValidationError{Path: rpath + ".name", Err: fmt.Errorf("name must not contain %q", ":")}
		}
		if names[region.Name] {
			return &ValidationError{Path: rpath + ".name", Err: fmt.Errorf("duplicate region name %q", region.Name)}
		}
		names[region.Name] = true
		if region.Default {
			defaults++
		}

		if region.XPercent < 0 || region.XPercent > 100 {
			return &ValidationError{Path: rpath + ".x_percent", Err: fmt.Errorf("x_percent must be between 0 and 100")}
		}
		if region.YPercent < 0 || region.YPercent > 100 {
			return &ValidationError{Path: rpath + ".y_percent", Err: fmt.Errorf("y_percent must be between 0 and 100")}
		}
		if region.WidthPercent <= 0 || region.WidthPercent > 100 {
			return &ValidationError{Path: rpath + ".width_percent", Err: fmt.Errorf("width_percent must be between 1 and 100")}
		}
		if region.HeightPercent <= 0 || region.HeightPercent > 100 {
			return &ValidationError{Path: rpath + ".height_percent", Err: fmt.Errorf("height_percent must be between 1 and 100")}
		}
		if region.XPercent+region.WidthPercent > 100 {
			return &ValidationError{Path: rpath, Err: fmt.Errorf("x_percent + width_percent must be <= 100")}
		}
		if region.YPercent+region.HeightPercent > 100 {
			return &ValidationError{Path: rpath, Err: fmt.Errorf("y_percent + height_percent must be <= 100")}
		}

		for dir, target := range region.Adjacent {
			apath := rpath + ".adjacent." + dir
			if !directionNames[dir] {
				return &ValidationError{Path: apath, Err: fmt.Errorf("direction must be one of: north, south, east, west")}
			}
			if err := c.resolveAdjacent(i, target); err != nil {
				return &ValidationError{Path: apath, Err: err}
			}
		}
	}

	if defaults > 1 {
		return &ValidationError{Path: path + ".regions", Err: fmt.Errorf("at most one region may set default: true")}
	}

	return nil
}

// resolveAdjacent checks that an adjacency target names a region reachable
// from display definition i.
func (c *Config) resolveAdjacent(i int, target string) error {
	displayMatch, regionName := SplitAdjacentTarget(target)
	if strings.TrimSpace(regionName) == "" {
		return fmt.Errorf("adjacency target is required")
	}

	if displayMatch == "" {
		for _, region := range c.Displays[i].Regions {
			if region.Name == regionName {
				return nil
			}
		}
		return fmt.Errorf("region %q not found on the same display", regionName)
	}

	for j := range c.Displays {
		if c.Displays[j].Match != displayMatch {
			continue
		}
		for _, region := range c.Displays[j].Regions {
			if region.Name == regionName {
				return nil
			}
		}
		return fmt.Errorf("region %q not found on display %q", regionName, displayMatch)
	}
	return fmt.Errorf("display %q not found", displayMatch)
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments
// from the original YAML.
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return err
	}

	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
