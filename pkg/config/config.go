// Package config loads and saves cfg/cfg.toml. The corpus carries no TOML
// or YAML library, and the file only ever holds five flat scalars, so this
// is a small hand-rolled "key = value" reader rather than a full parser.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the tunables read from cfg/cfg.toml.
type Config struct {
	TickRate           uint32  // Hz, client camera tick and PlayerInput send rate
	RenderDistance     uint32  // chunks, Chebyshev radius
	PlayerSpeed        float64 // blocks/second baseline
	CtrlSpeedup        float64 // multiplier applied while Control is held
	RemeshOnNeighborLoad bool  // force Meshed -> Unmeshed when a neighbor arrives late
}

// Default matches original_source's defaults where cfg.toml is silent on a
// key.
func Default() Config {
	return Config{
		TickRate:             30,
		RenderDistance:       8,
		PlayerSpeed:          10,
		CtrlSpeedup:          2,
		RemeshOnNeighborLoad: false,
	}
}

// Load reads key=value pairs from path, layering them over Default(). A
// missing file is not an error: Default() is written to path (creating its
// directory) and returned, so a fresh checkout can run without a config
// file present.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		key, val, ok := strings.Cut(raw, "=")
		if !ok {
			return cfg, fmt.Errorf("config: %s:%d: missing '=' in %q", path, line, raw)
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(strings.Trim(strings.TrimSpace(val), `"`))

		if err := cfg.set(key, val); err != nil {
			return cfg, fmt.Errorf("config: %s:%d: %w", path, line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) set(key, val string) error {
	switch key {
	case "tick_rate":
		n, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return fmt.Errorf("tick_rate: %w", err)
		}
		c.TickRate = uint32(n)
	case "render_distance":
		n, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return fmt.Errorf("render_distance: %w", err)
		}
		c.RenderDistance = uint32(n)
	case "player_speed":
		n, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("player_speed: %w", err)
		}
		c.PlayerSpeed = n
	case "ctrl_speedup":
		n, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("ctrl_speedup: %w", err)
		}
		c.CtrlSpeedup = n
	case "remesh_on_neighbor_load":
		n, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("remesh_on_neighbor_load: %w", err)
		}
		c.RemeshOnNeighborLoad = n
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}

// Save writes cfg back out in the same key = value shape Load reads,
// creating parent directories as needed.
func Save(path string, cfg Config) error {
	if dir := dirOf(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: mkdir %s: %w", dir, err)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "tick_rate = %d\n", cfg.TickRate)
	fmt.Fprintf(&b, "render_distance = %d\n", cfg.RenderDistance)
	fmt.Fprintf(&b, "player_speed = %v\n", cfg.PlayerSpeed)
	fmt.Fprintf(&b, "ctrl_speedup = %v\n", cfg.CtrlSpeedup)
	fmt.Fprintf(&b, "remesh_on_neighbor_load = %v\n", cfg.RemeshOnNeighborLoad)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func dirOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return ""
	}
	return path[:i]
}
