package store

import (
	"database/sql"
	"errors"
	"strconv"
)

// Settings holds the runtime-tunable detection parameters, persisted as
// key-value pairs. Durations are stored in milliseconds.
type Settings struct {
	Sensitivity     float64 `json:"sensitivity"`
	HoldMs          int     `json:"hold_ms"`
	CooldownMs      int     `json:"cooldown_ms"`
	StaleTimeoutMs  int     `json:"stale_timeout_ms"`
	StableFrameGate int     `json:"stable_frame_gate"`

	ActionStrategy   string  `json:"action_strategy"`
	SwipeDistance    float64 `json:"swipe_distance"`
	SwipeVertTol     float64 `json:"swipe_vertical_tolerance"`
	SwipeWindowMs    int     `json:"swipe_window_ms"`
	PinchThreshold   float64 `json:"pinch_threshold"`
	PinchRelease     float64 `json:"pinch_release"`
	ActionCooldownMs int     `json:"action_cooldown_ms"`
	ActionWindowMs   int     `json:"action_window_ms"`
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		Sensitivity:      0.7,
		HoldMs:           300,
		CooldownMs:       500,
		StaleTimeoutMs:   400,
		StableFrameGate:  3,
		ActionStrategy:   "swipe-pinch",
		SwipeDistance:    0.22,
		SwipeVertTol:     0.10,
		SwipeWindowMs:    250,
		PinchThreshold:   0.06,
		PinchRelease:     0.09,
		ActionCooldownMs: 500,
		ActionWindowMs:   600,
	}
}

// SettingsRepository reads and writes the settings table.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Load returns the stored settings merged over the defaults, so missing keys
// keep their documented values.
func (r *SettingsRepository) Load() (Settings, error) {
	settings := DefaultSettings()

	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return settings, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, err
		}
		applySetting(&settings, key, value)
	}

	return settings, rows.Err()
}

// Save writes every settings field, replacing existing keys.
func (r *SettingsRepository) Save(settings Settings) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, value := range settingsPairs(settings) {
		if _, err := stmt.Exec(key, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Get returns a single raw setting value.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func settingsPairs(s Settings) map[string]string {
	return map[string]string{
		"sensitivity":              formatFloat(s.Sensitivity),
		"hold_ms":                  strconv.Itoa(s.HoldMs),
		"cooldown_ms":              strconv.Itoa(s.CooldownMs),
		"stale_timeout_ms":         strconv.Itoa(s.StaleTimeoutMs),
		"stable_frame_gate":        strconv.Itoa(s.StableFrameGate),
		"action_strategy":          s.ActionStrategy,
		"swipe_distance":           formatFloat(s.SwipeDistance),
		"swipe_vertical_tolerance": formatFloat(s.SwipeVertTol),
		"swipe_window_ms":          strconv.Itoa(s.SwipeWindowMs),
		"pinch_threshold":          formatFloat(s.PinchThreshold),
		"pinch_release":            formatFloat(s.PinchRelease),
		"action_cooldown_ms":       strconv.Itoa(s.ActionCooldownMs),
		"action_window_ms":         strconv.Itoa(s.ActionWindowMs),
	}
}

func applySetting(s *Settings, key, value string) {
	switch key {
	case "sensitivity":
		parseFloat(value, &s.Sensitivity)
	case "hold_ms":
		parseInt(value, &s.HoldMs)
	case "cooldown_ms":
		parseInt(value, &s.CooldownMs)
	case "stale_timeout_ms":
		parseInt(value, &s.StaleTimeoutMs)
	case "stable_frame_gate":
		parseInt(value, &s.StableFrameGate)
	case "action_strategy":
		s.ActionStrategy = value
	case "swipe_distance":
		parseFloat(value, &s.SwipeDistance)
	case "swipe_vertical_tolerance":
		parseFloat(value, &s.SwipeVertTol)
	case "swipe_window_ms":
		parseInt(value, &s.SwipeWindowMs)
	case "pinch_threshold":
		parseFloat(value, &s.PinchThreshold)
	case "pinch_release":
		parseFloat(value, &s.PinchRelease)
	case "action_cooldown_ms":
		parseInt(value, &s.ActionCooldownMs)
	case "action_window_ms":
		parseInt(value, &s.ActionWindowMs)
	}
}

func parseFloat(value string, dst *float64) {
	if v, err := strconv.ParseFloat(value, 64); err == nil {
		*dst = v
	}
}

func parseInt(value string, dst *int) {
	if v, err := strconv.Atoi(value); err == nil {
		*dst = v
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
