package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	d := Default()

	assert.Equal(t, 115200, d.Baudrate)
	assert.EqualValues(t, 600, d.Pid.Kp)
	assert.EqualValues(t, 20, d.Pid.Ki)
	assert.EqualValues(t, 8000, d.Pid.Kd)
	assert.EqualValues(t, 1200, d.Fuzzy.ErrorScale)
	assert.Equal(t, 20, d.Human.GainMin)
	assert.Equal(t, 75, d.Human.GainMax)
}

func TestValidateFillsZeroValuedFields(t *testing.T) {
	c := Config{}
	_, _, err := c.Validate("test")
	require.NoError(t, err)

	assert.Equal(t, Default().Baudrate, c.Baudrate)
	assert.Equal(t, Default().Pid, c.Pid)
	assert.Equal(t, Default().Human, c.Human)
}

func TestValidateRejectsInvertedHumanGains(t *testing.T) {
	c := Default()
	c.Human.GainMin = 80
	c.Human.GainMax = 70

	_, _, err := c.Validate("test")
	assert.Error(t, err)
}

func TestValidateRejectsOutOfRangeDeltaFilterSize(t *testing.T) {
	c := Default()
	c.Pid.DeltaFilterSize = 11

	_, _, err := c.Validate("test")
	assert.Error(t, err)
}

func TestLoadReadsAndValidatesJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	contents := `{"port": "/dev/ttyUSB0", "pid": {"kp": 700}}`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Port)
	assert.EqualValues(t, 700, cfg.Pid.Kp)
	// Load unmarshals over Default(), so Ki/Kd left out of the file keep
	// their default values.
	assert.EqualValues(t, 20, cfg.Pid.Ki)
	assert.Equal(t, 115200, cfg.Baudrate)
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
