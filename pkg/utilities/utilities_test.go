package utilities

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfigJson struct {
	Name  string `json:"name"`
	Ports []int  `json:"ports"`
}

type sampleConfig struct {
	Name      string
	PortCount int
}

func (s sampleConfigJson) ConvertToDomain() sampleConfig {
	return sampleConfig{Name: strings.ToUpper(s.Name), PortCount: len(s.Ports)}
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig[sampleConfigJson, sampleConfig](writeFile(t, "config.json", `{"name":"satch","ports":[1,2]}`))
	require.NoError(t, err)
	assert.Equal(t, sampleConfig{Name: "SATCH", PortCount: 2}, cfg)
}

func TestReadConfigErrors(t *testing.T) {
	_, err := ReadConfig[sampleConfigJson, sampleConfig](filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = ReadConfig[sampleConfigJson, sampleConfig](writeFile(t, "config.json", `{"name":`))
	assert.Error(t, err)
}

func TestConvertJsonArrayToDomain(t *testing.T) {
	out := ConvertJsonArrayToDomain[sampleConfigJson, sampleConfig]([]sampleConfigJson{{Name: "a"}, {Name: "b", Ports: []int{1}}})
	assert.Equal(t, []sampleConfig{{Name: "A"}, {Name: "B", PortCount: 1}}, out)

	assert.Empty(t, ConvertJsonArrayToDomain[sampleConfigJson, sampleConfig](nil))
}

func TestLoadEnvFiles(t *testing.T) {
	t.Setenv("SATCH_PRESET", "from-process")
	os.Unsetenv("SATCH_FROM_FILE")
	t.Cleanup(func() { os.Unsetenv("SATCH_FROM_FILE") })

	path := writeFile(t, ".env", "SATCH_FROM_FILE=loaded\nSATCH_PRESET=from-file\n")
	require.NoError(t, LoadEnvFiles(path, filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, "loaded", os.Getenv("SATCH_FROM_FILE"))
	assert.Equal(t, "from-process", os.Getenv("SATCH_PRESET"))
	assert.NoError(t, LoadEnvFiles(filepath.Join(t.TempDir(), "none.env")))
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("SATCH_SET", "  value ")
	t.Setenv("SATCH_BLANK", "   ")

	assert.Equal(t, "value", EnvOrDefault("SATCH_SET", "fallback"))
	assert.Equal(t, "fallback", EnvOrDefault("SATCH_BLANK", "fallback"))
	assert.Equal(t, "fallback", EnvOrDefault("SATCH_NEVER_SET", "fallback"))
}

func TestTernary(t *testing.T) {
	assert.Equal(t, 1, Ternary(true, 1, 2))
	assert.Equal(t, "b", Ternary(false, "a", "b"))

	var nilSlice []int
	assert.Nil(t, Ternary(false, []int{1}, nilSlice))
}

func TestSerialize(t *testing.T) {
	data, err := Serialize(struct {
		JobId string `json:"job_id"`
	}{JobId: "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"job_id":"abc"}`, string(data))

	_, err = Serialize(make(chan int))
	assert.Error(t, err)
}
