package config

import (
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

type testBinder struct {
	Host string
	Port int
}

func (b *testBinder) Bind(v *viper.Viper, cmd *cobra.Command) error {
	cmd.PersistentFlags().String("test.host", "localhost", "host")
	cmd.PersistentFlags().Int("test.port", 8080, "port")
	return nil
}

func (b *testBinder) Configure(v *viper.Viper) error {
	b.Host = v.GetString("test.host")
	b.Port = v.GetInt("test.port")
	if b.Port < 0 {
		return ErrInvalidValue{Key: "test.port", InvalidValue: v.GetString("test.port")}
	}
	return nil
}

type testConfig struct {
	binder *testBinder
	prefix string
}

func (c *testConfig) Use() string       { return "test" }
func (c *testConfig) EnvPrefix() string { return c.prefix }
func (c *testConfig) Binders() []Binder { return []Binder{c.binder} }

func TestParseArgsDefaults(t *testing.T) {
	config := &testConfig{binder: &testBinder{}, prefix: "CONFIG_TEST_DEFAULTS"}
	parser, err := Generate(config)
	assert.Nil(t, err)

	err = parser.ParseArgs(nil)
	assert.Nil(t, err)
	assert.Equal(t, "localhost", config.binder.Host)
	assert.Equal(t, 8080, config.binder.Port)
}

func TestParseArgsFlags(t *testing.T) {
	config := &testConfig{binder: &testBinder{}, prefix: "CONFIG_TEST_FLAGS"}
	parser, err := Generate(config)
	assert.Nil(t, err)

	err = parser.ParseArgs([]string{"--test.host", "example.com", "--test.port=9000", "/db/Person"})
	assert.Nil(t, err)
	assert.Equal(t, "example.com", config.binder.Host)
	assert.Equal(t, 9000, config.binder.Port)
	assert.Equal(t, []string{"/db/Person"}, parser.Args())
}

func TestParseArgsEnv(t *testing.T) {
	os.Setenv("CONFIG_TEST_ENV_TEST_HOST", "env.example.com")
	defer os.Unsetenv("CONFIG_TEST_ENV_TEST_HOST")

	config := &testConfig{binder: &testBinder{}, prefix: "CONFIG_TEST_ENV"}
	parser, err := Generate(config)
	assert.Nil(t, err)

	err = parser.ParseArgs(nil)
	assert.Nil(t, err)
	assert.Equal(t, "env.example.com", config.binder.Host)
}

func TestParseArgsTwice(t *testing.T) {
	config := &testConfig{binder: &testBinder{}, prefix: "CONFIG_TEST_TWICE"}
	parser, err := Generate(config)
	assert.Nil(t, err)

	assert.Nil(t, parser.ParseArgs(nil))
	assert.Equal(t, ErrAlreadyParsed, parser.ParseArgs(nil))
}

func TestParseArgsUnknownFlag(t *testing.T) {
	config := &testConfig{binder: &testBinder{}, prefix: "CONFIG_TEST_UNKNOWN"}
	parser, err := Generate(config)
	assert.Nil(t, err)

	err = parser.ParseArgs([]string{"--unknown"})
	assert.IsType(t, ErrParseFlags{}, err)
}

func TestParseArgsInvalidConfigFile(t *testing.T) {
	config := &testConfig{binder: &testBinder{}, prefix: "CONFIG_TEST_FILE"}
	parser, err := Generate(config)
	assert.Nil(t, err)

	err = parser.ParseArgs([]string{"--config.path", "config.json"})
	assert.IsType(t, ErrInvalidValue{}, err)
}

func TestParseArgsHelp(t *testing.T) {
	config := &testConfig{binder: &testBinder{}, prefix: "CONFIG_TEST_HELP"}
	parser, err := Generate(config)
	assert.Nil(t, err)

	err = parser.ParseArgs([]string{"--help"})
	assert.Equal(t, ErrHelpRequested, err)
}
