package cmd

import (
	"testing"
	"time"

	"github.com/isometry/convai-webhook/internal/config"
	"github.com/isometry/convai-webhook/internal/helpers"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigPath(t *testing.T) {
	testCases := []struct {
		Name     string
		Args     []string
		Expected string
	}{
		{Name: "default", Args: nil, Expected: defaultConfigFile},
		{Name: "long", Args: []string{"service", "--config", "/etc/webhook.yaml"}, Expected: "/etc/webhook.yaml"},
		{Name: "long_equals", Args: []string{"--config=/tmp/c.yaml", "-vv"}, Expected: "/tmp/c.yaml"},
		{Name: "short", Args: []string{"-m", "service", "-c", "local.yaml"}, Expected: "local.yaml"},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, configPath(tc.Args))
		})
	}
}

func TestBindEnvMapFromEnvironment(t *testing.T) {
	var (
		str   = "default"
		port  = 25
		size  int64
		wait  = time.Second
		to    []string
		flag  bool
		level int
	)
	t.Setenv("TEST_BIND_STRING", "from-env")
	t.Setenv("TEST_BIND_PORT", "2525")
	t.Setenv("TEST_BIND_SIZE", "1024")
	t.Setenv("TEST_BIND_WAIT", "3s")
	t.Setenv("TEST_BIND_LIST", "a@example.com, b@example.com")
	t.Setenv("TEST_BIND_FLAG", "true")

	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	bindEnvMap(cmd, map[*string]boundEnvVar[string]{&str: {Name: "test-bind-string"}})
	bindEnvMap(cmd, map[*int]boundEnvVar[int]{
		&port:  {Name: "test-bind-port"},
		&level: {Name: "test-bind-level", Short: helpers.Ptr("l"), Count: true},
	})
	bindEnvMap(cmd, map[*int64]boundEnvVar[int64]{&size: {Name: "test-bind-size"}})
	bindEnvMap(cmd, map[*time.Duration]boundEnvVar[time.Duration]{&wait: {Name: "test-bind-wait"}})
	bindEnvMap(cmd, map[*[]string]boundEnvVar[[]string]{&to: {Name: "mail-list", Env: helpers.Ptr("TEST_BIND_LIST")}})
	bindEnvMap(cmd, map[*bool]boundEnvVar[bool]{&flag: {Name: "test-bind-flag"}})

	cmd.SetArgs([]string{"-ll"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "from-env", str)
	assert.Equal(t, 2525, port)
	assert.Equal(t, int64(1024), size)
	assert.Equal(t, 3*time.Second, wait)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, to)
	assert.True(t, flag)
	assert.Equal(t, 2, level)
}

func TestBindEnvMapFlagOverridesEnvironment(t *testing.T) {
	value := "default"
	t.Setenv("TEST_OVERRIDE_VALUE", "from-env")

	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	bindEnvMap(cmd, map[*string]boundEnvVar[string]{&value: {Name: "test-override-value"}})
	cmd.SetArgs([]string{"--test-override-value", "from-flag"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "from-flag", value)
}

func preserveConfig(t *testing.T) {
	t.Helper()
	global, webhook, elevenLabs, mail := config.Global, config.Webhook, config.ElevenLabs, config.Mail
	secrets, archive, service, lambda := config.Secrets, config.Archive, config.Service, config.Lambda
	t.Cleanup(func() {
		config.Global, config.Webhook, config.ElevenLabs, config.Mail = global, webhook, elevenLabs, mail
		config.Secrets, config.Archive, config.Service, config.Lambda = secrets, archive, service, lambda
	})
	require.NoError(t, config.SetDefaults())
}

func TestSetup(t *testing.T) {
	logger = helpers.NewNoopLogger()

	t.Run("invalid_configuration", func(t *testing.T) {
		preserveConfig(t)
		config.Global.Mode = config.ModeService
		config.Webhook.Secret = ""
		config.ElevenLabs.APIKey = ""

		rt, err := setup(t.Context())
		assert.Nil(t, rt)
		assert.ErrorContains(t, err, "invalid configuration")
		assert.ErrorContains(t, err, "webhook secret is required")
	})

	t.Run("smtp", func(t *testing.T) {
		preserveConfig(t)
		config.Global.Mode = config.ModeService
		config.Webhook.Secret = "wsec"
		config.ElevenLabs.APIKey = "xi"
		config.Mail.Transport = "smtp"
		config.Mail.SMTP.Username = "me@example.com"
		config.Mail.SMTP.Password = "app-password"
		config.Mail.To = nil

		rt, err := setup(t.Context())
		require.NoError(t, err)
		assert.NotNil(t, rt)
		assert.Equal(t, "me@example.com", config.Mail.From)
		assert.Equal(t, []string{"me@example.com"}, config.Mail.To)
	})

	t.Run("xoauth2", func(t *testing.T) {
		preserveConfig(t)
		config.Global.Mode = config.ModeLambda
		config.Webhook.Secret = "wsec"
		config.ElevenLabs.APIKey = "xi"
		config.Mail.Transport = "smtp"
		config.Mail.SMTP.Username = "me@example.com"
		config.Mail.SMTP.AuthMode = "xoauth2"
		config.Mail.OAuth2.ClientID = "client"
		config.Mail.OAuth2.ClientSecret = "secret"
		config.Mail.OAuth2.RefreshToken = "refresh"

		rt, err := setup(t.Context())
		require.NoError(t, err)
		assert.NotNil(t, rt)
	})
}
