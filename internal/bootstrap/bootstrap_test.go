package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioTerm-Annotator/internal/config"
	"github.com/turtacn/BioTerm-Annotator/pkg/errors"
)

func TestBuild_NilConfig(t *testing.T) {
	t.Parallel()

	_, err := Build(nil, nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}

func TestBuild_InvalidConfigRejected(t *testing.T) {
	t.Parallel()

	cfg := config.NewDefaultConfig()
	cfg.Server.Port = -1

	_, err := Build(cfg, nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}

func TestBuild_Defaults(t *testing.T) {
	t.Parallel()

	app, err := Build(config.NewDefaultConfig(), nil)
	require.NoError(t, err)
	require.NotNil(t, app.Service)

	// Metrics, cache, and events are all off by default.
	assert.Nil(t, app.Metrics)
	assert.Nil(t, app.MetricsHandler)

	health := app.Service.Health(context.Background())
	assert.True(t, health["annotator"])
	_, hasCache := health["cache"]
	assert.False(t, hasCache)

	assert.NoError(t, app.Close())
}

func TestBuild_MetricsEnabled(t *testing.T) {
	t.Parallel()

	cfg := config.NewDefaultConfig()
	cfg.Metrics.Enabled = true

	app, err := Build(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, app.Metrics)
	assert.NotNil(t, app.MetricsHandler)
}

func TestBuild_DomainsReflectConfiguredOntologies(t *testing.T) {
	t.Parallel()

	cfg := config.NewDefaultConfig()
	cfg.Annotation.DomainOntologies = map[string][]string{
		"disease": {"mondo"},
	}

	app, err := Build(cfg, nil)
	require.NoError(t, err)

	for _, d := range app.Service.Domains() {
		if d.Domain == "disease" {
			assert.Equal(t, []string{"mondo"}, d.Ontologies)
			return
		}
	}
	t.Fatal("disease domain not listed")
}

func TestNewLogger_FromConfig(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger(config.NewDefaultConfig().Log)
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("bootstrap logger smoke test")
}
