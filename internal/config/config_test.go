package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zapcore"

	"github.com/yumyai/ggderep/pkg/derep"
	"github.com/yumyai/ggderep/pkg/derr"
	"github.com/yumyai/ggderep/pkg/pick"
)

var envKeys = []string{
	EnvConfigFile,
	"DEREP_PROGRAM",
	"DEREP_REPRESENTATIVE_METHOD",
	"DEREP_DISTANCE_DIRECTION",
	"DEREP_LOG_LEVEL",
	"DEREP_ADDR",
	"DEREP_DISTANCE_THRESHOLD",
	"DEREP_MIN_FULL_PERCENT_IDENTITY",
	"DEREP_MIN_ALIGNMENT_FRACTION",
	"DEREP_MIN_MASH_DISTANCE",
	"DEREP_SIGNIFICANT_ALIGNMENT_LENGTH",
	"DEREP_WORKERS",
	"DEREP_USE_FULL_PERCENT_IDENTITY",
}

type ConfigSuite struct {
	suite.Suite
	tempDir string
}

func (s *ConfigSuite) SetupTest() {
	s.tempDir = s.T().TempDir()
	for _, k := range envKeys {
		s.T().Setenv(k, "")
	}
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) writeYAML(body string) string {
	path := filepath.Join(s.tempDir, "derep.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(body), 0o644))
	return path
}

func (s *ConfigSuite) TestDefault() {
	cfg, err := Load("")
	s.Require().NoError(err)
	s.Equal(Default(), cfg)

	dc, err := cfg.Derep()
	s.Require().NoError(err)
	s.Equal(derep.DefaultConfig(), dc)
	// A plain distance matrix must run with the defaults, which it cannot
	// when any weak hit filter is on.
	s.Zero(dc.Suppress.MinFullPercentIdentity)
	s.False(dc.Suppress.Enabled())
}

func (s *ConfigSuite) TestYAMLThenEnv() {
	path := s.writeYAML(`
program: sourmash
distance_threshold: 0.05
representative_method: length
min_mash_distance: 0.01
log_level: debug
`)
	s.T().Setenv("DEREP_DISTANCE_THRESHOLD", "0.02")
	s.T().Setenv("DEREP_WORKERS", "3")

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal("sourmash", cfg.Program)
	s.Equal(0.02, cfg.DistanceThreshold)
	s.Equal(3, cfg.Workers)

	level, err := cfg.Level()
	s.Require().NoError(err)
	s.Equal(zapcore.DebugLevel, level)

	dc, err := cfg.Derep()
	s.Require().NoError(err)
	s.Equal(derep.Sourmash, dc.Program)
	s.Equal(pick.Length, dc.Method)
	s.Equal(0.01, dc.MinMashDistance)
}

func (s *ConfigSuite) TestConfigFileFromEnv() {
	path := s.writeYAML("min_full_percent_identity: 20\nmin_alignment_fraction: 0.3\nsignificant_alignment_length: 5000\n")
	s.T().Setenv(EnvConfigFile, path)

	cfg, err := Load("")
	s.Require().NoError(err)
	dc, err := cfg.Derep()
	s.Require().NoError(err)
	s.Equal(20.0, dc.Suppress.MinFullPercentIdentity)
	s.Equal(0.3, dc.Suppress.MinAlignmentFraction)
	s.Equal(int64(5000), dc.Suppress.SignificantAlignmentLength)
}

func (s *ConfigSuite) TestBadValues() {
	s.T().Setenv("DEREP_DISTANCE_THRESHOLD", "close")
	_, err := Load("")
	s.ErrorIs(err, derr.ErrConfiguration)

	s.T().Setenv("DEREP_DISTANCE_THRESHOLD", "")
	s.T().Setenv("DEREP_USE_FULL_PERCENT_IDENTITY", "perhaps")
	_, err = Load("")
	s.ErrorIs(err, derr.ErrConfiguration)

	_, err = Load(s.writeYAML("distance_threshold: [1, 2]\n"))
	s.ErrorIs(err, derr.ErrConfiguration)

	_, err = Load(filepath.Join(s.tempDir, "absent.yaml"))
	s.ErrorIs(err, os.ErrNotExist)
}

func (s *ConfigSuite) TestDerepRejectsInvalid() {
	cfg := Default()
	cfg.RepresentativeMethod = "coin flip"
	_, err := cfg.Derep()
	s.ErrorIs(err, derr.ErrConfiguration)

	cfg = Default()
	cfg.DistanceThreshold = 3
	_, err = cfg.Derep()
	s.ErrorIs(err, derr.ErrConfiguration)

	cfg = Default()
	cfg.LogLevel = "loud"
	_, err = cfg.Level()
	s.ErrorIs(err, derr.ErrConfiguration)
}

func (s *ConfigSuite) TestLoadDotenv() {
	path := filepath.Join(s.tempDir, ".env")
	s.Require().NoError(os.WriteFile(path, []byte("DEREP_PROGRAM=sourmash\n"), 0o644))
	s.Require().NoError(os.Unsetenv("DEREP_PROGRAM"))

	s.Require().NoError(LoadDotenv(path))
	cfg, err := Load("")
	s.Require().NoError(err)
	s.Equal("sourmash", cfg.Program)

	s.Error(LoadDotenv(filepath.Join(s.tempDir, "missing.env")))
}
