package derep

import (
	"fmt"
	"strings"

	"github.com/yumyai/ggderep/pkg/derr"
	"github.com/yumyai/ggderep/pkg/matrix"
	"github.com/yumyai/ggderep/pkg/pick"
	"github.com/yumyai/ggderep/pkg/suppress"
)

// Program is the comparison tool whose reports feed a run.
type Program int

const (
	ANI Program = iota
	Sourmash
)

func (p Program) String() string {
	switch p {
	case ANI:
		return "ANI"
	case Sourmash:
		return "sourmash"
	default:
		return fmt.Sprintf("Program(%d)", int(p))
	}
}

func ParseProgram(s string) (Program, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ani", "pyani", "":
		return ANI, nil
	case "sourmash", "mash":
		return Sourmash, nil
	}
	return 0, derr.Configf("derep", "unknown program %q (want ANI or sourmash)", s)
}

type Config struct {
	Program Program
	// UseFullPercentIdentity clusters ANI results on full_percentage_identity
	// instead of percentage_identity.
	UseFullPercentIdentity bool

	// DistanceThreshold is the distance at or below which two genomes are
	// redundant.
	DistanceThreshold float64
	Method            pick.Method
	Direction         pick.Direction

	Suppress suppress.Params
	// MinMashDistance is applied when sourmash results are imported.
	MinMashDistance float64
	// Workers bounds concurrent suppression rows; 0 means GOMAXPROCS.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		Program:           ANI,
		DistanceThreshold: 0.1,
		Method:            pick.Qscore,
		Direction:         pick.DefaultDirection,
	}
}

func (c Config) Validate() error {
	if c.DistanceThreshold < 0 || c.DistanceThreshold > 1 {
		return derr.Configf("derep", "distance threshold %g is not between 0 and 1", c.DistanceThreshold)
	}
	if c.MinMashDistance < 0 || c.MinMashDistance > 1 {
		return derr.Configf("derep", "minimum mash distance %g is not between 0 and 1", c.MinMashDistance)
	}
	if err := c.Suppress.Validate(); err != nil {
		return err
	}
	if c.Program == Sourmash {
		if c.Suppress.Enabled() {
			return derr.Configf("derep", "weak hit filters need ANI alignment reports, sourmash does not produce them")
		}
		if c.UseFullPercentIdentity {
			return derr.Configf("derep", "full percent identity is an ANI report")
		}
	}
	if c.Direction != pick.Highest && c.Direction != pick.Lowest {
		return derr.Configf("derep", "invalid distance direction %d", int(c.Direction))
	}
	if c.Workers < 0 {
		return derr.Configf("derep", "workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// MetricName is the report clustered on.
func (c Config) MetricName() string {
	if c.Program == Sourmash {
		return matrix.MashDistance
	}
	if c.UseFullPercentIdentity {
		return matrix.FullPercentIdentity
	}
	return matrix.PercentIdentity
}
