package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielpatrickdp/motion-scan/internal/landmark"
	"github.com/danielpatrickdp/motion-scan/internal/orchestrator"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a batch of
// recorded sequences and the outcome each one is expected to produce.
type Fixture struct {
	Description string        `json:"description"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureCase is one (video, test type) unit of a replay run. The sequence
// is either inline or loaded from SequencePath, which is resolved relative
// to the fixture file.
type FixtureCase struct {
	Name           string             `json:"name"`
	TestType       string             `json:"test_type,omitempty"`
	VideoRef       string             `json:"video_ref"`
	SequencePath   string             `json:"sequence_path,omitempty"`
	Sequence       *landmark.Sequence `json:"sequence,omitempty"`
	ExpectedScore  *int               `json:"expected_score,omitempty"`
	ExpectedStatus string             `json:"expected_status,omitempty"`
	ExpectedError  string             `json:"expected_error,omitempty"` // "input" | "configuration"
}

// #endregion fixture-types

// #region load

// LoadFixture reads a fixture file and resolves every case's sequence and
// test type.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}

	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range f.Cases {
		if err := f.Cases[i].resolve(dir); err != nil {
			return nil, fmt.Errorf("fixture %s case %d: %w", path, i, err)
		}
	}
	return &f, nil
}

func (c *FixtureCase) resolve(dir string) error {
	if c.TestType == "" {
		tt, ok := orchestrator.TestTypeFromKey(c.VideoRef)
		if !ok {
			return fmt.Errorf("no test type and none derivable from %q", c.VideoRef)
		}
		c.TestType = tt
	}
	if c.Name == "" {
		c.Name = c.VideoRef
	}
	if c.Sequence != nil || c.SequencePath == "" {
		return nil
	}
	p := c.SequencePath
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	seq, err := landmark.LoadSequence(p)
	if err != nil {
		return err
	}
	c.Sequence = seq
	return nil
}

// Request converts the case into a worker request.
func (c FixtureCase) Request() orchestrator.Request {
	return orchestrator.Request{VideoRef: c.VideoRef, TestType: c.TestType, Sequence: c.Sequence}
}

// #endregion load
