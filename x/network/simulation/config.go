package simulation

import (
	errorsmod "cosmossdk.io/errors"
)

var (
	// ErrInvalidConfig is returned for simulation configs that cannot run.
	ErrInvalidConfig = errorsmod.Register("simulation", 2, "invalid simulation config")
	// ErrInvariantBroken is returned when the state a run ends in breaks a
	// network invariant.
	ErrInvariantBroken = errorsmod.Register("simulation", 3, "network invariant broken")
)

// Tenure overrides the node tenure params, in epochs.
type Tenure struct {
	Included    uint64 `mapstructure:"included" json:"included"`
	Submittable uint64 `mapstructure:"submittable" json:"submittable"`
	Accountant  uint64 `mapstructure:"accountant" json:"accountant"`
}

// Config describes a simulated network.
type Config struct {
	Subnets        int     `mapstructure:"subnets" json:"subnets"`
	NodesPerSubnet int     `mapstructure:"nodes_per_subnet" json:"nodes_per_subnet"`
	Epochs         uint64  `mapstructure:"epochs" json:"epochs"`
	Stake          uint64  `mapstructure:"stake" json:"stake"`
	MemoryMB       uint64  `mapstructure:"memory_mb" json:"memory_mb"`
	AttestRatio    float64 `mapstructure:"attest_ratio" json:"attest_ratio"`
	MissRate       float64 `mapstructure:"miss_rate" json:"miss_rate"`
	Seed           int64   `mapstructure:"seed" json:"seed"`

	// Tenure, when set, replaces the node tenure params.
	Tenure *Tenure `mapstructure:"tenure" json:"tenure,omitempty"`

	// ParamOverrides are applied by param key before any subnet registers.
	ParamOverrides map[string]string `mapstructure:"params" json:"params,omitempty"`
}

// DefaultConfig returns a small network of three subnets where every node
// qualifies for every role from its first epoch.
func DefaultConfig() Config {
	return Config{
		Subnets:        3,
		NodesPerSubnet: 6,
		Epochs:         10,
		Stake:          10_000_000,
		MemoryMB:       16_000,
		AttestRatio:    1,
		MissRate:       0,
		Seed:           1,
		Tenure:         &Tenure{},
	}
}

// Validate checks that c describes a runnable simulation.
func (c Config) Validate() error {
	if c.Subnets <= 0 {
		return ErrInvalidConfig.Wrap("subnets must be positive")
	}
	if c.NodesPerSubnet <= 0 {
		return ErrInvalidConfig.Wrap("nodes_per_subnet must be positive")
	}
	if c.Epochs == 0 {
		return ErrInvalidConfig.Wrap("epochs must be positive")
	}
	if c.Stake == 0 {
		return ErrInvalidConfig.Wrap("stake must be positive")
	}
	if c.MemoryMB == 0 {
		return ErrInvalidConfig.Wrap("memory_mb must be positive")
	}
	if c.AttestRatio < 0 || c.AttestRatio > 1 {
		return ErrInvalidConfig.Wrapf("attest_ratio %v outside [0, 1]", c.AttestRatio)
	}
	if c.MissRate < 0 || c.MissRate > 1 {
		return ErrInvalidConfig.Wrapf("miss_rate %v outside [0, 1]", c.MissRate)
	}
	return nil
}
