package config

import "fmt"

func validate(c *Config) error {
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	if c.Resume && c.LedgerPath == "" {
		return fmt.Errorf("--resume requires --ledger")
	}
	return nil
}
