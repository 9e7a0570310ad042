package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path must not be empty")
		}
	case BackendPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("store.backend must be %q or %q (got %q)",
			BackendSQLite, BackendPostgres, c.Store.Backend)
	}

	if err := c.Inventory.validate(); err != nil {
		return fmt.Errorf("inventory: %w", err)
	}

	return nil
}

func (c InventoryConfig) validate() error {
	if c.TransactionLogLimit <= 0 {
		return fmt.Errorf("transaction_log_limit must be > 0 (got %d)", c.TransactionLogLimit)
	}
	if c.ExportTxnLimit <= 0 {
		return fmt.Errorf("export_txn_limit must be > 0 (got %d)", c.ExportTxnLimit)
	}
	if c.SellStep <= 0 {
		return fmt.Errorf("sell_step must be > 0 (got %d)", c.SellStep)
	}
	if c.RestockStep <= 0 {
		return fmt.Errorf("restock_step must be > 0 (got %d)", c.RestockStep)
	}
	if c.SimulationEvents <= 0 {
		return fmt.Errorf("simulation_events must be > 0 (got %d)", c.SimulationEvents)
	}
	if c.SimulationMaxSale <= 0 {
		return fmt.Errorf("simulation_max_sale must be > 0 (got %d)", c.SimulationMaxSale)
	}
	return nil
}
