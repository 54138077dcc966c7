package database

import (
	"gorm.io/gorm"
)

const commitCallback = "gorm:commit_or_rollback_transaction"

// registerInvalidation publishes the table name of every successful create,
// update and delete after gorm has committed the statement's transaction.
// Raw Exec calls bypass these callbacks; use Invalidate after them.
func (d *Database) registerInvalidation() error {
	cb := d.DB.Callback()

	if err := cb.Create().After(commitCallback).Register("sunflower:invalidate_create", d.afterWrite); err != nil {
		return err
	}
	if err := cb.Update().After(commitCallback).Register("sunflower:invalidate_update", d.afterWrite); err != nil {
		return err
	}
	return cb.Delete().After(commitCallback).Register("sunflower:invalidate_delete", d.afterWrite)
}

func (d *Database) afterWrite(tx *gorm.DB) {
	if tx.Error != nil || tx.RowsAffected == 0 {
		return
	}

	table := tx.Statement.Table
	if table == "" && tx.Statement.Schema != nil {
		table = tx.Statement.Schema.Table
	}
	if table != "" {
		d.hub.Notify(table)
	}
}

// Invalidate notifies observers of tables that changed outside gorm's write callbacks.
func (d *Database) Invalidate(tables ...string) {
	d.hub.Notify(tables...)
}
